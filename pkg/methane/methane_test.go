/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package methane

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herdwise/feedopt/pkg/errors"
)

// A mid-lactation diet: 22 kg DMI, 35 Mcal NEL, 29% NDF, 3.5% TFA, 14% DNDF.
func testIntake() Intake {
	return Intake{
		DMI:  22,
		NEL:  35,
		NDF:  0.29 * 22,
		TFA:  0.035 * 22,
		DNDF: 0.14 * 22,
	}
}

func TestEstimate_NASEM(t *testing.T) {
	in := testIntake()

	got, err := Estimate(NASEM, in)
	require.NoError(t, err)

	tfaPct := 100 * in.TFA / in.DMI
	dndfPct := 100 * in.DNDF / in.DMI
	want := (0.294*in.DMI - 0.347*tfaPct + 0.0409*dndfPct) * 4.184 / 55.65
	assert.InDelta(t, want, got, 1e-12)
	assert.Greater(t, got, 0.0)
	// Well within the physiological range for a lactating cow.
	assert.Less(t, got, 1.0)
}

func TestEstimate_Ellis(t *testing.T) {
	in := testIntake()

	got, err := Estimate(Ellis, in)
	require.NoError(t, err)

	me := 1.818*in.NEL - 0.2319
	want := (4.41 + 0.0224*4.184*me + 0.98*in.NDF) / 55.65
	assert.InDelta(t, want, got, 1e-12)
	assert.Greater(t, got, 0.0)
	assert.Less(t, got, 1.0)
}

func TestEstimate_Errors(t *testing.T) {
	_, err := Estimate(NASEM, Intake{DMI: 0})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))

	_, err = Estimate(Equation("ipcc"), testIntake())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
}

func TestLinearCoefficients_NASEMMatchesExactAtBaseline(t *testing.T) {
	in := testIntake()

	coeffs, err := LinearCoefficients(NASEM, in.DMI)
	require.NoError(t, err)
	assert.Zero(t, coeffs.Constant)
	assert.Zero(t, coeffs.NEL)
	assert.Negative(t, coeffs.TFA)
	assert.Positive(t, coeffs.DNDF)

	// When realized DMI equals the baseline the linearization is exact.
	exact, err := Estimate(NASEM, in)
	require.NoError(t, err)
	assert.InDelta(t, exact, coeffs.Apply(in), 1e-12)
}

func TestLinearCoefficients_NASEMErrorBoundedByDMDeviation(t *testing.T) {
	base := testIntake()
	coeffs, err := LinearCoefficients(NASEM, base.DMI)
	require.NoError(t, err)

	// Scale the whole diet by 1% either way, as the DM tolerance allows.
	for _, f := range []float64{0.99, 1.01} {
		in := Intake{
			DMI:  base.DMI * f,
			NEL:  base.NEL * f,
			NDF:  base.NDF * f,
			TFA:  base.TFA * f,
			DNDF: base.DNDF * f,
		}
		exact, err := Estimate(NASEM, in)
		require.NoError(t, err)
		got := coeffs.Apply(in)
		assert.InDelta(t, exact, got, exact*0.011)
	}
}

func TestLinearCoefficients_EllisExact(t *testing.T) {
	in := testIntake()

	coeffs, err := LinearCoefficients(Ellis, in.DMI)
	require.NoError(t, err)
	assert.Positive(t, coeffs.Constant)
	assert.Zero(t, coeffs.DMI)
	assert.Zero(t, coeffs.TFA)

	// Ellis is linear, so the coefficient form reproduces the estimator for
	// any intake, not just the baseline.
	for _, f := range []float64{0.5, 1, 2} {
		scaled := Intake{DMI: in.DMI * f, NEL: in.NEL * f, NDF: in.NDF * f}
		exact, err := Estimate(Ellis, scaled)
		require.NoError(t, err)
		assert.InDelta(t, exact, coeffs.Apply(scaled), 1e-12)
	}
}

func TestLinearCoefficients_Errors(t *testing.T) {
	_, err := LinearCoefficients(NASEM, 0)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))

	_, err = LinearCoefficients(Equation("ipcc"), 22)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
}

func TestParseEquation(t *testing.T) {
	for _, s := range SupportedEquations() {
		e, err := ParseEquation(s)
		require.NoError(t, err)
		assert.True(t, e.IsValid())
	}

	_, err := ParseEquation("ipcc")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
}
