/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package requirement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herdwise/feedopt/pkg/errors"
	"github.com/herdwise/feedopt/pkg/herd"
)

func testGroup() herd.Group {
	return herd.Group{Index: 1, Cows: []herd.Cow{
		{ID: "a", DMI: 20, NEL: 1.4},
		{ID: "b", DMI: 22, NEL: 1.6},
		{ID: "c", DMI: 24, NEL: 1.8},
	}}
}

func TestBuildEnvelope_MeanStatistic(t *testing.T) {
	spec := DefaultSpec()
	spec.Statistic = StatisticMean

	env, err := BuildEnvelope(testGroup(), spec)
	require.NoError(t, err)

	assert.InDelta(t, 22.0, env.DMBaseline, 1e-12)
	assert.InDelta(t, 1.6*22.0, env.NELBaseline, 1e-12)

	assert.InDelta(t, 22.0*0.99, env.DM.Lower, 1e-12)
	assert.InDelta(t, 22.0*1.01, env.DM.Upper, 1e-12)
	assert.InDelta(t, 1.6*22.0*0.99, env.NEL.Lower, 1e-12)
	assert.InDelta(t, 1.6*22.0*1.01, env.NEL.Upper, 1e-12)

	assert.InDelta(t, 0.15*22.0, env.CP.Lower, 1e-12)
	assert.InDelta(t, 0.20*22.0, env.CP.Upper, 1e-12)
	assert.InDelta(t, 0.25*22.0, env.NDF.Lower, 1e-12)
	assert.InDelta(t, 0.33*22.0, env.NDF.Upper, 1e-12)
	assert.InDelta(t, 0.22*22.0, env.Starch.Lower, 1e-12)
	assert.InDelta(t, 0.30*22.0, env.Starch.Upper, 1e-12)
	assert.Zero(t, env.Fat.Lower)
	assert.InDelta(t, 0.07*22.0, env.Fat.Upper, 1e-12)
}

func TestBuildEnvelope_PercentileStatistic(t *testing.T) {
	spec := DefaultSpec()
	spec.Percentile = 50

	env, err := BuildEnvelope(testGroup(), spec)
	require.NoError(t, err)
	// Median NEL is 1.6 Mcal/kg over a 22 kg baseline.
	assert.InDelta(t, 1.6*22.0, env.NELBaseline, 1e-12)

	spec.Percentile = 100
	env, err = BuildEnvelope(testGroup(), spec)
	require.NoError(t, err)
	assert.InDelta(t, 1.8*22.0, env.NELBaseline, 1e-12)
}

func TestBuildEnvelope_Symmetry(t *testing.T) {
	spec := DefaultSpec()
	spec.DMVary = 0.05
	spec.NELVary = 0.03

	env, err := BuildEnvelope(testGroup(), spec)
	require.NoError(t, err)

	assert.InDelta(t, env.DMBaseline-env.DM.Lower, env.DM.Upper-env.DMBaseline, 1e-9)
	assert.InDelta(t, env.NELBaseline-env.NEL.Lower, env.NEL.Upper-env.NELBaseline, 1e-9)
	assert.True(t, env.DM.Contains(env.DMBaseline))
	assert.True(t, env.NEL.Contains(env.NELBaseline))
}

func TestBuildEnvelope_InvalidSpec(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Spec)
	}{
		{"dm vary zero", func(s *Spec) { s.DMVary = 0 }},
		{"dm vary too large", func(s *Spec) { s.DMVary = 1 }},
		{"nel vary negative", func(s *Spec) { s.NELVary = -0.1 }},
		{"bad statistic", func(s *Spec) { s.Statistic = "median" }},
		{"percentile out of range", func(s *Spec) { s.Percentile = 101 }},
		{"inverted band", func(s *Spec) { s.Bands.CP = Band{Lower: 0.3, Upper: 0.2} }},
		{"negative band", func(s *Spec) { s.Bands.Fat = Band{Lower: -0.1, Upper: 0.1} }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec := DefaultSpec()
			tc.mutate(&spec)
			_, err := BuildEnvelope(testGroup(), spec)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
		})
	}
}

func TestBuildEnvelope_EmptyGroup(t *testing.T) {
	_, err := BuildEnvelope(herd.Group{Index: 2}, DefaultSpec())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
}

func TestParseStatistic(t *testing.T) {
	s, err := ParseStatistic("mean")
	require.NoError(t, err)
	assert.Equal(t, StatisticMean, s)

	s, err = ParseStatistic("percentile")
	require.NoError(t, err)
	assert.Equal(t, StatisticPercentile, s)

	_, err = ParseStatistic("mode")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
}
