/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package methane

import (
	"github.com/herdwise/feedopt/pkg/errors"
)

// Equation selects the enteric methane prediction model.
type Equation string

const (
	// NASEM is the NASEM (2021) dairy cow equation driven by intake, total
	// fatty acids, and digestible NDF as percent of dry matter.
	NASEM Equation = "nasem"
	// Ellis is the Ellis et al. equation driven by metabolizable energy and
	// NDF intake.
	Ellis Equation = "ellis"
)

const (
	// mcalToMJ converts Mcal to MJ.
	mcalToMJ = 4.184
	// mjPerKgCH4 is the gross energy density of methane, MJ per kg.
	mjPerKgCH4 = 55.65
)

// IsValid reports whether the equation is a supported value.
func (e Equation) IsValid() bool {
	return e == NASEM || e == Ellis
}

func (e Equation) String() string {
	return string(e)
}

// SupportedEquations returns the valid equation names.
func SupportedEquations() []string {
	return []string{string(NASEM), string(Ellis)}
}

// ParseEquation validates and converts an equation name.
func ParseEquation(s string) (Equation, error) {
	e := Equation(s)
	if !e.IsValid() {
		return "", errors.Newf(errors.ErrCodeInvalidConfig,
			"invalid methane equation %q, supported values: %v", s, SupportedEquations())
	}
	return e, nil
}

// Intake is a cow's realized daily intake: DMI, NDF, TFA, and DNDF in kg of
// dry matter per day, NEL in Mcal per day.
type Intake struct {
	DMI  float64
	NEL  float64
	NDF  float64
	TFA  float64
	DNDF float64
}

// Estimate returns the predicted enteric methane emission in kg CH4 per cow
// per day for the given equation and realized intake.
func Estimate(eq Equation, in Intake) (float64, error) {
	switch eq {
	case NASEM:
		if in.DMI <= 0 {
			return 0, errors.Newf(errors.ErrCodeInvalidConfig,
				"nasem estimate requires positive dry-matter intake, got %g", in.DMI)
		}
		// Predicts methane energy in Mcal/d from DMI and the diet's TFA and
		// digestible-NDF content as percent of DM, then converts to kg.
		tfaPct := 100 * in.TFA / in.DMI
		dndfPct := 100 * in.DNDF / in.DMI
		mcal := 0.294*in.DMI - 0.347*tfaPct + 0.0409*dndfPct
		return mcal * mcalToMJ / mjPerKgCH4, nil
	case Ellis:
		// Metabolizable energy regressed from net energy of lactation,
		// both in Mcal/d; methane in MJ/d, converted to kg.
		me := 1.818*in.NEL - 0.2319
		mj := 4.41 + 0.0224*mcalToMJ*me + 0.98*in.NDF
		return mj / mjPerKgCH4, nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidConfig,
			"invalid methane equation %q", eq)
	}
}

// Coefficients is the linear form of a methane equation over per-day intake
// terms: kg CH4 = Constant + DMI·dmi + NEL·nel + NDF·ndf + TFA·tfa +
// DNDF·dndf, with intakes in the units of Intake.
type Coefficients struct {
	DMI      float64
	NEL      float64
	NDF      float64
	TFA      float64
	DNDF     float64
	Constant float64
}

// Apply evaluates the linear form on an intake.
func (c Coefficients) Apply(in Intake) float64 {
	return c.Constant +
		c.DMI*in.DMI +
		c.NEL*in.NEL +
		c.NDF*in.NDF +
		c.TFA*in.TFA +
		c.DNDF*in.DNDF
}

// LinearCoefficients returns the equation's linear form for use in an
// optimization objective.
//
// NASEM divides TFA and DNDF intake by total DMI; that ratio is linearized
// by substituting dmBaseline for the denominator. The substitution's
// relative error is bounded by the envelope's DM tolerance, since the model
// constrains realized DMI to within that tolerance of the baseline. Ellis is
// already linear; its intercept is carried in Constant.
func LinearCoefficients(eq Equation, dmBaseline float64) (Coefficients, error) {
	switch eq {
	case NASEM:
		if dmBaseline <= 0 {
			return Coefficients{}, errors.Newf(errors.ErrCodeInvalidConfig,
				"nasem linearization requires positive dm baseline, got %g", dmBaseline)
		}
		k := mcalToMJ / mjPerKgCH4
		return Coefficients{
			DMI:  k * 0.294,
			TFA:  -k * 34.7 / dmBaseline,
			DNDF: k * 4.09 / dmBaseline,
		}, nil
	case Ellis:
		a := 0.0224 * mcalToMJ
		return Coefficients{
			NEL:      a * 1.818 / mjPerKgCH4,
			NDF:      0.98 / mjPerKgCH4,
			Constant: (4.41 - a*0.2319) / mjPerKgCH4,
		}, nil
	default:
		return Coefficients{}, errors.Newf(errors.ErrCodeInvalidConfig,
			"invalid methane equation %q", eq)
	}
}
