/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package model

import (
	"math"

	"github.com/herdwise/feedopt/pkg/errors"
	"github.com/herdwise/feedopt/pkg/feed"
	"github.com/herdwise/feedopt/pkg/methane"
	"github.com/herdwise/feedopt/pkg/requirement"
)

// Variable is one decision variable: as-fed kg of an ingredient per cow per
// day, bounded by the ingredient's configured inclusion range.
type Variable struct {
	Name  string
	Lower float64
	Upper float64 // may be +Inf
}

// Expression is a linear form over the program's variables plus a constant.
type Expression struct {
	Coeffs   []float64
	Constant float64
}

// Eval computes the expression's value at x.
func (e Expression) Eval(x []float64) float64 {
	v := e.Constant
	for i, c := range e.Coeffs {
		v += c * x[i]
	}
	return v
}

// Constraint is a named linear relation Lower <= c·x <= Upper. Either bound
// may be infinite.
type Constraint struct {
	Name   string
	Coeffs []float64
	Lower  float64
	Upper  float64
}

// Mode selects what the objective minimizes.
type Mode string

const (
	// ModeCost minimizes feed cost in $ per cow per day.
	ModeCost Mode = "cost"
	// ModeMethane minimizes predicted methane in kg per cow per day.
	ModeMethane Mode = "methane"
	// ModeBoth minimizes cost plus weight times methane.
	ModeBoth Mode = "both"
)

// IsValid reports whether the mode is a supported value.
func (m Mode) IsValid() bool {
	return m == ModeCost || m == ModeMethane || m == ModeBoth
}

func (m Mode) String() string {
	return string(m)
}

// SupportedModes returns the valid objective modes.
func SupportedModes() []string {
	return []string{string(ModeCost), string(ModeMethane), string(ModeBoth)}
}

// ParseMode validates and converts an objective mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.IsValid() {
		return "", errors.Newf(errors.ErrCodeInvalidConfig,
			"invalid objective mode %q, supported values: %v", s, SupportedModes())
	}
	return m, nil
}

// Objective is a composed minimization target. Weight only applies in
// ModeBoth; cost is in $ and methane in kg, so the weight acts as a $ per kg
// CH4 exchange rate chosen by the operator.
type Objective struct {
	Mode       Mode
	Weight     float64
	Expression Expression
}

// ForageSpec names the library ingredients counted as forage and bounds
// their share of total dry-matter intake.
type ForageSpec struct {
	Ingredients []string
	Lower       float64
	Upper       float64
}

// DefaultForageBand returns the inclusion band applied when the run config
// does not override it: 40-60% of DMI.
func DefaultForageBand() (lower, upper float64) {
	return 0.4, 0.6
}

// RatioSpec couples two ingredients' as-fed inclusions:
// Min·x_denominator <= x_numerator <= Max·x_denominator. Max may be +Inf.
type RatioSpec struct {
	Numerator   string
	Denominator string
	Min         float64
	Max         float64
}

// BuildInput carries everything the builder needs for one group.
type BuildInput struct {
	GroupIndex int
	Envelope   requirement.Envelope
	Library    *feed.Library
	Forage     ForageSpec
	Equation   methane.Equation
	Ratios     []RatioSpec
}

// Program is a group's linear optimization problem before and after
// objective composition.
type Program struct {
	GroupIndex  int
	Variables   []Variable
	Constraints []Constraint
	Cost        Expression
	Methane     Expression
	Objective   *Objective

	index map[string]int // variable position by ingredient name
}

// VariableIndex returns the position of the named variable.
func (p *Program) VariableIndex(name string) (int, bool) {
	i, ok := p.index[name]
	return i, ok
}

// Build assembles a group's ration program: one variable per library
// ingredient, the envelope's intake and nutrient constraints, the forage
// share band, any configured ingredient ratios, and the cost and methane
// expressions.
func Build(in BuildInput) (*Program, error) {
	if in.Library == nil || in.Library.Len() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "ingredient library cannot be empty")
	}
	if err := in.Library.ValidateForage(in.Forage.Ingredients); err != nil {
		return nil, err
	}
	if in.Forage.Lower < 0 || in.Forage.Upper < in.Forage.Lower || in.Forage.Upper > 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfig,
			"forage band [%g, %g] must satisfy 0 <= lower <= upper <= 1",
			in.Forage.Lower, in.Forage.Upper)
	}

	ingredients := in.Library.Ingredients()
	n := len(ingredients)

	p := &Program{
		GroupIndex: in.GroupIndex,
		Variables:  make([]Variable, n),
		index:      make(map[string]int, n),
	}
	for i, ing := range ingredients {
		p.Variables[i] = Variable{Name: ing.Name, Lower: ing.MinKg, Upper: ing.MaxKg}
		p.index[ing.Name] = i
	}

	forage := make(map[string]bool, len(in.Forage.Ingredients))
	for _, name := range in.Forage.Ingredients {
		forage[name] = true
	}

	env := in.Envelope
	p.addConstraint("dm_intake", env.DM, ingredients, func(ing feed.Ingredient) float64 {
		return ing.DMFraction
	})
	p.addConstraint("nel_supply", env.NEL, ingredients, func(ing feed.Ingredient) float64 {
		return ing.DMFraction * ing.NEL
	})
	p.addConstraint("cp_supply", env.CP, ingredients, func(ing feed.Ingredient) float64 {
		return ing.DMFraction * ing.CP
	})
	p.addConstraint("ndf_supply", env.NDF, ingredients, func(ing feed.Ingredient) float64 {
		return ing.DMFraction * ing.NDF
	})
	p.addConstraint("starch_supply", env.Starch, ingredients, func(ing feed.Ingredient) float64 {
		return ing.DMFraction * ing.Starch
	})
	p.addConstraint("fat_supply", env.Fat, ingredients, func(ing feed.Ingredient) float64 {
		return ing.DMFraction * ing.Fat
	})

	// Forage share of DMI, kept linear by multiplying the band through:
	// lower·ΣxᵢDMᵢ <= Σ_{i∈F} xᵢDMᵢ <= upper·ΣxᵢDMᵢ.
	forageMin := make([]float64, n)
	forageMax := make([]float64, n)
	for i, ing := range ingredients {
		ind := 0.0
		if forage[ing.Name] {
			ind = 1.0
		}
		forageMin[i] = ing.DMFraction * (ind - in.Forage.Lower)
		forageMax[i] = ing.DMFraction * (ind - in.Forage.Upper)
	}
	p.Constraints = append(p.Constraints,
		Constraint{Name: "forage_min", Coeffs: forageMin, Lower: 0, Upper: math.Inf(1)},
		Constraint{Name: "forage_max", Coeffs: forageMax, Lower: math.Inf(-1), Upper: 0},
	)

	for _, r := range in.Ratios {
		iNum, ok := p.index[r.Numerator]
		if !ok {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"ratio numerator not in library", map[string]any{"ingredient": r.Numerator})
		}
		iDen, ok := p.index[r.Denominator]
		if !ok {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"ratio denominator not in library", map[string]any{"ingredient": r.Denominator})
		}
		if r.Min < 0 || (r.Max < r.Min && !math.IsInf(r.Max, 1)) {
			return nil, errors.Newf(errors.ErrCodeInvalidConfig,
				"ratio %s/%s bounds [%g, %g] invalid", r.Numerator, r.Denominator, r.Min, r.Max)
		}

		name := "ratio_" + r.Numerator + "_over_" + r.Denominator
		if r.Min > 0 {
			coeffs := make([]float64, n)
			coeffs[iNum] = 1
			coeffs[iDen] = -r.Min
			p.Constraints = append(p.Constraints,
				Constraint{Name: name + "_min", Coeffs: coeffs, Lower: 0, Upper: math.Inf(1)})
		}
		if !math.IsInf(r.Max, 1) {
			coeffs := make([]float64, n)
			coeffs[iNum] = 1
			coeffs[iDen] = -r.Max
			p.Constraints = append(p.Constraints,
				Constraint{Name: name + "_max", Coeffs: coeffs, Lower: math.Inf(-1), Upper: 0})
		}
	}

	cost := make([]float64, n)
	for i, ing := range ingredients {
		cost[i] = ing.PricePerKg
	}
	p.Cost = Expression{Coeffs: cost}

	mc, err := methane.LinearCoefficients(in.Equation, env.DMBaseline)
	if err != nil {
		return nil, err
	}
	ch4 := make([]float64, n)
	for i, ing := range ingredients {
		dm := ing.DMFraction
		ch4[i] = mc.DMI*dm +
			mc.NEL*dm*ing.NEL +
			mc.NDF*dm*ing.NDF +
			mc.TFA*dm*ing.TFA +
			mc.DNDF*dm*ing.DNDF
	}
	p.Methane = Expression{Coeffs: ch4, Constant: mc.Constant}

	return p, nil
}

func (p *Program) addConstraint(name string, r requirement.Range, ingredients []feed.Ingredient, term func(feed.Ingredient) float64) {
	coeffs := make([]float64, len(ingredients))
	for i, ing := range ingredients {
		coeffs[i] = term(ing)
	}
	p.Constraints = append(p.Constraints, Constraint{
		Name:   name,
		Coeffs: coeffs,
		Lower:  r.Lower,
		Upper:  r.Upper,
	})
}

// Compose attaches the minimization objective for the given mode. Weight is
// only consulted in ModeBoth and must be non-negative.
func (p *Program) Compose(mode Mode, weight float64) error {
	if !mode.IsValid() {
		return errors.Newf(errors.ErrCodeInvalidConfig,
			"invalid objective mode %q, supported values: %v", mode, SupportedModes())
	}
	if mode == ModeBoth && weight < 0 {
		return errors.Newf(errors.ErrCodeInvalidConfig,
			"methane weight must be non-negative, got %g", weight)
	}

	var expr Expression
	switch mode {
	case ModeCost:
		expr = clone(p.Cost)
	case ModeMethane:
		expr = clone(p.Methane)
	case ModeBoth:
		coeffs := make([]float64, len(p.Cost.Coeffs))
		for i := range coeffs {
			coeffs[i] = p.Cost.Coeffs[i] + weight*p.Methane.Coeffs[i]
		}
		expr = Expression{Coeffs: coeffs, Constant: p.Cost.Constant + weight*p.Methane.Constant}
	}

	p.Objective = &Objective{Mode: mode, Weight: weight, Expression: expr}
	return nil
}

func clone(e Expression) Expression {
	coeffs := make([]float64, len(e.Coeffs))
	copy(coeffs, e.Coeffs)
	return Expression{Coeffs: coeffs, Constant: e.Constant}
}
