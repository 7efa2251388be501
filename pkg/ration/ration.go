/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package ration

import (
	"sort"

	"github.com/herdwise/feedopt/pkg/errors"
	"github.com/herdwise/feedopt/pkg/feed"
	"github.com/herdwise/feedopt/pkg/herd"
	"github.com/herdwise/feedopt/pkg/methane"
	"github.com/herdwise/feedopt/pkg/model"
	"github.com/herdwise/feedopt/pkg/solver"
)

// inclusionThresholdKg is the smallest as-fed inclusion worth reporting;
// solver noise below it is dropped from the ingredient table.
const inclusionThresholdKg = 0.01

// IngredientAmount is one ingredient's share of the solved ration, per cow
// per day.
type IngredientAmount struct {
	Name        string  `json:"name" yaml:"name"`
	AsFedKg     float64 `json:"as_fed_kg" yaml:"as_fed_kg"`
	DryMatterKg float64 `json:"dry_matter_kg" yaml:"dry_matter_kg"`
	CostPerDay  float64 `json:"cost_per_day" yaml:"cost_per_day"`
}

// Summary aggregates the solved ration's totals, all per cow per day.
// Nutrient percentages are of dry matter.
type Summary struct {
	Objective     float64 `json:"objective" yaml:"objective"`
	Mode          string  `json:"mode" yaml:"mode"`
	Cost          float64 `json:"cost" yaml:"cost"`
	MethaneKg     float64 `json:"methane_kg" yaml:"methane_kg"`
	MethaneGrams  float64 `json:"methane_g" yaml:"methane_g"`
	DryMatterKg   float64 `json:"dry_matter_kg" yaml:"dry_matter_kg"`
	AsFedKg       float64 `json:"as_fed_kg" yaml:"as_fed_kg"`
	DryMatterPct  float64 `json:"dry_matter_pct" yaml:"dry_matter_pct"`
	NELPerKgDM    float64 `json:"nel_mcal_per_kg_dm" yaml:"nel_mcal_per_kg_dm"`
	CPPct         float64 `json:"cp_pct" yaml:"cp_pct"`
	NDFPct        float64 `json:"ndf_pct" yaml:"ndf_pct"`
	StarchPct     float64 `json:"starch_pct" yaml:"starch_pct"`
	FatPct        float64 `json:"fat_pct" yaml:"fat_pct"`
}

// HerdStats describes the cow group a ration was solved for: intake and
// energy-requirement dispersion, plus the per-day NEL target the group's
// envelope was built around.
type HerdStats struct {
	MeanDMI        float64 `json:"mean_dmi_kg" yaml:"mean_dmi_kg"`
	StdDevDMI      float64 `json:"std_dmi_kg" yaml:"std_dmi_kg"`
	MeanNEL        float64 `json:"mean_nel_mcal_per_kg" yaml:"mean_nel_mcal_per_kg"`
	StdDevNEL      float64 `json:"std_nel_mcal_per_kg" yaml:"std_nel_mcal_per_kg"`
	NELRequirement float64 `json:"nel_requirement_mcal" yaml:"nel_requirement_mcal"`
}

// Solved is the interpreted optimum for one cow group.
type Solved struct {
	GroupIndex  int                `json:"group" yaml:"group"`
	CowCount    int                `json:"cows" yaml:"cows"`
	Herd        HerdStats          `json:"herd" yaml:"herd"`
	Summary     Summary            `json:"summary" yaml:"summary"`
	Ingredients []IngredientAmount `json:"ingredients" yaml:"ingredients"`
}

// Interpret turns a solver result back into feeding terms: per-ingredient
// as-fed amounts (inclusions under 0.01 kg omitted, largest first), intake
// and nutrient totals, cost from prices, and methane re-evaluated exactly on
// the realized composition rather than the objective's linear form. Inputs
// are not mutated.
func Interpret(group herd.Group, p *model.Program, res *solver.Result, lib *feed.Library, eq methane.Equation) (*Solved, error) {
	if p == nil || p.Objective == nil {
		return nil, errors.New(errors.ErrCodeInternal, "program has no composed objective")
	}
	if res == nil {
		return nil, errors.New(errors.ErrCodeInternal, "nil solver result")
	}
	if len(res.Values) != len(p.Variables) {
		return nil, errors.Newf(errors.ErrCodeInternal,
			"result has %d values for %d variables", len(res.Values), len(p.Variables))
	}

	s := &Solved{
		GroupIndex: group.Index,
		CowCount:   group.Size(),
		Summary: Summary{
			Objective: res.Objective,
			Mode:      p.Objective.Mode.String(),
		},
	}

	var intake methane.Intake
	var cpKg, starchKg, fatKg float64
	for i, v := range p.Variables {
		ing, ok := lib.Lookup(v.Name)
		if !ok {
			return nil, errors.NewWithContext(errors.ErrCodeInternal,
				"program variable not in library", map[string]any{"ingredient": v.Name})
		}

		asFed := res.Values[i]
		if asFed < 0 {
			// Bound rows keep the solution non-negative up to tolerance.
			asFed = 0
		}
		dm := asFed * ing.DMFraction

		s.Summary.AsFedKg += asFed
		s.Summary.Cost += asFed * ing.PricePerKg
		intake.DMI += dm
		intake.NEL += dm * ing.NEL
		intake.NDF += dm * ing.NDF
		intake.TFA += dm * ing.TFA
		intake.DNDF += dm * ing.DNDF
		cpKg += dm * ing.CP
		starchKg += dm * ing.Starch
		fatKg += dm * ing.Fat

		if asFed >= inclusionThresholdKg {
			s.Ingredients = append(s.Ingredients, IngredientAmount{
				Name:        ing.Name,
				AsFedKg:     asFed,
				DryMatterKg: dm,
				CostPerDay:  asFed * ing.PricePerKg,
			})
		}
	}

	if intake.DMI <= 0 {
		return nil, errors.Newf(errors.ErrCodeInternal,
			"solved ration for group %d has no dry-matter intake", group.Index)
	}

	ch4, err := methane.Estimate(eq, intake)
	if err != nil {
		return nil, err
	}

	s.Summary.MethaneKg = ch4
	s.Summary.MethaneGrams = ch4 * 1000
	s.Summary.DryMatterKg = intake.DMI
	s.Summary.DryMatterPct = 100 * intake.DMI / s.Summary.AsFedKg
	s.Summary.NELPerKgDM = intake.NEL / intake.DMI
	s.Summary.CPPct = 100 * cpKg / intake.DMI
	s.Summary.NDFPct = 100 * intake.NDF / intake.DMI
	s.Summary.StarchPct = 100 * starchKg / intake.DMI
	s.Summary.FatPct = 100 * fatKg / intake.DMI

	sort.SliceStable(s.Ingredients, func(i, j int) bool {
		return s.Ingredients[i].AsFedKg > s.Ingredients[j].AsFedKg
	})

	return s, nil
}
