/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package optimizer

import (
	"github.com/herdwise/feedopt/pkg/errors"
	"github.com/herdwise/feedopt/pkg/feed"
	"github.com/herdwise/feedopt/pkg/herd"
	"github.com/herdwise/feedopt/pkg/methane"
	"github.com/herdwise/feedopt/pkg/model"
	"github.com/herdwise/feedopt/pkg/requirement"
)

// Config is one run's complete configuration. Every field is validated
// before any group model is built so a bad run fails fast.
type Config struct {
	GroupCount    int
	Criterion     herd.Criterion
	Requirement   requirement.Spec
	Equation      methane.Equation
	Mode          model.Mode
	MethaneWeight float64
	Forage        model.ForageSpec
	Ratios        []model.RatioSpec
}

// DefaultConfig returns the run configuration used when a config file leaves
// fields unset: one group, cost objective, NASEM methane accounting, and the
// default requirement spec and forage band.
func DefaultConfig() Config {
	fl, fu := model.DefaultForageBand()
	return Config{
		GroupCount:  1,
		Criterion:   herd.ByMilkYield,
		Requirement: requirement.DefaultSpec(),
		Equation:    methane.NASEM,
		Mode:        model.ModeCost,
		Forage:      model.ForageSpec{Lower: fl, Upper: fu},
	}
}

// Validate checks the whole configuration against the ingredient library.
func (c Config) Validate(lib *feed.Library) error {
	if lib == nil || lib.Len() == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "ingredient library cannot be empty")
	}
	if c.GroupCount < 1 || c.GroupCount > 3 {
		return errors.Newf(errors.ErrCodeInvalidGroupCount,
			"group count must be 1, 2, or 3, got %d", c.GroupCount)
	}
	if c.GroupCount > 1 && !c.Criterion.IsValid() {
		return errors.Newf(errors.ErrCodeInvalidConfig,
			"invalid grouping criterion %q, supported values: %v",
			c.Criterion, herd.SupportedCriteria())
	}
	if err := c.Requirement.Validate(); err != nil {
		return err
	}
	if !c.Equation.IsValid() {
		return errors.Newf(errors.ErrCodeInvalidConfig,
			"invalid methane equation %q, supported values: %v",
			c.Equation, methane.SupportedEquations())
	}
	if !c.Mode.IsValid() {
		return errors.Newf(errors.ErrCodeInvalidConfig,
			"invalid objective mode %q, supported values: %v",
			c.Mode, model.SupportedModes())
	}
	if c.MethaneWeight < 0 {
		return errors.Newf(errors.ErrCodeInvalidConfig,
			"methane weight must be non-negative, got %g", c.MethaneWeight)
	}
	if err := lib.ValidateForage(c.Forage.Ingredients); err != nil {
		return err
	}
	if c.Forage.Lower < 0 || c.Forage.Upper < c.Forage.Lower || c.Forage.Upper > 1 {
		return errors.Newf(errors.ErrCodeInvalidConfig,
			"forage band [%g, %g] must satisfy 0 <= lower <= upper <= 1",
			c.Forage.Lower, c.Forage.Upper)
	}
	for _, r := range c.Ratios {
		if _, ok := lib.Lookup(r.Numerator); !ok {
			return errors.NewWithContext(errors.ErrCodeIngredientNotInLibrary,
				"ratio numerator not in library", map[string]any{"ingredient": r.Numerator})
		}
		if _, ok := lib.Lookup(r.Denominator); !ok {
			return errors.NewWithContext(errors.ErrCodeIngredientNotInLibrary,
				"ratio denominator not in library", map[string]any{"ingredient": r.Denominator})
		}
	}
	return nil
}
