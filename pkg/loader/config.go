/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package loader

import (
	"math"

	"github.com/herdwise/feedopt/pkg/errors"
	"github.com/herdwise/feedopt/pkg/herd"
	"github.com/herdwise/feedopt/pkg/methane"
	"github.com/herdwise/feedopt/pkg/model"
	"github.com/herdwise/feedopt/pkg/optimizer"
	"github.com/herdwise/feedopt/pkg/requirement"
	"github.com/herdwise/feedopt/pkg/serializer"
)

// RunConfigFile is the YAML (or JSON) shape of a run configuration. Pointer
// fields distinguish "unset, use the default" from an explicit zero.
type RunConfigFile struct {
	GroupCount      *int     `json:"group_count" yaml:"group_count"`
	Criterion       string   `json:"criterion" yaml:"criterion"`
	DMVary          *float64 `json:"dm_vary" yaml:"dm_vary"`
	NELVary         *float64 `json:"nel_vary" yaml:"nel_vary"`
	NELStatistic    string   `json:"nel_statistic" yaml:"nel_statistic"`
	NELPercentile   *float64 `json:"nel_percentile" yaml:"nel_percentile"`
	MethaneEquation string   `json:"methane_equation" yaml:"methane_equation"`
	Objective       string   `json:"objective" yaml:"objective"`
	MethaneWeight   *float64 `json:"methane_weight" yaml:"methane_weight"`

	Forage struct {
		Ingredients []string  `json:"ingredients" yaml:"ingredients"`
		Band        []float64 `json:"band" yaml:"band"`
	} `json:"forage" yaml:"forage"`

	NutrientBands map[string]requirement.Band `json:"nutrient_bands" yaml:"nutrient_bands"`

	Ratios []struct {
		Numerator   string   `json:"numerator" yaml:"numerator"`
		Denominator string   `json:"denominator" yaml:"denominator"`
		Min         float64  `json:"min" yaml:"min"`
		Max         *float64 `json:"max" yaml:"max"`
	} `json:"ratios" yaml:"ratios"`
}

// ReadRunConfig loads a YAML (or JSON) run configuration and resolves it
// against the defaults. Unset fields keep their default; set fields are
// parsed and validated where the value is an enum.
func ReadRunConfig(path string) (*optimizer.Config, error) {
	raw, err := serializer.FromFile[RunConfigFile](path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "failed to read run configuration", err)
	}
	return ResolveRunConfig(optimizer.DefaultConfig(), raw)
}

// ResolveRunConfig applies a raw configuration on top of a base config; set
// fields override, unset fields keep the base value.
func ResolveRunConfig(base optimizer.Config, raw *RunConfigFile) (*optimizer.Config, error) {
	cfg := base

	if raw.GroupCount != nil {
		cfg.GroupCount = *raw.GroupCount
	}
	if raw.Criterion != "" {
		c, err := herd.ParseCriterion(raw.Criterion)
		if err != nil {
			return nil, err
		}
		cfg.Criterion = c
	}
	if raw.DMVary != nil {
		cfg.Requirement.DMVary = *raw.DMVary
	}
	if raw.NELVary != nil {
		cfg.Requirement.NELVary = *raw.NELVary
	}
	if raw.NELStatistic != "" {
		s, err := requirement.ParseStatistic(raw.NELStatistic)
		if err != nil {
			return nil, err
		}
		cfg.Requirement.Statistic = s
	}
	if raw.NELPercentile != nil {
		cfg.Requirement.Percentile = *raw.NELPercentile
	}
	if raw.MethaneEquation != "" {
		eq, err := methane.ParseEquation(raw.MethaneEquation)
		if err != nil {
			return nil, err
		}
		cfg.Equation = eq
	}
	if raw.Objective != "" {
		m, err := model.ParseMode(raw.Objective)
		if err != nil {
			return nil, err
		}
		cfg.Mode = m
	}
	if raw.MethaneWeight != nil {
		cfg.MethaneWeight = *raw.MethaneWeight
	}

	if raw.Forage.Ingredients != nil {
		cfg.Forage.Ingredients = raw.Forage.Ingredients
	}
	switch len(raw.Forage.Band) {
	case 0:
	case 2:
		cfg.Forage.Lower, cfg.Forage.Upper = raw.Forage.Band[0], raw.Forage.Band[1]
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfig,
			"forage band must be [lower, upper], got %v", raw.Forage.Band)
	}

	for name, band := range raw.NutrientBands {
		switch name {
		case "cp":
			cfg.Requirement.Bands.CP = band
		case "ndf":
			cfg.Requirement.Bands.NDF = band
		case "starch":
			cfg.Requirement.Bands.Starch = band
		case "fat":
			cfg.Requirement.Bands.Fat = band
		default:
			return nil, errors.Newf(errors.ErrCodeInvalidConfig,
				"unknown nutrient band %q, supported: [cp ndf starch fat]", name)
		}
	}

	if raw.Ratios != nil {
		cfg.Ratios = nil
	}
	for _, r := range raw.Ratios {
		max := math.Inf(1)
		if r.Max != nil {
			max = *r.Max
		}
		cfg.Ratios = append(cfg.Ratios, model.RatioSpec{
			Numerator:   r.Numerator,
			Denominator: r.Denominator,
			Min:         r.Min,
			Max:         max,
		})
	}

	return &cfg, nil
}
