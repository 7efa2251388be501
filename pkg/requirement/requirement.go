/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package requirement

import (
	"github.com/herdwise/feedopt/pkg/errors"
	"github.com/herdwise/feedopt/pkg/herd"
)

// Statistic selects how the group's per-kg energy requirement is summarized
// before it is scaled by the dry-matter baseline.
type Statistic string

const (
	// StatisticMean uses the arithmetic mean of the members' NEL values.
	StatisticMean Statistic = "mean"
	// StatisticPercentile uses a percentile of the members' NEL values, so
	// the ration covers the bulk of the group rather than just its average.
	StatisticPercentile Statistic = "percentile"
)

// IsValid reports whether the statistic is a supported value.
func (s Statistic) IsValid() bool {
	return s == StatisticMean || s == StatisticPercentile
}

func (s Statistic) String() string {
	return string(s)
}

// ParseStatistic validates and converts a statistic name.
func ParseStatistic(v string) (Statistic, error) {
	s := Statistic(v)
	if !s.IsValid() {
		return "", errors.Newf(errors.ErrCodeInvalidConfig,
			"invalid nel statistic %q, supported values: [%s %s]",
			v, StatisticMean, StatisticPercentile)
	}
	return s, nil
}

// Band is a nutrient inclusion band as a fraction of dry-matter intake.
type Band struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

func (b Band) validate(name string) error {
	if b.Lower < 0 || b.Upper < b.Lower || b.Upper > 1 {
		return errors.Newf(errors.ErrCodeInvalidConfig,
			"%s band [%g, %g] must satisfy 0 <= lower <= upper <= 1", name, b.Lower, b.Upper)
	}
	return nil
}

// Bands holds the per-nutrient fraction-of-DM bands.
type Bands struct {
	CP     Band `json:"cp" yaml:"cp"`
	NDF    Band `json:"ndf" yaml:"ndf"`
	Starch Band `json:"starch" yaml:"starch"`
	Fat    Band `json:"fat" yaml:"fat"`
}

// Spec configures how a group's requirement envelope is derived.
type Spec struct {
	// DMVary and NELVary widen the DM and NEL baselines into symmetric
	// ranges, e.g. 0.01 allows a 1% deviation either side.
	DMVary  float64
	NELVary float64

	// Statistic and Percentile pick the NEL summary. Percentile is in
	// [0,100] and only consulted when Statistic is StatisticPercentile.
	Statistic  Statistic
	Percentile float64

	Bands Bands
}

// DefaultSpec returns the spec used when a run config leaves the
// requirement section empty: 1% tolerance bands, the 83rd NEL percentile,
// and lactating-cow nutrient bands.
func DefaultSpec() Spec {
	return Spec{
		DMVary:     0.01,
		NELVary:    0.01,
		Statistic:  StatisticPercentile,
		Percentile: 83,
		Bands: Bands{
			CP:     Band{Lower: 0.15, Upper: 0.20},
			NDF:    Band{Lower: 0.25, Upper: 0.33},
			Starch: Band{Lower: 0.22, Upper: 0.30},
			Fat:    Band{Lower: 0, Upper: 0.07},
		},
	}
}

// Validate checks the spec's tolerances, statistic, and bands.
func (s Spec) Validate() error {
	if s.DMVary <= 0 || s.DMVary >= 1 {
		return errors.Newf(errors.ErrCodeInvalidConfig,
			"dm_vary must be in (0,1), got %g", s.DMVary)
	}
	if s.NELVary <= 0 || s.NELVary >= 1 {
		return errors.Newf(errors.ErrCodeInvalidConfig,
			"nel_vary must be in (0,1), got %g", s.NELVary)
	}
	if !s.Statistic.IsValid() {
		return errors.Newf(errors.ErrCodeInvalidConfig,
			"invalid nel statistic %q", s.Statistic)
	}
	if s.Statistic == StatisticPercentile && (s.Percentile < 0 || s.Percentile > 100) {
		return errors.Newf(errors.ErrCodeInvalidConfig,
			"nel percentile must be in [0,100], got %g", s.Percentile)
	}
	for _, b := range []struct {
		name string
		band Band
	}{
		{"cp", s.Bands.CP},
		{"ndf", s.Bands.NDF},
		{"starch", s.Bands.Starch},
		{"fat", s.Bands.Fat},
	} {
		if err := b.band.validate(b.name); err != nil {
			return err
		}
	}
	return nil
}

// Range is an inclusive [Lower, Upper] interval in kg or Mcal per cow per day.
type Range struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Lower && v <= r.Upper
}

// Envelope is the per-group feasible region the model builder constrains
// against. All ranges are per cow per day: DM in kg, NEL in Mcal, nutrients
// in kg of dry matter.
type Envelope struct {
	DM     Range
	NEL    Range
	CP     Range
	NDF    Range
	Starch Range
	Fat    Range

	// DMBaseline is the mean group dry-matter intake the ranges were scaled
	// from. NELBaseline is the daily energy target before widening.
	DMBaseline  float64
	NELBaseline float64
}

// BuildEnvelope derives a group's requirement envelope from the spec.
//
// The DM baseline is the group's mean intake; the NEL baseline is the chosen
// NEL statistic times the DM baseline. Both are widened symmetrically by
// their vary factors, and the nutrient ranges are the configured fraction
// bands scaled by the DM baseline.
func BuildEnvelope(group herd.Group, spec Spec) (Envelope, error) {
	if err := spec.Validate(); err != nil {
		return Envelope{}, err
	}
	if group.Size() == 0 {
		return Envelope{}, errors.Newf(errors.ErrCodeInvalidConfig,
			"group %d has no members", group.Index)
	}

	dm := group.MeanDMI()
	if dm <= 0 {
		return Envelope{}, errors.Newf(errors.ErrCodeInvalidConfig,
			"group %d mean dry-matter intake must be positive, got %g", group.Index, dm)
	}

	var nelPerKg float64
	switch spec.Statistic {
	case StatisticMean:
		nelPerKg = group.MeanNEL()
	case StatisticPercentile:
		nelPerKg = group.QuantileNEL(spec.Percentile / 100)
	}
	nel := nelPerKg * dm

	return Envelope{
		DM:          widen(dm, spec.DMVary),
		NEL:         widen(nel, spec.NELVary),
		CP:          scale(spec.Bands.CP, dm),
		NDF:         scale(spec.Bands.NDF, dm),
		Starch:      scale(spec.Bands.Starch, dm),
		Fat:         scale(spec.Bands.Fat, dm),
		DMBaseline:  dm,
		NELBaseline: nel,
	}, nil
}

func widen(base, vary float64) Range {
	return Range{Lower: base * (1 - vary), Upper: base * (1 + vary)}
}

func scale(b Band, dm float64) Range {
	return Range{Lower: b.Lower * dm, Upper: b.Upper * dm}
}
