/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package herd

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/herdwise/feedopt/pkg/errors"
)

// Group is an ordered cohort of cows sharing one optimization problem.
// Index is 1-based and stable across a run.
type Group struct {
	Index int
	Cows  []Cow
}

// Size returns the number of cows in the group.
func (g Group) Size() int {
	return len(g.Cows)
}

// MeanDMI returns the arithmetic mean dry-matter intake across members.
func (g Group) MeanDMI() float64 {
	return stat.Mean(g.values(func(c Cow) float64 { return c.DMI }), nil)
}

// MeanNEL returns the arithmetic mean energy requirement across members.
func (g Group) MeanNEL() float64 {
	return stat.Mean(g.values(func(c Cow) float64 { return c.NEL }), nil)
}

// StdDevDMI returns the sample standard deviation of members' dry-matter
// intake; zero for a single-cow group.
func (g Group) StdDevDMI() float64 {
	return sampleStdDev(g.values(func(c Cow) float64 { return c.DMI }))
}

// StdDevNEL returns the sample standard deviation of members' energy
// requirements; zero for a single-cow group.
func (g Group) StdDevNEL() float64 {
	return sampleStdDev(g.values(func(c Cow) float64 { return c.NEL }))
}

func sampleStdDev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	return stat.StdDev(vals, nil)
}

// QuantileNEL returns the p-th quantile (p in [0,1]) of the members' energy
// requirements, interpolating linearly between the order statistics at rank
// p·(n−1). This is the numpy percentile convention the requirement tables
// were calibrated against; it differs from gonum's cumulative-weight
// quantile at interior percentiles.
func (g Group) QuantileNEL(p float64) float64 {
	vals := g.values(func(c Cow) float64 { return c.NEL })
	sort.Float64s(vals)

	rank := p * float64(len(vals)-1)
	lo := int(math.Floor(rank))
	if lo >= len(vals)-1 {
		return vals[len(vals)-1]
	}
	frac := rank - float64(lo)
	return vals[lo] + frac*(vals[lo+1]-vals[lo])
}

func (g Group) values(f func(Cow) float64) []float64 {
	out := make([]float64, len(g.Cows))
	for i, c := range g.Cows {
		out[i] = f(c)
	}
	return out
}

// Split partitions cows into count groups ranked by the criterion.
//
// Cows are stably sorted ascending by the criterion value and divided into
// contiguous partitions of as-equal-as-possible size, with the remainder
// spread over the earlier partitions (sizes never differ by more than one).
// With count == 1 the criterion is ignored and a single group holds every
// cow in input order.
func Split(cows []Cow, count int, by Criterion) ([]Group, error) {
	if count < 1 || count > 3 {
		return nil, errors.Newf(errors.ErrCodeInvalidGroupCount,
			"group count must be 1, 2, or 3, got %d", count)
	}
	if len(cows) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "cow set cannot be empty")
	}
	if count > len(cows) {
		return nil, errors.Newf(errors.ErrCodeInvalidGroupCount,
			"cannot split %d cows into %d groups", len(cows), count)
	}

	if count == 1 {
		members := make([]Cow, len(cows))
		copy(members, cows)
		return []Group{{Index: 1, Cows: members}}, nil
	}

	if !by.IsValid() {
		return nil, errors.Newf(errors.ErrCodeInvalidConfig,
			"invalid grouping criterion %q, supported values: %v", by, SupportedCriteria())
	}
	for _, cow := range cows {
		if math.IsNaN(by.value(cow)) {
			return nil, errors.NewWithContext(errors.ErrCodeMissingCriterion,
				"grouping criterion value missing from cow record",
				map[string]any{"cow": cow.ID, "criterion": by.String()})
		}
	}

	ranked := make([]Cow, len(cows))
	copy(ranked, cows)
	// Stable sort preserves input order among equal criterion values.
	sort.SliceStable(ranked, func(i, j int) bool {
		return by.value(ranked[i]) < by.value(ranked[j])
	})

	groups := make([]Group, 0, count)
	base, rem := len(ranked)/count, len(ranked)%count
	start := 0
	for i := 0; i < count; i++ {
		size := base
		if i < rem {
			size++
		}
		groups = append(groups, Group{
			Index: i + 1,
			Cows:  ranked[start : start+size],
		})
		start += size
	}
	return groups, nil
}
