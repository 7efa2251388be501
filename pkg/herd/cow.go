/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package herd

import (
	"math"

	"github.com/herdwise/feedopt/pkg/errors"
)

// Cow is one animal's input record. DMI is observed dry-matter intake in kg
// per day; NEL is the energy requirement in Mcal per kg of dry matter.
// DaysInMilk and MilkYield are grouping attributes and are NaN when the
// source table did not carry them.
type Cow struct {
	ID         string
	DMI        float64
	NEL        float64
	DaysInMilk float64
	MilkYield  float64
}

// Criterion selects the attribute cows are ranked by when splitting the herd.
type Criterion string

const (
	// ByDaysInMilk ranks cows by days in milk.
	ByDaysInMilk Criterion = "dim"
	// ByNEL ranks cows by energy requirement.
	ByNEL Criterion = "nel"
	// ByMilkYield ranks cows by daily milk yield.
	ByMilkYield Criterion = "milk"
)

// IsValid reports whether the criterion is one of the supported values.
func (c Criterion) IsValid() bool {
	switch c {
	case ByDaysInMilk, ByNEL, ByMilkYield:
		return true
	default:
		return false
	}
}

func (c Criterion) String() string {
	return string(c)
}

// SupportedCriteria returns the valid grouping criteria.
func SupportedCriteria() []string {
	return []string{string(ByDaysInMilk), string(ByNEL), string(ByMilkYield)}
}

// ParseCriterion validates and converts a criterion name.
func ParseCriterion(s string) (Criterion, error) {
	c := Criterion(s)
	if !c.IsValid() {
		return "", errors.Newf(errors.ErrCodeInvalidConfig,
			"invalid grouping criterion %q, supported values: %v", s, SupportedCriteria())
	}
	return c, nil
}

// value returns the cow's attribute for the criterion, NaN when absent.
func (c Criterion) value(cow Cow) float64 {
	switch c {
	case ByDaysInMilk:
		return cow.DaysInMilk
	case ByNEL:
		return cow.NEL
	case ByMilkYield:
		return cow.MilkYield
	default:
		return math.NaN()
	}
}
