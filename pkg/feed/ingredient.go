/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package feed

import (
	"math"

	"github.com/herdwise/feedopt/pkg/errors"
)

// Ingredient describes one feed ingredient on a dry-matter basis, together
// with its as-fed price and allowed as-fed inclusion range.
//
// Nutrient fields are fractions of dry matter in [0,1], not percentages;
// the loader converts percent columns at the boundary. NEL is net energy for
// lactation in Mcal per kg of dry matter. MinKg and MaxKg bound the as-fed
// inclusion in kg per cow per day; MaxKg may be +Inf when no upper bound is
// configured.
type Ingredient struct {
	Name       string
	DMFraction float64 // as-fed → dry matter conversion, (0,1]

	NEL    float64 // Mcal/kg DM
	CP     float64 // crude protein, fraction of DM
	NDF    float64 // neutral detergent fiber, fraction of DM
	Starch float64 // fraction of DM
	Fat    float64 // crude fat, fraction of DM
	TFA    float64 // total fatty acids, fraction of DM
	DNDF   float64 // digestible NDF, fraction of DM

	PricePerKg float64 // $/kg as fed
	MinKg      float64 // minimum as-fed inclusion, kg/cow/day
	MaxKg      float64 // maximum as-fed inclusion, kg/cow/day (may be +Inf)
}

// Validate checks the per-ingredient invariants.
func (i Ingredient) Validate() error {
	if i.Name == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "ingredient name cannot be empty")
	}
	if i.DMFraction <= 0 || i.DMFraction > 1 {
		return errors.Newf(errors.ErrCodeInvalidConfig,
			"ingredient %q: dry-matter fraction %.4f outside (0, 1]", i.Name, i.DMFraction)
	}
	if i.MinKg < 0 {
		return errors.Newf(errors.ErrCodeInvalidConfig,
			"ingredient %q: minimum inclusion %.4f is negative", i.Name, i.MinKg)
	}
	if i.MaxKg < i.MinKg {
		return errors.Newf(errors.ErrCodeInvalidConfig,
			"ingredient %q: maximum inclusion %.4f below minimum %.4f", i.Name, i.MaxKg, i.MinKg)
	}
	if i.PricePerKg < 0 {
		return errors.Newf(errors.ErrCodeInvalidConfig,
			"ingredient %q: price %.4f is negative", i.Name, i.PricePerKg)
	}
	if math.IsNaN(i.NEL) || math.IsNaN(i.DMFraction) {
		return errors.Newf(errors.ErrCodeInvalidConfig,
			"ingredient %q: non-numeric nutrient values", i.Name)
	}
	return nil
}

// Library is an immutable name-keyed set of ingredients. It is shared
// read-only across groups and outlives every optimization run; nothing
// mutates it after construction.
type Library struct {
	names  []string
	byName map[string]Ingredient
}

// NewLibrary builds a Library from the given ingredients, preserving order.
// Each ingredient is validated; duplicate names are rejected.
func NewLibrary(ingredients []Ingredient) (*Library, error) {
	if len(ingredients) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "ingredient library cannot be empty")
	}

	lib := &Library{
		names:  make([]string, 0, len(ingredients)),
		byName: make(map[string]Ingredient, len(ingredients)),
	}
	for _, ing := range ingredients {
		if err := ing.Validate(); err != nil {
			return nil, err
		}
		if _, exists := lib.byName[ing.Name]; exists {
			return nil, errors.Newf(errors.ErrCodeInvalidConfig,
				"duplicate ingredient %q in library", ing.Name)
		}
		lib.names = append(lib.names, ing.Name)
		lib.byName[ing.Name] = ing
	}
	return lib, nil
}

// Lookup returns the ingredient with the given name.
func (l *Library) Lookup(name string) (Ingredient, bool) {
	ing, ok := l.byName[name]
	return ing, ok
}

// Names returns the ingredient names in library order.
func (l *Library) Names() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Ingredients returns the ingredients in library order.
func (l *Library) Ingredients() []Ingredient {
	out := make([]Ingredient, 0, len(l.names))
	for _, name := range l.names {
		out = append(out, l.byName[name])
	}
	return out
}

// Len returns the number of ingredients in the library.
func (l *Library) Len() int {
	return len(l.names)
}

// ValidateForage checks that every name refers to a library ingredient.
func (l *Library) ValidateForage(names []string) error {
	if len(names) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "at least one forage ingredient is required")
	}
	for _, name := range names {
		if _, ok := l.byName[name]; !ok {
			return errors.NewWithContext(errors.ErrCodeUnknownForageIngredient,
				"forage ingredient not in library",
				map[string]any{"ingredient": name, "library": l.Names()})
		}
	}
	return nil
}
