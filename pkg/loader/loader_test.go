/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package loader

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herdwise/feedopt/pkg/errors"
	"github.com/herdwise/feedopt/pkg/herd"
	"github.com/herdwise/feedopt/pkg/methane"
	"github.com/herdwise/feedopt/pkg/model"
	"github.com/herdwise/feedopt/pkg/requirement"
)

func testPaths() Paths {
	return Paths{
		Cows:      filepath.Join("testdata", "cows.csv"),
		Nutrients: filepath.Join("testdata", "nutrients.csv"),
		MinMax:    filepath.Join("testdata", "minmax.csv"),
		Prices:    filepath.Join("testdata", "prices.csv"),
	}
}

func TestLoad(t *testing.T) {
	cows, lib, err := Load(context.Background(), testPaths())
	require.NoError(t, err)

	require.Len(t, cows, 10)
	assert.Equal(t, "cow-01", cows[0].ID)
	assert.Equal(t, 18.0, cows[0].DMI)
	assert.Equal(t, 1.72, cows[0].NEL)
	assert.Equal(t, 200.0, cows[0].DaysInMilk)
	assert.Equal(t, 28.0, cows[0].MilkYield)

	require.Equal(t, 5, lib.Len())
	silage, ok := lib.Lookup("corn silage")
	require.True(t, ok)
	// Percent columns arrive as fractions.
	assert.InDelta(t, 0.35, silage.DMFraction, 1e-12)
	assert.InDelta(t, 0.08, silage.CP, 1e-12)
	assert.InDelta(t, 0.42, silage.NDF, 1e-12)
	assert.InDelta(t, 0.025, silage.TFA, 1e-12)
	// NEL is Mcal/kg and passes through unscaled.
	assert.InDelta(t, 1.55, silage.NEL, 1e-12)
	assert.InDelta(t, 0.06, silage.PricePerKg, 1e-12)

	// No min/max row: open inclusion range.
	assert.Zero(t, silage.MinKg)
	assert.True(t, math.IsInf(silage.MaxKg, 1))

	corn, ok := lib.Lookup("ground corn")
	require.True(t, ok)
	assert.Equal(t, 12.0, corn.MaxKg)

	// Empty max cell means unbounded.
	sbm, ok := lib.Lookup("soybean meal")
	require.True(t, ok)
	assert.Equal(t, 0.5, sbm.MinKg)
	assert.True(t, math.IsInf(sbm.MaxKg, 1))
}

func TestReadCows_OptionalColumnsAbsent(t *testing.T) {
	cows, err := ReadCows(context.Background(), filepath.Join("testdata", "cows_no_milk.csv"))
	require.NoError(t, err)
	require.Len(t, cows, 2)
	assert.True(t, math.IsNaN(cows[0].MilkYield))
	assert.True(t, math.IsNaN(cows[0].DaysInMilk))

	// Grouping by the absent attribute must fail downstream.
	_, err = herd.Split(cows, 2, herd.ByMilkYield)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMissingCriterion))
}

func TestLoadLibrary_NoCowsTableNeeded(t *testing.T) {
	p := testPaths()
	p.Cows = ""

	lib, err := LoadLibrary(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 5, lib.Len())
}

func TestLoad_CrossChecks(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, writeFile(path, content))
		return path
	}

	nutrients := write("nutrients.csv",
		"Ingredient,DM,NEL,CP,NDF,STARCH,FAT,TFA,DNDF\nhay,90,1.4,20,40,2,2.5,2,18\n")
	cows := write("cows.csv", "ID,DMI,NEL\nc1,20,1.6\n")

	t.Run("minmax names unknown ingredient", func(t *testing.T) {
		p := Paths{
			Cows:      cows,
			Nutrients: nutrients,
			MinMax:    write("minmax.csv", "Ingredient,min,max\nbarley,0,5\n"),
			Prices:    write("prices.csv", "Ingredient,price\nhay,0.2\n"),
		}
		_, _, err := Load(context.Background(), p)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeIngredientNotInLibrary))
	})

	t.Run("price names unknown ingredient", func(t *testing.T) {
		p := Paths{
			Cows:      cows,
			Nutrients: nutrients,
			MinMax:    write("minmax2.csv", "Ingredient,min,max\nhay,0,5\n"),
			Prices:    write("prices2.csv", "Ingredient,price\nhay,0.2\nbarley,0.1\n"),
		}
		_, _, err := Load(context.Background(), p)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeIngredientNotInLibrary))
	})

	t.Run("unpriced ingredient", func(t *testing.T) {
		p := Paths{
			Cows:      cows,
			Nutrients: nutrients,
			MinMax:    write("minmax3.csv", "Ingredient,min,max\n"),
			Prices:    write("prices3.csv", "Ingredient,price\n"),
		}
		_, _, err := Load(context.Background(), p)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeIngredientNotInLibrary))
	})

	t.Run("inverted bounds", func(t *testing.T) {
		p := Paths{
			Cows:      cows,
			Nutrients: nutrients,
			MinMax:    write("minmax4.csv", "Ingredient,min,max\nhay,5,2\n"),
			Prices:    write("prices4.csv", "Ingredient,price\nhay,0.2\n"),
		}
		_, _, err := Load(context.Background(), p)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
	})

	t.Run("missing column", func(t *testing.T) {
		p := testPaths()
		p.Cows = write("badcows.csv", "ID,DMI\nc1,20\n")
		_, _, err := Load(context.Background(), p)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
	})

	t.Run("missing file", func(t *testing.T) {
		p := testPaths()
		p.Prices = filepath.Join(dir, "nope.csv")
		_, _, err := Load(context.Background(), p)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
	})
}

func TestReadRunConfig(t *testing.T) {
	cfg, err := ReadRunConfig(filepath.Join("testdata", "run.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.GroupCount)
	assert.Equal(t, herd.ByMilkYield, cfg.Criterion)
	assert.Equal(t, 0.02, cfg.Requirement.DMVary)
	// Unset fields keep their defaults.
	assert.Equal(t, 0.01, cfg.Requirement.NELVary)
	assert.Equal(t, 83.0, cfg.Requirement.Percentile)
	assert.Equal(t, requirement.StatisticMean, cfg.Requirement.Statistic)
	assert.Equal(t, methane.Ellis, cfg.Equation)
	assert.Equal(t, model.ModeBoth, cfg.Mode)
	assert.Equal(t, 5.0, cfg.MethaneWeight)

	assert.Equal(t, []string{"corn silage", "alfalfa hay"}, cfg.Forage.Ingredients)
	assert.Equal(t, 0.45, cfg.Forage.Lower)
	assert.Equal(t, 0.55, cfg.Forage.Upper)

	assert.Equal(t, requirement.Band{Lower: 0.16, Upper: 0.19}, cfg.Requirement.Bands.CP)
	// Untouched bands keep defaults.
	assert.Equal(t, requirement.Band{Lower: 0.25, Upper: 0.33}, cfg.Requirement.Bands.NDF)

	require.Len(t, cfg.Ratios, 2)
	assert.Equal(t, model.RatioSpec{Numerator: "corn silage", Denominator: "alfalfa hay", Min: 1, Max: 2}, cfg.Ratios[0])
	assert.Equal(t, 0.5, cfg.Ratios[1].Min)
	assert.True(t, math.IsInf(cfg.Ratios[1].Max, 1))
}

func TestReadRunConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, writeFile(path, content))
		return path
	}

	tests := []struct {
		name string
		yaml string
	}{
		{"bad criterion", "criterion: weight\n"},
		{"bad statistic", "nel_statistic: median\n"},
		{"bad equation", "methane_equation: ipcc\n"},
		{"bad objective", "objective: profit\n"},
		{"bad forage band", "forage:\n  band: [0.4]\n"},
		{"unknown nutrient band", "nutrient_bands:\n  sugar:\n    lower: 0\n    upper: 0.1\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadRunConfig(write(tc.name+".yaml", tc.yaml))
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
		})
	}

	_, err := ReadRunConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
