/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/herdwise/feedopt/pkg/errors"
	"github.com/herdwise/feedopt/pkg/feed"
	"github.com/herdwise/feedopt/pkg/herd"
)

// Paths names the four input tables of a run.
type Paths struct {
	Cows      string
	Nutrients string
	MinMax    string
	Prices    string
}

// Load reads the herd and ingredient tables and assembles the library.
//
// The four CSV files are read concurrently. Min/max and price rows must
// refer to ingredients present in the nutrient table, and every nutrient
// ingredient must be priced; an ingredient absent from the min/max table
// gets the open inclusion range [0, +Inf).
func Load(ctx context.Context, p Paths) ([]herd.Cow, *feed.Library, error) {
	var (
		cows []herd.Cow
		lib  *feed.Library
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cows, err = ReadCows(ctx, p.Cows)
		return err
	})
	g.Go(func() error {
		var err error
		lib, err = LoadLibrary(ctx, p)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	slog.Debug("loaded input tables", "cows", len(cows), "ingredients", lib.Len())
	return cows, lib, nil
}

// LoadLibrary reads the nutrient, min/max, and price tables and assembles
// the ingredient library; the cows table is not needed and p.Cows may be
// empty.
func LoadLibrary(ctx context.Context, p Paths) (*feed.Library, error) {
	var (
		nutrients []feed.Ingredient
		bounds    map[string][2]float64
		prices    map[string]float64
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		nutrients, err = readNutrients(ctx, p.Nutrients)
		return err
	})
	g.Go(func() error {
		var err error
		bounds, err = readMinMax(ctx, p.MinMax)
		return err
	})
	g.Go(func() error {
		var err error
		prices, err = readPrices(ctx, p.Prices)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(nutrients))
	for _, ing := range nutrients {
		known[ing.Name] = true
	}
	for name := range bounds {
		if !known[name] {
			return nil, errors.NewWithContext(errors.ErrCodeIngredientNotInLibrary,
				"min/max entry refers to an ingredient absent from the nutrient table",
				map[string]any{"ingredient": name})
		}
	}
	for name := range prices {
		if !known[name] {
			return nil, errors.NewWithContext(errors.ErrCodeIngredientNotInLibrary,
				"price entry refers to an ingredient absent from the nutrient table",
				map[string]any{"ingredient": name})
		}
	}

	for i := range nutrients {
		ing := &nutrients[i]
		price, ok := prices[ing.Name]
		if !ok {
			return nil, errors.NewWithContext(errors.ErrCodeIngredientNotInLibrary,
				"ingredient has no price", map[string]any{"ingredient": ing.Name})
		}
		ing.PricePerKg = price

		if b, ok := bounds[ing.Name]; ok {
			ing.MinKg, ing.MaxKg = b[0], b[1]
		} else {
			ing.MinKg, ing.MaxKg = 0, math.Inf(1)
		}
	}

	lib, err := feed.NewLibrary(nutrients)
	if err != nil {
		return nil, err
	}

	slog.Debug("assembled ingredient library", "ingredients", lib.Len(), "bounded", len(bounds))
	return lib, nil
}

// ReadCows parses the herd table. ID, DMI, and NEL columns are required;
// DIM and MILK are optional and read as NaN when the column or value is
// absent.
func ReadCows(ctx context.Context, path string) ([]herd.Cow, error) {
	rows, header, err := readTable(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(path, header, "id", "dmi", "nel"); err != nil {
		return nil, err
	}

	cows := make([]herd.Cow, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		id := row["id"]
		if id == "" {
			return nil, rowErr(path, i, "empty cow id")
		}
		if seen[id] {
			return nil, rowErr(path, i, "duplicate cow id %q", id)
		}
		seen[id] = true

		dmi, err := parseFloat(path, i, "dmi", row["dmi"])
		if err != nil {
			return nil, err
		}
		nel, err := parseFloat(path, i, "nel", row["nel"])
		if err != nil {
			return nil, err
		}
		if dmi <= 0 || nel <= 0 {
			return nil, rowErr(path, i, "cow %q: dmi and nel must be positive", id)
		}

		cows = append(cows, herd.Cow{
			ID:         id,
			DMI:        dmi,
			NEL:        nel,
			DaysInMilk: optionalFloat(row, "dim"),
			MilkYield:  optionalFloat(row, "milk"),
		})
	}
	if len(cows) == 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfig, "%s: no cow rows", path)
	}
	return cows, nil
}

// readNutrients parses the nutrient table. Percent columns are converted to
// fractions here so the rest of the system never sees percentages; NEL is
// Mcal per kg DM and passes through unscaled.
func readNutrients(ctx context.Context, path string) ([]feed.Ingredient, error) {
	rows, header, err := readTable(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(path, header,
		"ingredient", "dm", "nel", "cp", "ndf", "starch", "fat", "tfa", "dndf"); err != nil {
		return nil, err
	}

	out := make([]feed.Ingredient, 0, len(rows))
	for i, row := range rows {
		name := row["ingredient"]
		if name == "" {
			return nil, rowErr(path, i, "empty ingredient name")
		}

		vals := make(map[string]float64, 8)
		for _, col := range []string{"dm", "nel", "cp", "ndf", "starch", "fat", "tfa", "dndf"} {
			v, err := parseFloat(path, i, col, row[col])
			if err != nil {
				return nil, err
			}
			vals[col] = v
		}

		out = append(out, feed.Ingredient{
			Name:       name,
			DMFraction: vals["dm"] / 100,
			NEL:        vals["nel"],
			CP:         vals["cp"] / 100,
			NDF:        vals["ndf"] / 100,
			Starch:     vals["starch"] / 100,
			Fat:        vals["fat"] / 100,
			TFA:        vals["tfa"] / 100,
			DNDF:       vals["dndf"] / 100,
		})
	}
	return out, nil
}

// readMinMax parses as-fed inclusion bounds. An empty max cell means no
// upper bound.
func readMinMax(ctx context.Context, path string) (map[string][2]float64, error) {
	rows, header, err := readTable(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(path, header, "ingredient", "min", "max"); err != nil {
		return nil, err
	}

	out := make(map[string][2]float64, len(rows))
	for i, row := range rows {
		name := row["ingredient"]
		if name == "" {
			return nil, rowErr(path, i, "empty ingredient name")
		}

		min, err := parseFloat(path, i, "min", row["min"])
		if err != nil {
			return nil, err
		}
		max := math.Inf(1)
		if row["max"] != "" {
			if max, err = parseFloat(path, i, "max", row["max"]); err != nil {
				return nil, err
			}
		}
		if min < 0 || max < min {
			return nil, rowErr(path, i, "ingredient %q: bounds [%g, %g] inverted or negative", name, min, max)
		}
		out[name] = [2]float64{min, max}
	}
	return out, nil
}

// readPrices parses as-fed prices in $ per kg.
func readPrices(ctx context.Context, path string) (map[string]float64, error) {
	rows, header, err := readTable(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(path, header, "ingredient", "price"); err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(rows))
	for i, row := range rows {
		name := row["ingredient"]
		if name == "" {
			return nil, rowErr(path, i, "empty ingredient name")
		}
		price, err := parseFloat(path, i, "price", row["price"])
		if err != nil {
			return nil, err
		}
		if price < 0 {
			return nil, rowErr(path, i, "ingredient %q: negative price %g", name, price)
		}
		out[name] = price
	}
	return out, nil
}

// readTable reads a CSV file into header-keyed rows. Header names are
// matched case-insensitively.
func readTable(ctx context.Context, path string) ([]map[string]string, []string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidConfig, "failed to open input table", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	headerRow, err := r.Read()
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidConfig, "failed to read CSV header", err)
	}
	header := make([]string, len(headerRow))
	for i, h := range headerRow {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidConfig, "failed to read CSV row", err)
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}

func requireColumns(path string, header []string, cols ...string) error {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	for _, col := range cols {
		if !have[col] {
			return errors.Newf(errors.ErrCodeInvalidConfig,
				"%s: missing required column %q (have %v)", path, col, header)
		}
	}
	return nil
}

func parseFloat(path string, row int, col, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, rowErr(path, row, "column %q: cannot parse %q as a number", col, raw)
	}
	return v, nil
}

// optionalFloat returns NaN for absent columns or empty cells.
func optionalFloat(row map[string]string, col string) float64 {
	raw, ok := row[col]
	if !ok || raw == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// rowErr reports a data error at the 1-based file line (header is line 1).
func rowErr(path string, row int, format string, args ...any) error {
	return errors.Newf(errors.ErrCodeInvalidConfig,
		"%s row %d: %s", path, row+2, fmt.Sprintf(format, args...))
}
