/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package solver

import (
	"context"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/herdwise/feedopt/pkg/errors"
	"github.com/herdwise/feedopt/pkg/model"
)

// Status is the terminal state of a solve.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusInfeasible Status = "infeasible"
	StatusUnbounded  Status = "unbounded"
)

// Result is a successful solve: one value per program variable, in variable
// order, and the objective including any constant term.
type Result struct {
	Status    Status
	Values    []float64
	Objective float64
}

// Solver minimizes a composed program. Implementations must not mutate the
// program.
type Solver interface {
	Solve(ctx context.Context, p *model.Program) (*Result, error)
}

// Simplex solves ration programs with the dantzig simplex method on the
// standard-form conversion of the program's bounds and range constraints.
type Simplex struct {
	// Tol is the pivot tolerance passed through to the underlying method;
	// zero selects its default.
	Tol float64
}

// NewSimplex returns a Simplex with the default tolerance.
func NewSimplex() *Simplex {
	return &Simplex{}
}

// Solve minimizes the program's objective subject to its constraints and
// variable bounds.
//
// The program is first expressed in general form (G·x <= h): each range
// constraint contributes a row per finite bound, and every variable
// contributes its bound rows explicitly since the standard-form conversion
// treats variables as free. lp.Convert splits variables and adds slacks;
// the split solution is recombined before returning.
func (s *Simplex) Solve(ctx context.Context, p *model.Program) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p == nil || p.Objective == nil {
		return nil, errors.New(errors.ErrCodeInternal, "program has no composed objective")
	}

	n := len(p.Variables)
	var g []float64 // row-major, n columns
	var h []float64
	addRow := func(coeffs []float64, bound float64) {
		g = append(g, coeffs...)
		h = append(h, bound)
	}

	for _, c := range p.Constraints {
		if !math.IsInf(c.Upper, 1) {
			addRow(c.Coeffs, c.Upper)
		}
		if !math.IsInf(c.Lower, -1) {
			addRow(negate(c.Coeffs), -c.Lower)
		}
	}
	for i, v := range p.Variables {
		if !math.IsInf(v.Upper, 1) {
			addRow(unit(n, i, 1), v.Upper)
		}
		// The lower bound row is always emitted, including at zero.
		addRow(unit(n, i, -1), -v.Lower)
	}

	start := time.Now()
	c, a, b := lp.Convert(p.Objective.Expression.Coeffs, mat.NewDense(len(h), n, g), h, nil, nil)
	optF, optX, err := lp.Simplex(c, a, b, s.Tol, nil)
	elapsed := time.Since(start)

	if err != nil {
		switch err {
		case lp.ErrInfeasible:
			return nil, errors.WrapWithContext(errors.ErrCodeInfeasibleModel,
				"no ration satisfies the group's constraints", err, solveContext(p))
		case lp.ErrUnbounded:
			return nil, errors.WrapWithContext(errors.ErrCodeUnboundedModel,
				"objective can decrease without bound, check inclusion limits", err, solveContext(p))
		default:
			return nil, errors.WrapWithContext(errors.ErrCodeInternal,
				"simplex solve failed", err, solveContext(p))
		}
	}

	// Convert splits each free variable into a positive pair; recombine.
	values := make([]float64, n)
	for i := range values {
		values[i] = optX[i] - optX[n+i]
	}

	slog.Debug("solved ration program",
		"group", p.GroupIndex,
		"variables", n,
		"rows", len(h),
		"objective", optF+p.Objective.Expression.Constant,
		"duration", elapsed,
	)

	return &Result{
		Status:    StatusOptimal,
		Values:    values,
		Objective: optF + p.Objective.Expression.Constant,
	}, nil
}

func solveContext(p *model.Program) map[string]any {
	names := make([]string, 0, len(p.Constraints))
	for _, c := range p.Constraints {
		names = append(names, c.Name)
	}
	return map[string]any{
		"group":       p.GroupIndex,
		"mode":        p.Objective.Mode.String(),
		"constraints": names,
	}
}

func negate(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = -x
	}
	return out
}

func unit(n, i int, v float64) []float64 {
	out := make([]float64, n)
	out[i] = v
	return out
}
