/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package solver

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herdwise/feedopt/pkg/errors"
	"github.com/herdwise/feedopt/pkg/model"
)

// program builds a minimal two-variable problem directly, bypassing the
// builder, so the adapter can be exercised against hand-checkable optima.
func program(vars []model.Variable, cons []model.Constraint, obj model.Expression) *model.Program {
	return &model.Program{
		GroupIndex:  1,
		Variables:   vars,
		Constraints: cons,
		Objective:   &model.Objective{Mode: model.ModeCost, Expression: obj},
	}
}

func TestSolve_Minimal(t *testing.T) {
	// min x + 2y subject to x + y >= 4, x <= 3, y <= 5.
	// Optimum at x=3, y=1, objective 5.
	p := program(
		[]model.Variable{
			{Name: "x", Lower: 0, Upper: 3},
			{Name: "y", Lower: 0, Upper: 5},
		},
		[]model.Constraint{
			{Name: "supply", Coeffs: []float64{1, 1}, Lower: 4, Upper: math.Inf(1)},
		},
		model.Expression{Coeffs: []float64{1, 2}},
	)

	res, err := NewSimplex().Solve(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, res.Status)
	assert.InDelta(t, 3.0, res.Values[0], 1e-8)
	assert.InDelta(t, 1.0, res.Values[1], 1e-8)
	assert.InDelta(t, 5.0, res.Objective, 1e-8)
}

func TestSolve_RangeConstraint(t *testing.T) {
	// min x + y with 2 <= x + y <= 6 and a positive lower bound on x.
	p := program(
		[]model.Variable{
			{Name: "x", Lower: 0.5, Upper: math.Inf(1)},
			{Name: "y", Lower: 0, Upper: math.Inf(1)},
		},
		[]model.Constraint{
			{Name: "total", Coeffs: []float64{1, 1}, Lower: 2, Upper: 6},
		},
		model.Expression{Coeffs: []float64{1, 1}},
	)

	res, err := NewSimplex().Solve(context.Background(), p)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, res.Objective, 1e-8)
	assert.GreaterOrEqual(t, res.Values[0], 0.5-1e-8)
	assert.InDelta(t, 2.0, res.Values[0]+res.Values[1], 1e-8)
}

func TestSolve_ConstantCarriedIntoObjective(t *testing.T) {
	p := program(
		[]model.Variable{{Name: "x", Lower: 1, Upper: 2}},
		nil,
		model.Expression{Coeffs: []float64{1}, Constant: 10},
	)

	res, err := NewSimplex().Solve(context.Background(), p)
	require.NoError(t, err)
	assert.InDelta(t, 11.0, res.Objective, 1e-8)
}

func TestSolve_Infeasible(t *testing.T) {
	// x <= 1 upper bound conflicts with x >= 2 constraint.
	p := program(
		[]model.Variable{{Name: "x", Lower: 0, Upper: 1}},
		[]model.Constraint{
			{Name: "demand", Coeffs: []float64{1}, Lower: 2, Upper: math.Inf(1)},
		},
		model.Expression{Coeffs: []float64{1}},
	)

	_, err := NewSimplex().Solve(context.Background(), p)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInfeasibleModel))

	var se *errors.StructuredError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Context["group"])
	assert.Contains(t, se.Context["constraints"], "demand")
}

func TestSolve_Unbounded(t *testing.T) {
	// Maximizing x (minimizing -x) with no upper bound.
	p := program(
		[]model.Variable{{Name: "x", Lower: 0, Upper: math.Inf(1)}},
		nil,
		model.Expression{Coeffs: []float64{-1}},
	)

	_, err := NewSimplex().Solve(context.Background(), p)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnboundedModel))
}

func TestSolve_NoObjective(t *testing.T) {
	_, err := NewSimplex().Solve(context.Background(), &model.Program{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))
}

func TestSolve_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := program(
		[]model.Variable{{Name: "x", Lower: 0, Upper: 1}},
		nil,
		model.Expression{Coeffs: []float64{1}},
	)
	_, err := NewSimplex().Solve(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
}
