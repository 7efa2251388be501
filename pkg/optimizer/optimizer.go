/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package optimizer

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/herdwise/feedopt/pkg/errors"
	"github.com/herdwise/feedopt/pkg/feed"
	"github.com/herdwise/feedopt/pkg/herd"
	"github.com/herdwise/feedopt/pkg/model"
	"github.com/herdwise/feedopt/pkg/ration"
	"github.com/herdwise/feedopt/pkg/requirement"
	"github.com/herdwise/feedopt/pkg/solver"
)

// Optimizer drives one herd through grouping, model building, solving, and
// interpretation.
type Optimizer struct {
	solver  solver.Solver
	version string
}

// Option is a functional option for configuring the Optimizer.
type Option func(*Optimizer)

// WithSolver overrides the default simplex solver.
func WithSolver(s solver.Solver) Option {
	return func(o *Optimizer) {
		o.solver = s
	}
}

// WithVersion stamps run metadata with the binary version.
func WithVersion(version string) Option {
	return func(o *Optimizer) {
		o.version = version
	}
}

// New creates a new Optimizer with the provided options.
func New(opts ...Option) *Optimizer {
	o := &Optimizer{}

	for _, opt := range opts {
		opt(o)
	}

	if o.solver == nil {
		o.solver = solver.NewSimplex()
	}
	return o
}

// Metadata identifies an optimization run.
type Metadata struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Version     string    `json:"version,omitempty" yaml:"version,omitempty"`
	Cows        int       `json:"cows" yaml:"cows"`
	GroupCount  int       `json:"group_count" yaml:"group_count"`
	Criterion   string    `json:"criterion" yaml:"criterion"`
	Equation    string    `json:"equation" yaml:"equation"`
	Mode        string    `json:"mode" yaml:"mode"`
}

// GroupFailure records a group whose model could not be solved. Other groups
// in the same run still produce rations.
type GroupFailure struct {
	GroupIndex int              `json:"group" yaml:"group"`
	Code       errors.ErrorCode `json:"code" yaml:"code"`
	Reason     string           `json:"reason" yaml:"reason"`
}

// RunResult is the outcome of one optimization run.
type RunResult struct {
	Metadata Metadata         `json:"metadata" yaml:"metadata"`
	Rations  []*ration.Solved `json:"rations" yaml:"rations"`
	Failures []GroupFailure   `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Run optimizes the herd's rations under the configuration.
//
// Configuration problems abort the run before any model is built. A solver
// verdict of infeasible or unbounded is terminal for that group only: it is
// recorded as a GroupFailure and the remaining groups still solve. Groups
// are processed sequentially; the library is read-only throughout.
func (o *Optimizer) Run(ctx context.Context, cows []herd.Cow, lib *feed.Library, cfg Config) (*RunResult, error) {
	if err := cfg.Validate(lib); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	runID := uuid.NewString()
	log := slog.With("run_id", runID)
	log.Info("starting optimization run",
		"cows", len(cows),
		"groups", cfg.GroupCount,
		"criterion", cfg.Criterion.String(),
		"equation", cfg.Equation.String(),
		"mode", cfg.Mode.String(),
	)

	groups, err := herd.Split(cows, cfg.GroupCount, cfg.Criterion)
	if err != nil {
		return nil, err
	}
	groupsOptimized.Set(float64(len(groups)))

	out := &RunResult{
		Metadata: Metadata{
			RunID:       runID,
			GeneratedAt: time.Now().UTC(),
			Version:     o.version,
			Cows:        len(cows),
			GroupCount:  cfg.GroupCount,
			Criterion:   displayLabel(cfg.Criterion.String()),
			Equation:    cfg.Equation.String(),
			Mode:        cfg.Mode.String(),
		},
	}

	for _, group := range groups {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		solved, err := o.solveGroup(ctx, group, lib, cfg)
		if err != nil {
			code := errors.CodeOf(err)
			if code == errors.ErrCodeInfeasibleModel || code == errors.ErrCodeUnboundedModel {
				if code == errors.ErrCodeInfeasibleModel {
					infeasibleGroups.Inc()
				} else {
					unboundedGroups.Inc()
				}
				log.Warn("group has no solvable ration",
					"group", group.Index, "code", string(code), "error", err)
				out.Failures = append(out.Failures, GroupFailure{
					GroupIndex: group.Index,
					Code:       code,
					Reason:     err.Error(),
				})
				continue
			}
			return nil, err
		}

		log.Debug("group solved",
			"group", group.Index,
			"cost", solved.Summary.Cost,
			"methane_g", solved.Summary.MethaneGrams,
		)
		out.Rations = append(out.Rations, solved)
	}

	log.Info("optimization run complete",
		"solved", len(out.Rations), "failed", len(out.Failures))
	return out, nil
}

func (o *Optimizer) solveGroup(ctx context.Context, group herd.Group, lib *feed.Library, cfg Config) (*ration.Solved, error) {
	start := time.Now()
	defer func() {
		solveDuration.Observe(time.Since(start).Seconds())
	}()

	env, err := requirement.BuildEnvelope(group, cfg.Requirement)
	if err != nil {
		return nil, err
	}

	prog, err := model.Build(model.BuildInput{
		GroupIndex: group.Index,
		Envelope:   env,
		Library:    lib,
		Forage:     cfg.Forage,
		Equation:   cfg.Equation,
		Ratios:     cfg.Ratios,
	})
	if err != nil {
		return nil, err
	}
	if err := prog.Compose(cfg.Mode, cfg.MethaneWeight); err != nil {
		return nil, err
	}

	res, err := o.solver.Solve(ctx, prog)
	if err != nil {
		return nil, err
	}

	solved, err := ration.Interpret(group, prog, res, lib, cfg.Equation)
	if err != nil {
		return nil, err
	}
	solved.Herd = ration.HerdStats{
		MeanDMI:        group.MeanDMI(),
		StdDevDMI:      group.StdDevDMI(),
		MeanNEL:        group.MeanNEL(),
		StdDevNEL:      group.StdDevNEL(),
		NELRequirement: env.NELBaseline,
	}
	return solved, nil
}

// displayLabel renders an identifier for run metadata, e.g. "milk" → "Milk".
func displayLabel(s string) string {
	return cases.Title(language.English).String(s)
}
