/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/herdwise/feedopt/pkg/herd"
	"github.com/herdwise/feedopt/pkg/loader"
	"github.com/herdwise/feedopt/pkg/methane"
	"github.com/herdwise/feedopt/pkg/model"
	"github.com/herdwise/feedopt/pkg/optimizer"
	"github.com/herdwise/feedopt/pkg/serializer"
)

func optimizeCmd() *cli.Command {
	return &cli.Command{
		Name:                  "optimize",
		EnableShellCompletion: true,
		Usage:                 "Solve least-cost or low-methane rations for a herd",
		Description: `Split the herd into groups, derive each group's intake and nutrient
requirements, and solve a ration per group from the ingredient library.

The objective minimizes feed cost, predicted methane, or a weighted blend of
the two. Results can be output in JSON, YAML, or table format.

# Examples

Least-cost rations for two milk-yield groups:
  feedopt optimize --cows cows.csv --nutrients nutrients.csv \
    --minmax minmax.csv --prices prices.csv \
    --config run.yaml

Override the objective from the command line:
  feedopt optimize --cows cows.csv --nutrients nutrients.csv \
    --minmax minmax.csv --prices prices.csv \
    --config run.yaml --objective both --methane-weight 5 --format json`,
		Flags: []cli.Flag{
			cowsFlag,
			nutrientsFlag,
			minmaxFlag,
			pricesFlag,
			configFlag,
			&cli.IntFlag{
				Name:  "groups",
				Usage: "Number of cow groups (1-3), overrides the config file",
			},
			&cli.StringFlag{
				Name:  "criterion",
				Usage: fmt.Sprintf("Grouping criterion %v, overrides the config file", herd.SupportedCriteria()),
			},
			&cli.StringFlag{
				Name:  "objective",
				Usage: fmt.Sprintf("Objective mode %v, overrides the config file", model.SupportedModes()),
			},
			&cli.FloatFlag{
				Name:  "methane-weight",
				Usage: "Methane weight ($ per kg CH4) for the 'both' objective, overrides the config file",
				Value: -1,
			},
			&cli.StringFlag{
				Name:  "equation",
				Usage: fmt.Sprintf("Methane equation %v, overrides the config file", methane.SupportedEquations()),
			},
			&cli.BoolFlag{
				Name:  "fail-on-infeasible",
				Usage: "Exit non-zero when any group has no feasible ration",
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			cfg, err := runConfig(cmd)
			if err != nil {
				return err
			}

			slog.Info("loading input tables",
				"cows", cmd.String("cows"),
				"nutrients", cmd.String("nutrients"))

			cows, lib, err := loader.Load(ctx, loader.Paths{
				Cows:      cmd.String("cows"),
				Nutrients: cmd.String("nutrients"),
				MinMax:    cmd.String("minmax"),
				Prices:    cmd.String("prices"),
			})
			if err != nil {
				return fmt.Errorf("failed to load inputs: %w", err)
			}

			opt := optimizer.New(
				optimizer.WithVersion(version),
			)
			result, err := opt.Run(ctx, cows, lib, *cfg)
			if err != nil {
				return fmt.Errorf("optimization failed: %w", err)
			}

			ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer func() {
				if err := ser.Close(); err != nil {
					slog.Warn("failed to close serializer", "error", err)
				}
			}()
			if err := ser.Serialize(ctx, result); err != nil {
				return fmt.Errorf("failed to serialize run result: %w", err)
			}

			if cmd.Bool("fail-on-infeasible") && len(result.Failures) > 0 {
				return fmt.Errorf("%d group(s) had no solvable ration", len(result.Failures))
			}
			return nil
		},
	}
}

// runConfig resolves the run configuration: the config file when given,
// defaults otherwise, then command line overrides on top.
func runConfig(cmd *cli.Command) (*optimizer.Config, error) {
	var cfg *optimizer.Config
	if path := cmd.String("config"); path != "" {
		loaded, err := loader.ReadRunConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		def := optimizer.DefaultConfig()
		cfg = &def
	}

	if cmd.IsSet("groups") {
		cfg.GroupCount = int(cmd.Int("groups"))
	}
	if s := cmd.String("criterion"); s != "" {
		c, err := herd.ParseCriterion(s)
		if err != nil {
			return nil, err
		}
		cfg.Criterion = c
	}
	if s := cmd.String("objective"); s != "" {
		m, err := model.ParseMode(s)
		if err != nil {
			return nil, err
		}
		cfg.Mode = m
	}
	if w := cmd.Float("methane-weight"); w >= 0 {
		cfg.MethaneWeight = w
	}
	if s := cmd.String("equation"); s != "" {
		eq, err := methane.ParseEquation(s)
		if err != nil {
			return nil, err
		}
		cfg.Equation = eq
	}
	return cfg, nil
}
