/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/herdwise/feedopt/pkg/herd"
	"github.com/herdwise/feedopt/pkg/model"
	"github.com/herdwise/feedopt/pkg/optimizer"
	"github.com/herdwise/feedopt/pkg/serializer"
)

func inputArgs() []string {
	return []string{
		"--cows", filepath.Join("testdata", "cows.csv"),
		"--nutrients", filepath.Join("testdata", "nutrients.csv"),
		"--minmax", filepath.Join("testdata", "minmax.csv"),
		"--prices", filepath.Join("testdata", "prices.csv"),
		"--config", filepath.Join("testdata", "run.yaml"),
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		format  string
		want    serializer.Format
		wantErr bool
	}{
		{format: "json", want: serializer.FormatJSON},
		{format: "yaml", want: serializer.FormatYAML},
		{format: "table", want: serializer.FormatTable},
		{format: "xml", wantErr: true},
		{format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("format "+tt.format, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: []cli.Flag{formatFlag},
				Action: func(_ context.Context, cmd *cli.Command) error {
					got, err := parseOutputFormat(cmd)
					if tt.wantErr {
						assert.Error(t, err)
						return nil
					}
					require.NoError(t, err)
					assert.Equal(t, tt.want, got)
					return nil
				},
			}
			require.NoError(t, cmd.Run(context.Background(), []string{"cmd", "--format", tt.format}))
		})
	}
}

func TestRunConfig_Overrides(t *testing.T) {
	var got *optimizer.Config
	cmd := &cli.Command{
		Flags: []cli.Flag{
			configFlag,
			&cli.IntFlag{Name: "groups"},
			&cli.StringFlag{Name: "criterion"},
			&cli.StringFlag{Name: "objective"},
			&cli.FloatFlag{Name: "methane-weight", Value: -1},
			&cli.StringFlag{Name: "equation"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := runConfig(cmd)
			if err != nil {
				return err
			}
			got = cfg
			return nil
		},
	}

	err := cmd.Run(context.Background(), []string{"cmd",
		"--config", filepath.Join("testdata", "run.yaml"),
		"--groups", "3",
		"--criterion", "nel",
		"--objective", "both",
		"--methane-weight", "2.5",
		"--equation", "ellis",
	})
	require.NoError(t, err)
	require.NotNil(t, got)

	// Flags win over the config file.
	assert.Equal(t, 3, got.GroupCount)
	assert.Equal(t, herd.ByNEL, got.Criterion)
	assert.Equal(t, model.ModeBoth, got.Mode)
	assert.Equal(t, 2.5, got.MethaneWeight)
	assert.Equal(t, "ellis", got.Equation.String())
	// Config file values survive where no flag is set.
	assert.Equal(t, []string{"corn silage", "alfalfa hay"}, got.Forage.Ingredients)
}

func TestRunConfig_DefaultsWithoutFile(t *testing.T) {
	cmd := &cli.Command{
		Flags: []cli.Flag{
			configFlag,
			&cli.IntFlag{Name: "groups"},
			&cli.StringFlag{Name: "criterion"},
			&cli.StringFlag{Name: "objective"},
			&cli.FloatFlag{Name: "methane-weight", Value: -1},
			&cli.StringFlag{Name: "equation"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := runConfig(cmd)
			require.NoError(t, err)
			def := optimizer.DefaultConfig()
			assert.Equal(t, def.GroupCount, cfg.GroupCount)
			assert.Equal(t, def.Mode, cfg.Mode)
			assert.Equal(t, def.Requirement, cfg.Requirement)
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), []string{"cmd"}))
}

func TestOptimizeCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "result.json")
	args := append([]string{name, "optimize"}, inputArgs()...)
	args = append(args, "--format", "json", "--output", out)

	require.NoError(t, rootCmd().Run(context.Background(), args))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)

	var result optimizer.RunResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.NotEmpty(t, result.Metadata.RunID)
	assert.Equal(t, 10, result.Metadata.Cows)
	require.Len(t, result.Rations, 2)
	assert.Empty(t, result.Failures)
	for _, r := range result.Rations {
		assert.NotEmpty(t, r.Ingredients)
		assert.Greater(t, r.Summary.Cost, 0.0)
	}
}

func TestOptimizeCommand_BadFormat(t *testing.T) {
	args := append([]string{name, "optimize"}, inputArgs()...)
	args = append(args, "--format", "xml")
	assert.Error(t, rootCmd().Run(context.Background(), args))
}

func TestValidateCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "check.json")
	args := append([]string{name, "validate"}, inputArgs()...)
	args = append(args, "--format", "json", "--output", out)

	require.NoError(t, rootCmd().Run(context.Background(), args))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)

	var result ValidationResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, 10, result.Cows)
	assert.Equal(t, 5, result.Ingredients)
	assert.Equal(t, []int{5, 5}, result.Groups)
}

func TestValidateCommand_UnknownForage(t *testing.T) {
	dir := t.TempDir()
	badCfg := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(badCfg, []byte(
		"forage:\n  ingredients:\n    - grass hay\n"), 0o600))

	args := []string{name, "validate",
		"--cows", filepath.Join("testdata", "cows.csv"),
		"--nutrients", filepath.Join("testdata", "nutrients.csv"),
		"--minmax", filepath.Join("testdata", "minmax.csv"),
		"--prices", filepath.Join("testdata", "prices.csv"),
		"--config", badCfg,
	}
	err := rootCmd().Run(context.Background(), args)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forage")
}
