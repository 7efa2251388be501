/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/herdwise/feedopt/pkg/serializer"
)

var (
	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
	}
	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   fmt.Sprintf("Output format: %v", serializer.SupportedFormats()),
		Value:   string(serializer.FormatTable),
	}

	cowsFlag = &cli.StringFlag{
		Name:     "cows",
		Usage:    "CSV file with cow records (ID, DMI, NEL, DIM, MILK)",
		Required: true,
	}
	nutrientsFlag = &cli.StringFlag{
		Name:     "nutrients",
		Usage:    "CSV file with the ingredient nutrient library",
		Required: true,
	}
	minmaxFlag = &cli.StringFlag{
		Name:     "minmax",
		Usage:    "CSV file with as-fed inclusion bounds per ingredient",
		Required: true,
	}
	pricesFlag = &cli.StringFlag{
		Name:     "prices",
		Usage:    "CSV file with as-fed prices per ingredient",
		Required: true,
	}
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "YAML run configuration file",
		Sources: cli.EnvVars("FEEDOPT_CONFIG"),
	}
)

// parseOutputFormat validates the --format flag value.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String("format"))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format %q, supported: %v",
			cmd.String("format"), serializer.SupportedFormats())
	}
	return f, nil
}
