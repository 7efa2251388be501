/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/herdwise/feedopt/pkg/loader"
	"github.com/herdwise/feedopt/pkg/optimizer"
	"github.com/herdwise/feedopt/pkg/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "serve",
		EnableShellCompletion: true,
		Usage:                 "Serve ration optimization over HTTP",
		Description: `Start an HTTP server that solves rations for herds posted to
POST /v1/rations against an ingredient library loaded at startup.

A run configuration file, when given, sets the defaults for every request;
individual requests may override it field by field in their body.

# Example

  feedopt serve --nutrients nutrients.csv --minmax minmax.csv \
    --prices prices.csv --config run.yaml --port 8080`,
		Flags: []cli.Flag{
			nutrientsFlag,
			minmaxFlag,
			pricesFlag,
			configFlag,
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on (also via PORT)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			lib, err := loader.LoadLibrary(ctx, loader.Paths{
				Nutrients: cmd.String("nutrients"),
				MinMax:    cmd.String("minmax"),
				Prices:    cmd.String("prices"),
			})
			if err != nil {
				return fmt.Errorf("failed to load ingredient library: %w", err)
			}

			base := optimizer.DefaultConfig()
			if path := cmd.String("config"); path != "" {
				cfg, err := loader.ReadRunConfig(path)
				if err != nil {
					return err
				}
				base = *cfg
			}
			if err := base.Validate(lib); err != nil {
				return err
			}

			cfg := server.NewConfig()
			cfg.Name = name
			cfg.Version = version
			if port := cmd.Int("port"); port > 0 {
				cfg.Port = int(port)
			}

			return server.Run(ctx, cfg, lib, base)
		},
	}
}
