package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	logx "github.com/tanpawarit/smart-dfd-agent/pkg/logger"
)

func main() {
	cmd := &cli.Command{
		Name:   "smart-dfd",
		Usage:  "Generate threat-modeling data flow diagrams from system descriptions",
		Action: runInteractive,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Path to .env file",
				Sources: cli.EnvVars("DFD_ENV_FILE"),
			},
		},
		Commands: []*cli.Command{
			generateCommand(),
			renderCommand(),
			historyCommand(),
			datasetCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logx.Error().Err(err).Msg("smart-dfd failed")
		os.Exit(1)
	}
}
