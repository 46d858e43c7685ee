package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mailsense/internal/config"
	logpkg "github.com/kailas-cloud/mailsense/internal/logger"
	"github.com/kailas-cloud/mailsense/internal/version"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// runner carries state set up by the Before hook.
type runner struct {
	out    io.Writer
	logger *zap.Logger
}

func newApp(out io.Writer) *cli.App {
	r := &runner{out: out, logger: zap.NewNop()}
	return &cli.App{
		Name:    "mailsense-cli",
		Usage:   "Analyse and answer email search queries",
		Version: version.Version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Config environment (config/<env>.yaml)",
				Value:   config.GetEnv(),
				EnvVars: []string{"ENV"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Explicit config file, overrides --env",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: r.setupLogger,
		After: func(*cli.Context) error {
			_ = r.logger.Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "Show how a query is interpreted, no backend needed",
				ArgsUsage: "<query>",
				Action:    r.analyze,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Print the enhancement as JSON"},
					&cli.StringFlag{
						Name:  "timezone",
						Usage: "Timezone for relative dates",
						Value: "UTC",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Run an intelligent query against the mail index",
				ArgsUsage: "<query>",
				Action:    r.ask,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "top-k", Aliases: []string{"k"}, Usage: "Number of results"},
					&cli.BoolFlag{Name: "debug", Usage: "Print the query interpretation"},
					&cli.BoolFlag{Name: "json", Usage: "Print the raw response as JSON"},
				},
			},
			{
				Name:      "ingest",
				Usage:     "Index messages from a JSON file",
				ArgsUsage: "<file.json>",
				Action:    r.ingest,
			},
		},
	}
}

func (r *runner) setupLogger(c *cli.Context) error {
	l, err := logpkg.NewLogger(loggerEnv(c.String("env")), c.String("log-level"))
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	r.logger = l
	return nil
}

// loggerEnv maps config environments the logger does not know to a console logger.
func loggerEnv(env string) string {
	switch env {
	case "prod", "test":
		return env
	default:
		return "local"
	}
}

func (r *runner) loadConfig(c *cli.Context) (config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.LoadFile(path)
	}
	return config.Load(c.String("env"))
}
