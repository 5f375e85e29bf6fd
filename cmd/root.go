package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	service "github.com/okian/hireloop/internal/app"
	"github.com/okian/hireloop/internal/config"
	"github.com/okian/hireloop/pkg/logger"
)

const configFileEnv = "HIRELOOP_CONFIG"

// cli carries state shared by every subcommand.
type cli struct {
	cfgFile  string
	jsonLogs bool

	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:          "hireloop",
		Short:        "Candidate evaluation service with a feedback-driven scoring loop",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "YAML config file (overrides "+configFileEnv+")")
	root.PersistentFlags().BoolVarP(&c.jsonLogs, "json", "j", false, "json format for logging")

	root.AddCommand(
		newServeCmd(c),
		newRankCmd(c),
		newAdaptCmd(c),
		newRollupCmd(c),
		newSummaryCmd(c),
		newExportCmd(c),
	)
	return root
}

// setup loads configuration and initializes the global logger.
func (c *cli) setup(ctx context.Context) error {
	if c.cfgFile != "" {
		if err := os.Setenv(configFileEnv, c.cfgFile); err != nil {
			return fmt.Errorf("set %s: %w", configFileEnv, err)
		}
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.InitWithFormat(c.jsonLogs || cfg.LogJSON); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	c.cfg = cfg
	c.log = logger.Named("hireloop")
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		c.log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

func (c *cli) openService(ctx context.Context) (*service.Service, error) {
	svc, err := service.New(ctx, c.cfg, service.WithLogger(c.log))
	if err != nil {
		return nil, fmt.Errorf("build service: %w", err)
	}
	return svc, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
