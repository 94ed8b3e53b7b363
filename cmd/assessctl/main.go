// Command assessctl runs the recommender from the command line: one-off
// recommendations, dataset evaluation and catalog crawls.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/assessrec/internal/bootstrap"
	"github.com/okian/assessrec/internal/config"
	"github.com/okian/assessrec/pkg/logger"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "assessctl",
		Short:         "Assessment recommender tooling",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (overrides ASSESSREC_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(recommendCmd(opts))
	rootCmd.AddCommand(evaluateCmd(opts))
	rootCmd.AddCommand(crawlCmd(opts))
	return rootCmd
}

// loadConfig reads configuration and builds a logger that writes to stderr
// so stdout stays clean for results.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	if o.configPath != "" {
		if err := os.Setenv("ASSESSREC_CONFIG", o.configPath); err != nil {
			return nil, nil, fmt.Errorf("set config path: %w", err)
		}
	}
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cmd.ErrOrStderr(), cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func (o *rootOptions) build(cmd *cobra.Command) (*bootstrap.Components, logger.Logger, error) {
	cfg, log, err := o.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	c, err := bootstrap.Build(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return c, log, nil
}
