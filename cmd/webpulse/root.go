package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/babdulhakim2/webpulse/internal/bootstrap"
	"github.com/babdulhakim2/webpulse/internal/config"
	"github.com/babdulhakim2/webpulse/internal/observability"
	"github.com/babdulhakim2/webpulse/internal/temporal/querier"
)

// deps builds the collaborators a command needs. Tests swap them for scripted ones.
type deps struct {
	runtime func(ctx context.Context, logLevel string) (*bootstrap.Runtime, error)
	querier func(ctx context.Context) (querier.WorkflowQuerier, func(), error)
}

func defaultDeps() deps {
	return deps{
		runtime: func(ctx context.Context, logLevel string) (*bootstrap.Runtime, error) {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return nil, err
			}
			return bootstrap.New(ctx, cfg, observability.NewLogger(os.Stderr, logLevel))
		},
		querier: func(_ context.Context) (querier.WorkflowQuerier, func(), error) {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return nil, nil, err
			}
			c, err := client.Dial(client.Options{
				HostPort:  cfg.TemporalAddress,
				Namespace: cfg.TemporalNamespace,
				Logger:    observability.NewTemporalSlogAdapter(observability.NewLogger(os.Stderr, "warn")),
			})
			if err != nil {
				return nil, nil, fmt.Errorf("unable to create Temporal client: %w", err)
			}
			return querier.New(c), c.Close, nil
		},
	}
}

// NewRootCmd creates the root command for webpulse.
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultDeps())
}

func newRootCmd(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webpulse",
		Short: "Multi-region web page analysis",
		Long: `webpulse captures a URL from several geographic regions, detects
layout, resource, rendering and performance issues, scores each region
and compares them.

Captures use the deterministic stub renderer unless WEBPULSE_MODE=production,
in which case WEBPULSE_RENDER_URL must point at the rendering provider.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("log-level", "warn", "Log level written to stderr (debug, info, warn, error)")
	cmd.PersistentFlags().StringP("output", "o", "", "Write output to this file instead of stdout")

	cmd.AddCommand(newAnalyzeCmd(d))
	cmd.AddCommand(newIssuesCmd(d))
	cmd.AddCommand(newCompareCmd(d))
	cmd.AddCommand(newRegionsCmd(d))
	cmd.AddCommand(newSubmitCmd(d))
	cmd.AddCommand(newStatusCmd(d))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadRuntime(cmd *cobra.Command, d deps) (*bootstrap.Runtime, error) {
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}
	return d.runtime(cmd.Context(), level)
}

// openOutput returns the --output file, or the command's stdout.
func openOutput(cmd *cobra.Command) (io.Writer, func() error, error) {
	path, err := cmd.Flags().GetString("output")
	if err != nil {
		return nil, nil, err
	}
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open output: %w", err)
	}
	return f, f.Close, nil
}
