// Package cli implements psq, the paramsearch command line tool.
package cli

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/paramsearch/internal/logger"
	"github.com/kailas-cloud/paramsearch/pkg/sdk"
)

const (
	defaultServer = "http://localhost:8080"
	serverEnv     = "PARAMSEARCH_URL"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Server  string
	Format  string // "json" | "text"
	Locale  string
	Timeout time.Duration
	// LogLevel enables stderr diagnostics, e.g. "debug" shows dropped parameters.
	LogLevel string
}

// Logger returns the stderr logger for offline work. Invalid levels fall back to warn.
func (o *RootOptions) Logger() *zap.Logger {
	l, err := logpkg.NewLogger(logpkg.EnvCLI, o.LogLevel)
	if err != nil {
		if l, err = logpkg.NewLogger(logpkg.EnvCLI); err != nil {
			return zap.NewNop()
		}
	}
	return l
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for psq.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "psq",
		Short: "psq - paramsearch query tool",
		Long: `Compile flat filter parameters into search queries and run them
against a paramsearch server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	server := os.Getenv(serverEnv)
	if server == "" {
		server = defaultServer
	}
	cmd.PersistentFlags().StringVarP(&opts.Server, "server", "s", server, "paramsearch server URL (env "+serverEnv+")")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Locale, "locale", "l", "", "locale for translated fields")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "request timeout")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "stderr log level (debug|info|warn|error)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewFieldsCommand(opts))
	cmd.AddCommand(NewHealthCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// client builds an SDK client from the global flags.
func (o *RootOptions) client() (*sdk.Client, error) {
	c, err := sdk.New(o.Server,
		sdk.WithTimeout(o.Timeout),
		sdk.WithLocale(o.Locale),
		sdk.WithUserAgent("psq"),
	)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}
