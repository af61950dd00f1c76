// Package commands implements the easectl command line.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/on-the-ground/easing_ive_go/catalog"
	"github.com/on-the-ground/easing_ive_go/config"
	"github.com/on-the-ground/easing_ive_go/eval"
	"github.com/on-the-ground/easing_ive_go/log"
	"github.com/on-the-ground/easing_ive_go/notify"
)

// CLI is the easectl command tree. Each invocation runs against a fresh runtime
// preloaded with the catalog module.
type CLI struct {
	rootCmd *cobra.Command
	runtime *eval.Runtime
	logger  *zap.Logger

	configPath string
	logLevel   string
}

// New creates the command tree.
func New() *CLI {
	c := &CLI{}
	rootCmd := &cobra.Command{
		Use:               "easectl",
		Short:             "Evaluate and inspect registered easing functions",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) { c.teardown() },
	}
	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to a YAML or TOML runtime config")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Override the configured log level: debug, info, warn, error")

	c.rootCmd = rootCmd
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newEvalCmd())
	rootCmd.AddCommand(c.newTableCmd())
	return c
}

func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if c.configPath != "" {
		loaded, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if c.logLevel != "" {
		cfg.LogLevel = log.LogLevel(c.logLevel)
	}

	logger, err := log.NewZapLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	c.logger = logger

	rt, err := eval.New(cfg,
		eval.WithLogger(logger),
		eval.WithInvalidationHandler(notify.HandlerFunc(func(inv notify.Invalidation) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "invalidated %s for %s\n", inv.Name, inv.Consumer)
		})),
	)
	if err != nil {
		return err
	}
	c.runtime = rt
	return rt.RegisterModule(catalog.Module()...)
}

func (c *CLI) teardown() {
	if c.runtime != nil {
		c.runtime.Close()
		c.runtime = nil
	}
	log.Sync(c.logger)
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	defer c.teardown()
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
