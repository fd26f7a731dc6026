// Package cmd is the vkcore command line.
package cmd

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/spaghettifunk/vkcore/engine/core"
)

type rootOptions struct {
	configPath string
	debug      bool
	logLevel   string
}

// NewRootCmd builds the vkcore command tree. Log output goes to stderr of the
// command, so tests can capture it.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "vkcore",
		Short: "Bring up a Vulkan device and draw to a window",
		Long: `vkcore initializes a Vulkan instance, picks a physical device, creates a
logical device and swap chain for a GLFW window and clears it every frame.

Example:
  vkcore run --frames 600
  vkcore probe --debug`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", core.DefaultConfigPath, "Path to the TOML config file")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable the validation layer and debug callback")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newProbeCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the command line until ctx is cancelled or the command returns.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// load reads the config, then applies .env and environment overrides, then
// flags, and builds the logger.
func (o *rootOptions) load(stderr io.Writer) (core.Config, *core.Logger, error) {
	cfg, err := core.LoadConfig(o.configPath)
	if err != nil {
		return cfg, nil, err
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, nil, err
	}
	if err := core.ApplyEnv(&cfg, os.Getenv); err != nil {
		return cfg, nil, err
	}
	if o.debug {
		cfg.Renderer.Debug = true
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	log, err := core.NewLogger(stderr, cfg.Log.Level)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}
