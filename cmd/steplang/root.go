package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/steplang"
	"github.com/zephyrtronium/steplang/internal/srccache"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	Config  string
	Verbose bool
	Cache   string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "steplang",
		Short:         "Run steplang programs",
		Version:       steplang.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log at debug level")
	cmd.PersistentFlags().StringVar(&opts.Cache, "cache", "", "generated source cache database (overrides config)")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newCompileCommand(opts))
	cmd.AddCommand(newReplCommand(opts))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

// vm creates a VM from the global flags. The returned function releases
// resources the VM holds.
func (o *rootOptions) vm() (*steplang.VM, func(), error) {
	cfg := steplang.DefaultConfig()
	if o.Config != "" {
		var err error
		cfg, err = steplang.LoadConfig(o.Config)
		if err != nil {
			return nil, nil, err
		}
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
	if o.Cache != "" {
		cfg.Cache = o.Cache
	}
	lvl, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	vm := steplang.NewVMWithLogger(cfg, log)
	done := func() {}
	if cfg.Cache != "" {
		c, err := srccache.Open(cfg.Cache)
		if err != nil {
			return nil, nil, fmt.Errorf("opening cache: %w", err)
		}
		vm.Cache = c
		done = func() {
			if err := c.Close(); err != nil {
				log.Warn("closing cache", "err", err)
			}
		}
	}
	return vm, done, nil
}
