package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	flags = struct {
		ConfigFile string
		LogLevel   string
		Ephemeral  bool
	}{}

	root = &cobra.Command{
		Use:   "otterboard",
		Short: "Resource library for clipboard items, screen captures and canvas widgets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd.Context())
		},
	}
)

func init() {
	root.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", "", "configuration file (default $XDG_CONFIG_HOME/otterboard/config.toml)")
	root.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "override logging.level")
	root.PersistentFlags().BoolVar(&flags.Ephemeral, "ephemeral", false, "keep the library in memory only")

	root.AddCommand(shellCmd, watchCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
