package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/its-jojoo/otterboard/internal/adapter/storage/sqlite"
	"github.com/its-jojoo/otterboard/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the resource API backed by sqlite",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		path, err := cfg.ServerDatabase()
		if err != nil {
			return err
		}
		st, err := sqlite.Open(path)
		if err != nil {
			return fmt.Errorf("db open error: %w", err)
		}
		defer st.Close()

		uid, err := st.EnsureUser(cmd.Context(), cfg.Server.User)
		if err != nil {
			return err
		}

		addr := cfg.Server.Address
		if serveAddr != "" {
			addr = serveAddr
		}
		return server.New(st, uid, log).Run(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "override server.address")
}
