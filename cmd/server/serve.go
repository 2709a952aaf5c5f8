package main

import (
	"github.com/spf13/cobra"

	"minisocial/internal/transport/http"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return http.Run(loadConfig(), http.Options{SkipMigrate: skipMigrate})
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
