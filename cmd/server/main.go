package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"minisocial/internal/config"
)

// RootCmd is the base command; running it without a subcommand starts the server.
var RootCmd = &cobra.Command{
	Use:          "minisocial [command] [flags]",
	Short:        "minisocial: a small social network API",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not apply pending migrations before serving")
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
