package main

import (
	"github.com/Suhaibinator/hxdemo/internal/config"
	"github.com/spf13/cobra"
)

// envFiles is the --env-file flag value
var envFiles []string

var rootCmd = &cobra.Command{
	Use:   "hxdemo",
	Short: "HTMX component demo server",
	Long: `hxdemo serves a small site of server-rendered pages and HTML fragments.
Configuration comes from the environment and an optional .env file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil,
		"dotenv files to load before reading the environment (default .env)")
}

// loadConfig loads the configuration using the --env-file flag.
func loadConfig() (*config.Config, error) {
	return config.Load(envFiles...)
}
