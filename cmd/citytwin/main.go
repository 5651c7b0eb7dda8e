package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/meshwerk/citytwin/internal/config"
	"github.com/meshwerk/citytwin/version"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "citytwin",
	Short: "A CLI tool for inspecting and maintaining city twin scenes",
	Long: `citytwin works with chunked digital-twin scene directories: it inspects
scene and mesh statistics, validates face-map indices, and reconciles
user-authored replacement meshes against the backend service.`,
	Version: version.GetFullVersion(),
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a YAML config file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig merges the config file and environment, and installs a
// logger at the configured level
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}
