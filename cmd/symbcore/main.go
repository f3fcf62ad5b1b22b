// Command symbcore is the CLI entrypoint: wires Settings + credentials
// into an internal/wiring.App and exposes it through a handful of
// cobra subcommands (spec.md §6's transports: interactive chat, a
// line-delimited JSON subprocess protocol, and an optional websocket/
// metrics server).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/symbcore/internal/config"
)

func main() {
	if err := setupFileLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to set up logging: %v\n", err)
	}

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var projectRoot string

	cmd := &cobra.Command{
		Use:   "symbcore",
		Short: "Multi-agent coding assistant orchestration core",
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml (default: <data dir>/config.toml)")
	cmd.PersistentFlags().StringVar(&projectRoot, "root", ".", "project root directory")

	cmd.AddCommand(newRunCmd(&configPath, &projectRoot))
	cmd.AddCommand(newSubprocessCmd(&configPath, &projectRoot))
	cmd.AddCommand(newServeCmd(&configPath, &projectRoot))
	cmd.AddCommand(newSessionsCmd(&configPath))

	return cmd
}

func resolveConfigPath(configPath string) (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	dataDir, err := config.EnsureDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "config.toml"), nil
}

func setupFileLogging() error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	dataDir, err := config.DataDir()
	if err != nil {
		return err
	}
	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(logDir, "symbcore.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	log.Logger = log.Output(f)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	return nil
}
