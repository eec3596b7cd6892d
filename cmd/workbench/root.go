package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/workbench"
	"github.com/aretw0/workbench/internal/logging"
	"github.com/aretw0/workbench/pkg/collections/download"
	"github.com/aretw0/workbench/pkg/collections/excel"
	"github.com/aretw0/workbench/pkg/collections/media"
)

// workspaceEnvVar is the only environment variable consulted for workspace
// resolution; the value is threaded into the collections explicitly.
const workspaceEnvVar = "WORKBENCH_WORKSPACE"

var rootCmd = &cobra.Command{
	Use:   "workbench",
	Short: "Workbench serves agent tool collections over MCP and HTTP",
	Long: `Workbench bundles sandboxed file tools (spreadsheet extraction, downloads,
media inspection) and an OpenRouter relay behind MCP and HTTP servers.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; real environment variables win.
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("workspace", "", "Workspace directory for file operations (defaults to $WORKBENCH_WORKSPACE, then the home directory)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
}

func buildLogger(cmd *cobra.Command) *slog.Logger {
	levelName, _ := cmd.Flags().GetString("log-level")
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		level = slog.LevelInfo
	}

	// With an explicit workspace the log trail lands next to the files the
	// actions touch.
	if ws, _ := cmd.Flags().GetString("workspace"); ws != "" {
		if logger, err := logging.NewWorkspace(level, ws); err == nil {
			return logger
		}
	}
	return logging.New(level)
}

func buildConfig(cmd *cobra.Command, name string, transport workbench.Transport, port int, logger *slog.Logger) workbench.Config {
	explicit, _ := cmd.Flags().GetString("workspace")
	return workbench.Config{
		Name:             name,
		Transport:        transport,
		Port:             port,
		Workspace:        explicit,
		WorkspaceDefault: os.Getenv(workspaceEnvVar),
		Logger:           logger,
	}
}

// buildRegistry wires every collection into one registry.
func buildRegistry(cfg workbench.Config) (*workbench.Registry, error) {
	excelCol, err := excel.NewCollection(cfg)
	if err != nil {
		return nil, fmt.Errorf("excel collection: %w", err)
	}
	downloadCol, err := download.NewCollection(cfg)
	if err != nil {
		return nil, fmt.Errorf("download collection: %w", err)
	}
	mediaCol, err := media.NewCollection(cfg)
	if err != nil {
		return nil, fmt.Errorf("media collection: %w", err)
	}
	return workbench.NewRegistry(excelCol, downloadCol, mediaCol)
}
