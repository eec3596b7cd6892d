package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/workbench"
	"github.com/aretw0/workbench/internal/presentation/tui"
	httpAdapter "github.com/aretw0/workbench/pkg/adapters/http"
	"github.com/aretw0/workbench/pkg/openrouter"
)

// serveConfig is the optional YAML configuration for the HTTP server.
// Flags override file values.
type serveConfig struct {
	Port       string `yaml:"port"`
	Workspace  string `yaml:"workspace"`
	OpenRouter struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"openrouter"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the OpenRouter relay and the action catalog as a JSON API over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := buildLogger(cmd)

		var fileCfg serveConfig
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			raw, err := os.ReadFile(path)
			if err != nil {
				fmt.Printf("Error reading config file: %v\n", err)
				os.Exit(1)
			}
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				fmt.Printf("Error parsing config file: %v\n", err)
				os.Exit(1)
			}
		}

		port, _ := cmd.Flags().GetString("port")
		if !cmd.Flags().Changed("port") && fileCfg.Port != "" {
			port = fileCfg.Port
		}

		cfg := buildConfig(cmd, "workbench", workbench.TransportStdio, 0, logger)
		if cfg.Workspace == "" {
			cfg.Workspace = fileCfg.Workspace
		}
		registry, err := buildRegistry(cfg)
		if err != nil {
			fmt.Printf("Error building action registry: %v\n", err)
			os.Exit(1)
		}

		var relayOpts []openrouter.Option
		relayOpts = append(relayOpts, openrouter.WithLogger(logger))
		if fileCfg.OpenRouter.BaseURL != "" {
			relayOpts = append(relayOpts, openrouter.WithBaseURL(fileCfg.OpenRouter.BaseURL))
		}
		relay := openrouter.New(relayOpts...)

		handler := httpAdapter.NewHandler(relay, registry, logger)

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			tui.PrintBanner(workbench.Version)
			fmt.Printf("Starting Workbench Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Workbench Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().StringP("config", "c", "", "Path to a YAML configuration file")
}
