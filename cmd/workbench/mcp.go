package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/workbench"
	mcpAdapter "github.com/aretw0/workbench/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the action collections as an MCP Server.
This allows AI agents (like Claude Desktop) to call the tools directly.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		name, _ := cmd.Flags().GetString("name")

		if transport == string(workbench.TransportSSE) && port == 0 {
			log.Fatalf("--port is required when transport is sse")
		}

		logger := buildLogger(cmd)
		cfg := buildConfig(cmd, name, workbench.Transport(transport), port, logger)
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}

		registry, err := buildRegistry(cfg)
		if err != nil {
			log.Fatalf("Error building action registry: %v", err)
		}

		srv := mcpAdapter.NewServer(name, registry, logger)

		switch cfg.Transport {
		case workbench.TransportStdio:
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("starting MCP server (stdio)", "tools", registry.Len())
			if err := srv.ServeStdio(); err != nil {
				logger.Error("MCP server execution failed", "err", err)
				os.Exit(1)
			}
		case workbench.TransportSSE:
			logger.Info("starting MCP server (SSE)", "port", port, "tools", registry.Len())

			// Create a context that cancels on interrupt signal
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil {
				if err != http.ErrServerClosed {
					logger.Error("MCP server execution failed", "err", err)
					os.Exit(1)
				}
			}
			logger.Info("MCP server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringP("transport", "t", "stdio", "Transport to use: stdio or sse")
	mcpCmd.Flags().IntP("port", "p", 0, "Port to listen on (required for sse)")
	mcpCmd.Flags().String("name", "workbench-mcp", "Server name reported to MCP clients")
}
