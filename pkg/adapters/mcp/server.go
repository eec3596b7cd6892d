// Package mcp exposes an action registry as an MCP server over stdio or SSE.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/workbench"
)

// Server wraps a workbench Registry and exposes every registered action as
// an MCP tool.
type Server struct {
	registry  *workbench.Registry
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance over the given registry.
func NewServer(name string, registry *workbench.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		registry:  registry,
		logger:    logger,
		mcpServer: server.NewMCPServer(name, workbench.Version),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr, "tools", s.registry.Len())
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

// Run starts the server on the transport named in cfg. With cfg.Unittest the
// server is built but never serves, so wiring can be exercised in tests.
func (s *Server) Run(ctx context.Context, cfg workbench.Config) error {
	if cfg.Unittest {
		s.logger.Info("unittest mode, not serving", "transport", cfg.Transport)
		return nil
	}
	switch cfg.Transport {
	case workbench.TransportSSE:
		return s.ServeSSE(ctx, cfg.Port)
	case workbench.TransportStdio:
		return s.ServeStdio()
	default:
		return fmt.Errorf("unknown transport: %s", cfg.Transport)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	for _, action := range s.registry.Actions() {
		s.mcpServer.AddTool(buildTool(action), s.toolHandler(action.Name))
	}
}

// buildTool translates an action declaration into an MCP tool schema.
func buildTool(action workbench.Action) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(action.Description)}
	for _, p := range action.Params {
		var popts []mcp.PropertyOption
		if p.Description != "" {
			popts = append(popts, mcp.Description(p.Description))
		}
		if p.Required {
			popts = append(popts, mcp.Required())
		}
		switch p.Type {
		case workbench.ParamNumber:
			opts = append(opts, mcp.WithNumber(p.Name, popts...))
		case workbench.ParamBoolean:
			opts = append(opts, mcp.WithBoolean(p.Name, popts...))
		case workbench.ParamObject:
			opts = append(opts, mcp.WithObject(p.Name, popts...))
		default:
			opts = append(opts, mcp.WithString(p.Name, popts...))
		}
	}
	return mcp.NewTool(action.Name, opts...)
}

// toolHandler bridges an MCP tool call to Registry.Invoke. The response
// envelope is returned verbatim as JSON; failures keep their envelope but
// flag the result as an error so hosts surface it correctly.
func (s *Server) toolHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp, err := s.registry.Invoke(ctx, name, request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		raw, err := json.Marshal(resp)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("cannot encode response: %v", err)), nil
		}

		result := mcp.NewToolResultText(string(raw))
		if !resp.OK() {
			s.logger.Warn("tool call failed", "tool", name, "kind", resp.ErrKind())
			result.IsError = true
		}
		return result, nil
	}
}
