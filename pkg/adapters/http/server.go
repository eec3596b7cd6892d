// Package http exposes the OpenRouter relay and the action catalog over a
// chi router. Every request gets a short ID and timing headers, and the
// router publishes Prometheus metrics.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/workbench"
	"github.com/aretw0/workbench/pkg/openrouter"
)

// Relay is the OpenRouter surface the handler needs.
type Relay interface {
	ChatCompletion(ctx context.Context, req openrouter.ChatCompletionRequest, requestID string) (*openrouter.ChatCompletionResponse, bool)
	ListModels(ctx context.Context, requestID string) (*openrouter.ModelsResponse, bool)
}

// Server holds the relay client and the action registry.
type Server struct {
	relay    Relay
	registry *workbench.Registry
	logger   *slog.Logger
}

// NewHandler builds the HTTP handler around the relay client. The registry
// is optional; without it the action catalog route reports an empty list.
func NewHandler(relay Relay, registry *workbench.Registry, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{relay: relay, registry: registry, logger: logger}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(metricsMiddleware)

	r.Get("/healthz", s.health)
	r.Get("/info", s.info)
	r.Get("/actions", s.actions)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/openrouter/completions", s.chatCompletion)
	r.Get("/openrouter/models", s.listModels)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// chatCompletion handles POST /openrouter/completions. The API key may come
// from the request body or the Authorization header; validation failures map
// to 400 and relay failures to 502.
func (s *Server) chatCompletion(w http.ResponseWriter, r *http.Request) {
	requestID := RequestID(r.Context())

	var req openrouter.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("completions: invalid request body", "request_id", requestID, "err", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.APIKey == "" {
		req.APIKey = bearerToken(r)
	}
	if req.Model == "" {
		req.Model = openrouter.DefaultModel
	}
	if err := req.Validate(); err != nil {
		s.logger.Warn("completions: validation failed", "request_id", requestID, "err", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, ok := s.relay.ChatCompletion(r.Context(), req, requestID)
	if !ok {
		writeError(w, http.StatusBadGateway, "chat completion failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// listModels handles GET /openrouter/models.
func (s *Server) listModels(w http.ResponseWriter, r *http.Request) {
	requestID := RequestID(r.Context())

	resp, ok := s.relay.ListModels(r.Context(), requestID)
	if !ok {
		writeError(w, http.StatusBadGateway, "failed to list models")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "workbench-http",
		"version": workbench.Version,
	})
}

// actions lists the registered action catalog.
func (s *Server) actions(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	out := []entry{}
	if s.registry != nil {
		for _, a := range s.registry.Actions() {
			out = append(out, entry{Name: a.Name, Description: a.Description})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"actions": out, "count": len(out)})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
