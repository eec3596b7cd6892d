package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/workbench"
	"github.com/aretw0/workbench/internal/logging"
	adapter "github.com/aretw0/workbench/pkg/adapters/http"
	"github.com/aretw0/workbench/pkg/openrouter"
)

type stubRelay struct {
	lastChat   openrouter.ChatCompletionRequest
	chatOK     bool
	modelsOK   bool
	modelCount int
}

func (s *stubRelay) ChatCompletion(ctx context.Context, req openrouter.ChatCompletionRequest, requestID string) (*openrouter.ChatCompletionResponse, bool) {
	s.lastChat = req
	if !s.chatOK {
		return nil, false
	}
	return &openrouter.ChatCompletionResponse{Success: true, RequestID: requestID, Model: req.Model}, true
}

func (s *stubRelay) ListModels(ctx context.Context, requestID string) (*openrouter.ModelsResponse, bool) {
	if !s.modelsOK {
		return nil, false
	}
	return &openrouter.ModelsResponse{Success: true, RequestID: requestID, Count: s.modelCount}, true
}

func newServer(t *testing.T, relay *stubRelay) *httptest.Server {
	t.Helper()
	handler := adapter.NewHandler(relay, nil, logging.NewNop())
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string, header http.Header) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestChatCompletions_Success(t *testing.T) {
	relay := &stubRelay{chatOK: true}
	srv := newServer(t, relay)

	body := `{"model": "x/y", "messages": [{"role": "user", "content": "hi"}], "api_key": "sk-or-1"}`
	resp := postJSON(t, srv.URL+"/openrouter/completions", body, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, resp.Header.Get("X-Request-ID"), 8)
	assert.NotEmpty(t, resp.Header.Get("X-Process-Time"))

	var out openrouter.ChatCompletionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Success)
	assert.Equal(t, resp.Header.Get("X-Request-ID"), out.RequestID)
	assert.Equal(t, "x/y", relay.lastChat.Model)
}

func TestChatCompletions_Defaulting(t *testing.T) {
	relay := &stubRelay{chatOK: true}
	srv := newServer(t, relay)

	t.Run("Model Defaults", func(t *testing.T) {
		body := `{"messages": [{"role": "user", "content": "hi"}], "api_key": "sk-or-1"}`
		resp := postJSON(t, srv.URL+"/openrouter/completions", body, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, openrouter.DefaultModel, relay.lastChat.Model)
	})

	t.Run("API Key From Authorization Header", func(t *testing.T) {
		body := `{"messages": [{"role": "user", "content": "hi"}]}`
		header := http.Header{"Authorization": []string{"Bearer sk-or-header"}}
		resp := postJSON(t, srv.URL+"/openrouter/completions", body, header)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "sk-or-header", relay.lastChat.APIKey)
	})

	t.Run("Body Key Wins Over Header", func(t *testing.T) {
		body := `{"messages": [{"role": "user", "content": "hi"}], "api_key": "sk-or-body"}`
		header := http.Header{"Authorization": []string{"Bearer sk-or-header"}}
		resp := postJSON(t, srv.URL+"/openrouter/completions", body, header)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "sk-or-body", relay.lastChat.APIKey)
	})
}

func TestChatCompletions_BadRequests(t *testing.T) {
	srv := newServer(t, &stubRelay{chatOK: true})

	t.Run("Malformed JSON", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/openrouter/completions", `{not json`, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Missing API Key", func(t *testing.T) {
		body := `{"messages": [{"role": "user", "content": "hi"}]}`
		resp := postJSON(t, srv.URL+"/openrouter/completions", body, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var out map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.NotEmpty(t, out["detail"])
	})

	t.Run("Empty Messages", func(t *testing.T) {
		body := `{"messages": [], "api_key": "sk-or-1"}`
		resp := postJSON(t, srv.URL+"/openrouter/completions", body, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestChatCompletions_RelayFailure(t *testing.T) {
	srv := newServer(t, &stubRelay{chatOK: false})

	body := `{"messages": [{"role": "user", "content": "hi"}], "api_key": "sk-or-1"}`
	resp := postJSON(t, srv.URL+"/openrouter/completions", body, nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestListModels(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := newServer(t, &stubRelay{modelsOK: true, modelCount: 3})
		resp, err := http.Get(srv.URL + "/openrouter/models")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out openrouter.ModelsResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, 3, out.Count)
	})

	t.Run("Relay Failure", func(t *testing.T) {
		srv := newServer(t, &stubRelay{modelsOK: false})
		resp, err := http.Get(srv.URL + "/openrouter/models")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})
}

func TestOperationalRoutes(t *testing.T) {
	srv := newServer(t, &stubRelay{})

	t.Run("Healthz", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Info", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/info")
		require.NoError(t, err)
		defer resp.Body.Close()

		var out map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, "workbench-http", out["app"])
		assert.Equal(t, workbench.Version, out["version"])
	})

	t.Run("Metrics", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestActionsCatalog(t *testing.T) {
	col := stubCollection{}
	reg, err := workbench.NewRegistry(col)
	require.NoError(t, err)

	handler := adapter.NewHandler(&stubRelay{}, reg, logging.NewNop())
	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/actions")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		Actions []struct {
			Name string `json:"name"`
		} `json:"actions"`
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "noop", out.Actions[0].Name)
}

type stubCollection struct{}

func (stubCollection) Name() string { return "stub" }
func (stubCollection) Actions() []workbench.Action {
	return []workbench.Action{{
		Name:        "noop",
		Description: "Do nothing.",
		Handler: func(ctx context.Context, args map[string]any) workbench.Response {
			return workbench.Success("ok")
		},
	}}
}
