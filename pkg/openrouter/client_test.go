package openrouter_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/workbench/internal/logging"
	"github.com/aretw0/workbench/pkg/openrouter"
)

func newClient(t *testing.T, upstream *httptest.Server) *openrouter.Client {
	t.Helper()
	return openrouter.New(
		openrouter.WithBaseURL(upstream.URL),
		openrouter.WithLogger(logging.NewNop()),
	)
}

func chatRequest() openrouter.ChatCompletionRequest {
	return openrouter.ChatCompletionRequest{
		Model:    "google/gemini-2.5-pro",
		Messages: []openrouter.Message{{Role: "user", Content: "hello"}},
		APIKey:   "sk-or-test",
	}
}

func TestChatCompletion_Success(t *testing.T) {
	var gotPath, gotAuth, gotReferer, gotTitle string
	var gotPayload map[string]any

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "x", "choices": [], "usage": {"total_tokens": 7}}`))
	}))
	defer upstream.Close()

	req := chatRequest()
	req.SiteURL = "https://example.com"
	req.SiteName = "Example"

	resp, ok := newClient(t, upstream).ChatCompletion(context.Background(), req, "req-1")
	require.True(t, ok)
	require.NotNil(t, resp)

	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-or-test", gotAuth)
	assert.Equal(t, "https://example.com", gotReferer)
	assert.Equal(t, "Example", gotTitle)
	assert.Equal(t, "google/gemini-2.5-pro", gotPayload["model"])

	assert.True(t, resp.Success)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, "x", resp.Response["id"])
	assert.Equal(t, float64(7), resp.Usage["total_tokens"])
}

func TestChatCompletion_OmitsUnsetKnobs(t *testing.T) {
	var gotPayload map[string]any
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Write([]byte(`{"id": "x"}`))
	}))
	defer upstream.Close()

	_, ok := newClient(t, upstream).ChatCompletion(context.Background(), chatRequest(), "req-2")
	require.True(t, ok)

	for _, knob := range []string{"max_tokens", "temperature", "top_p", "frequency_penalty", "presence_penalty", "stream"} {
		assert.NotContains(t, gotPayload, knob)
	}
	// api_key and site metadata never leak into the payload.
	assert.NotContains(t, gotPayload, "api_key")
	assert.NotContains(t, gotPayload, "site_url")
}

func TestChatCompletion_UpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	resp, ok := newClient(t, upstream).ChatCompletion(context.Background(), chatRequest(), "req-3")
	assert.False(t, ok)
	assert.Nil(t, resp)
}

func TestChatCompletion_TransportError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // connection refused from here on

	resp, ok := newClient(t, upstream).ChatCompletion(context.Background(), chatRequest(), "req-4")
	assert.False(t, ok)
	assert.Nil(t, resp)
}

func TestListModels(t *testing.T) {
	t.Run("Success With Count", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/models", r.URL.Path)
			w.Write([]byte(`{"data": [{"id": "a"}, {"id": "b"}]}`))
		}))
		defer upstream.Close()

		resp, ok := newClient(t, upstream).ListModels(context.Background(), "req-5")
		require.True(t, ok)
		require.NotNil(t, resp)
		assert.Equal(t, 2, resp.Count)
		assert.True(t, resp.Success)
	})

	t.Run("Upstream Failure", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer upstream.Close()

		resp, ok := newClient(t, upstream).ListModels(context.Background(), "req-6")
		assert.False(t, ok)
		assert.Nil(t, resp)
	})
}

func TestChatCompletionRequest_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, chatRequest().Validate())
	})

	t.Run("Missing Model", func(t *testing.T) {
		req := chatRequest()
		req.Model = ""
		assert.Error(t, req.Validate())
	})

	t.Run("Empty Messages", func(t *testing.T) {
		req := chatRequest()
		req.Messages = nil
		assert.Error(t, req.Validate())
	})

	t.Run("Missing API Key", func(t *testing.T) {
		req := chatRequest()
		req.APIKey = ""
		assert.Error(t, req.Validate())
	})

	t.Run("Temperature Out Of Range", func(t *testing.T) {
		req := chatRequest()
		temp := 3.5
		req.Temperature = &temp
		assert.Error(t, req.Validate())
	})
}
