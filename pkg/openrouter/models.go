package openrouter

import (
	"github.com/go-playground/validator/v10"
)

// DefaultModel is used when a relay request omits the model.
const DefaultModel = "google/gemini-2.5-pro"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Message is one chat turn in the OpenAI-compatible wire format. Content is
// either a string or the structured multi-part form; the relay forwards it
// untouched.
type Message struct {
	Role    string `json:"role" validate:"required"`
	Content any    `json:"content"`
}

// ChatCompletionRequest is the relay's inbound request. The API key travels
// with the request (never process-global) and becomes the bearer token on
// the upstream call.
type ChatCompletionRequest struct {
	Model            string     `json:"model" validate:"required"`
	Messages         []Message  `json:"messages" validate:"required,min=1,dive"`
	APIKey           string     `json:"api_key" validate:"required"`
	MaxTokens        *int       `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
	Temperature      *float64   `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	TopP             *float64   `json:"top_p,omitempty" validate:"omitempty,gte=0,lte=1"`
	FrequencyPenalty *float64   `json:"frequency_penalty,omitempty" validate:"omitempty,gte=-2,lte=2"`
	PresencePenalty  *float64   `json:"presence_penalty,omitempty" validate:"omitempty,gte=-2,lte=2"`
	Stream           bool       `json:"stream,omitempty"`
	SiteURL          string     `json:"site_url,omitempty" validate:"omitempty,url"`
	SiteName         string     `json:"site_name,omitempty"`
}

// Validate checks the request shape. Callers treat a failure as a
// validation error (HTTP 400), distinct from upstream failures.
func (r ChatCompletionRequest) Validate() error {
	return validate.Struct(r)
}

// chatPayload is the outbound wire shape. Optional knobs are omitted when
// unset so upstream defaults apply.
type chatPayload struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	MaxTokens        *int      `json:"max_tokens,omitempty"`
	Temperature      *float64  `json:"temperature,omitempty"`
	TopP             *float64  `json:"top_p,omitempty"`
	FrequencyPenalty *float64  `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64  `json:"presence_penalty,omitempty"`
	Stream           bool      `json:"stream,omitempty"`
}

// ChatCompletionResponse wraps a successful upstream completion.
type ChatCompletionResponse struct {
	Success   bool           `json:"success"`
	RequestID string         `json:"request_id"`
	Response  map[string]any `json:"response"`
	Model     string         `json:"model"`
	Usage     map[string]any `json:"usage,omitempty"`
}

// ModelsResponse wraps the upstream model catalogue.
type ModelsResponse struct {
	Success   bool           `json:"success"`
	RequestID string         `json:"request_id"`
	Models    map[string]any `json:"models"`
	Count     int            `json:"count"`
}
