package models

import "encoding/json"

// Backend wire types. The backend wraps everything in a "data" envelope and
// signals expired credentials with an application-level errorCode inside a
// non-200 JSON body.

// TokenResponse is the body returned by the token endpoint.
type TokenResponse struct {
	Data TokenData `json:"data"`
}

type TokenData struct {
	AccessToken string `json:"access_token"`
}

// ChatPayload is the flat parameter map sent to the chat endpoint.
type ChatPayload struct {
	Model             string        `json:"model"`
	Messages          []ChatMessage `json:"messages"`
	Temperature       float64       `json:"temperature"`
	TopP              float64       `json:"top_p"`
	MaxTokens         int           `json:"max_tokens"`
	Echo              bool          `json:"echo"`
	Stream            bool          `json:"stream"`
	RepetitionPenalty float64       `json:"repetition_penalty"`
	Tools             []Tool        `json:"tools,omitempty"`
	ToolChoice        interface{}   `json:"tool_choice"`

	// Optional fields must stay out of the payload entirely when unset,
	// not show up as nulls.
	ResponseFormat      map[string]interface{} `json:"response_format,omitempty"`
	Seed                *int                   `json:"seed,omitempty"`
	Stop                interface{}            `json:"stop,omitempty"`
	MaxCompletionTokens *int                   `json:"max_completion_tokens,omitempty"`
	ParallelToolCalls   *bool                  `json:"parallel_tool_calls,omitempty"`
	Prediction          map[string]interface{} `json:"prediction,omitempty"`
	StreamOptions       map[string]interface{} `json:"stream_options,omitempty"`
	ReasoningEffort     *float64               `json:"reasoning_effort,omitempty"`
	User                string                 `json:"user,omitempty"`
}

// ChatResult is the chat endpoint response body.
type ChatResult struct {
	Data ChatResultData `json:"data"`
}

type ChatResultData struct {
	Content ChatResultContent `json:"content"`
}

type ChatResultContent struct {
	Content   string             `json:"content"`
	ToolCalls []UpstreamToolCall `json:"tool_calls"`
}

// UpstreamToolCall carries the raw arguments payload; the backend sends
// either a JSON-encoded string or a bare object, or omits it entirely.
type UpstreamToolCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// EmbeddingParams is the per-text parameter map sent to the embedding
// endpoint. One call is issued per input text.
type EmbeddingParams struct {
	Model          string      `json:"model"`
	Text           interface{} `json:"text"`
	EncodingFormat string      `json:"encoding_format"`
	Dimensions     *int        `json:"dimensions,omitempty"`
	Timeout        float64     `json:"timeout"`
	User           string      `json:"user,omitempty"`
}

// EmbeddingResult is the embedding endpoint response body; data.content is
// the vector itself.
type EmbeddingResult struct {
	Data EmbeddingResultData `json:"data"`
}

type EmbeddingResultData struct {
	Content json.RawMessage `json:"content"`
}

// UpstreamErrorBody is the application-level error shape embedded in
// non-200 responses. ErrorCode 401 means the bearer token expired.
type UpstreamErrorBody struct {
	ErrorCode int    `json:"errorCode"`
	ErrorMsg  string `json:"errorMsg,omitempty"`
}
