package mapper

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yctimlin/openai-mimic/internal/models"
)

// Defaults applied when the inbound request leaves a field unset. They
// match what the backend has always been sent.
const (
	defaultTemperature       = 0.8
	defaultTopP              = 0.8
	defaultMaxTokens         = 1024
	defaultRepetitionPenalty = 1.1
	defaultEmbeddingModel    = "text-embedding-ada-002"
	defaultEncodingFormat    = "float"

	// The backend reads a per-call timeout hint out of the embedding payload.
	embeddingTimeoutHint = 0.5
)

// BuildChatPayload maps an OpenAI chat completion request onto the flat
// parameter shape the backend expects. Optional fields are carried over
// only when present in the request.
func BuildChatPayload(req *models.ChatCompletionRequest) *models.ChatPayload {
	payload := &models.ChatPayload{
		Model:             req.Model,
		Messages:          req.Messages,
		Temperature:       defaultTemperature,
		TopP:              defaultTopP,
		MaxTokens:         defaultMaxTokens,
		Echo:              false,
		Stream:            req.Stream,
		RepetitionPenalty: defaultRepetitionPenalty,
		Tools:             req.Tools,
		ToolChoice:        "auto",
	}

	if req.Temperature != nil {
		payload.Temperature = *req.Temperature
	}
	if req.TopP != nil {
		payload.TopP = *req.TopP
	}
	if req.MaxTokens != nil {
		payload.MaxTokens = *req.MaxTokens
	}
	if req.RepetitionPenalty != nil {
		payload.RepetitionPenalty = *req.RepetitionPenalty
	}
	if req.ToolChoice != nil {
		payload.ToolChoice = req.ToolChoice
	}

	payload.ResponseFormat = req.ResponseFormat
	payload.Seed = req.Seed
	payload.Stop = req.Stop
	payload.MaxCompletionTokens = req.MaxCompletionTokens
	payload.ParallelToolCalls = req.ParallelToolCalls
	payload.Prediction = req.Prediction
	payload.StreamOptions = req.StreamOptions
	payload.ReasoningEffort = req.ReasoningEffort
	payload.User = req.User

	return payload
}

// BuildChatResponse converts the backend chat result into an OpenAI chat
// completion. finish_reason is "tool_calls" whenever the result carries a
// non-empty tool-call list, "stop" otherwise.
func BuildChatResponse(model string, result *models.ChatResult) *models.ChatCompletionResponse {
	finishReason := "stop"
	var toolCalls []models.ToolCall

	if len(result.Data.Content.ToolCalls) > 0 {
		finishReason = "tool_calls"
		toolCalls = FormatToolCalls(result.Data.Content.ToolCalls)
	}

	return &models.ChatCompletionResponse{
		ID:      "chatcmpl-" + uuid.New().String(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []models.ChatCompletionChoice{
			{
				Index: 0,
				Message: models.ChatMessage{
					Role:      "assistant",
					Content:   result.Data.Content.Content,
					ToolCalls: toolCalls,
				},
				FinishReason: finishReason,
			},
		},
		Usage: &models.Usage{},
	}
}

// FormatToolCalls wraps backend tool calls into OpenAI tool-call objects.
// Ids combine the call index with a timestamp so they are unique per call.
func FormatToolCalls(calls []models.UpstreamToolCall) []models.ToolCall {
	now := time.Now().Unix()
	out := make([]models.ToolCall, 0, len(calls))
	for i, call := range calls {
		out = append(out, models.ToolCall{
			ID:   fmt.Sprintf("call_%d_%d", i, now),
			Type: "function",
			Function: models.FunctionCall{
				Name:      call.Name,
				Arguments: argumentsString(call.Arguments),
			},
		})
	}
	return out
}

// argumentsString normalizes tool-call arguments to a JSON-encoded string.
// The backend sends a string, a bare object, or nothing at all.
func argumentsString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "{}"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "{}"
		}
		return s
	}
	return string(raw)
}

// NormalizeEmbeddingInput flattens the embedding input union into an
// ordered sequence. A single string becomes a one-element sequence; a
// sequence whose first element is itself a sequence is replaced by that
// nested sequence. The unwrap is first-level only, a quirk carried over
// from the behavior clients already rely on.
func NormalizeEmbeddingInput(input interface{}) ([]interface{}, error) {
	switch v := input.(type) {
	case string:
		return []interface{}{v}, nil
	case []interface{}:
		if len(v) > 0 {
			if nested, ok := v[0].([]interface{}); ok {
				return nested, nil
			}
		}
		return v, nil
	default:
		return nil, fmt.Errorf("input must be a string or an array, got %T", input)
	}
}

// BuildEmbeddingParams produces the per-text parameter map for one
// upstream embedding call.
func BuildEmbeddingParams(req *models.EmbeddingRequest, text interface{}) *models.EmbeddingParams {
	model := req.Model
	if model == "" {
		model = defaultEmbeddingModel
	}
	format := req.EncodingFormat
	if format == "" {
		format = defaultEncodingFormat
	}
	return &models.EmbeddingParams{
		Model:          model,
		Text:           text,
		EncodingFormat: format,
		Dimensions:     req.Dimensions,
		Timeout:        embeddingTimeoutHint,
		User:           req.User,
	}
}

// EstimateTokens approximates prompt token usage as four times the
// whitespace-delimited word count across all inputs. Not a real tokenizer.
func EstimateTokens(inputs []interface{}) int {
	words := 0
	for _, in := range inputs {
		words += len(strings.Fields(fmt.Sprint(in)))
	}
	return words * 4
}
