package mapper

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yctimlin/openai-mimic/internal/models"
)

func payloadKeys(t *testing.T, payload *models.ChatPayload) map[string]interface{} {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestBuildChatPayload_Defaults(t *testing.T) {
	req := &models.ChatCompletionRequest{
		Model:    "gpt-4o",
		Messages: []models.ChatMessage{{Role: "user", Content: "hi"}},
	}

	payload := BuildChatPayload(req)

	assert.Equal(t, "gpt-4o", payload.Model)
	assert.Equal(t, 0.8, payload.Temperature)
	assert.Equal(t, 0.8, payload.TopP)
	assert.Equal(t, 1024, payload.MaxTokens)
	assert.False(t, payload.Echo)
	assert.Equal(t, 1.1, payload.RepetitionPenalty)
	assert.Equal(t, "auto", payload.ToolChoice)
}

func TestBuildChatPayload_AbsentOptionalsStayAbsent(t *testing.T) {
	req := &models.ChatCompletionRequest{
		Model:    "gpt-4o",
		Messages: []models.ChatMessage{{Role: "user", Content: "hi"}},
	}

	m := payloadKeys(t, BuildChatPayload(req))

	for _, key := range []string{
		"response_format", "seed", "stop", "max_completion_tokens",
		"parallel_tool_calls", "prediction", "stream_options",
		"reasoning_effort", "user",
	} {
		_, present := m[key]
		assert.False(t, present, "key %q must not appear in payload", key)
	}
	// echo is a fixed field and always present
	assert.Equal(t, false, m["echo"])
}

func TestBuildChatPayload_OptionalsForwarded(t *testing.T) {
	effort := 0.5
	parallel := true
	req := &models.ChatCompletionRequest{
		Model:               "gpt-4o",
		Messages:            []models.ChatMessage{{Role: "user", Content: "hi"}},
		Temperature:         floatPtr(0.2),
		TopP:                floatPtr(0.9),
		MaxTokens:           intPtr(256),
		Seed:                intPtr(42),
		Stop:                []interface{}{"###"},
		ResponseFormat:      map[string]interface{}{"type": "json_object"},
		MaxCompletionTokens: intPtr(512),
		ParallelToolCalls:   &parallel,
		ReasoningEffort:     &effort,
		User:                "tester",
	}

	payload := BuildChatPayload(req)
	m := payloadKeys(t, payload)

	assert.Equal(t, 0.2, payload.Temperature)
	assert.Equal(t, 0.9, payload.TopP)
	assert.Equal(t, 256, payload.MaxTokens)
	assert.Equal(t, float64(42), m["seed"])
	assert.Equal(t, []interface{}{"###"}, m["stop"])
	assert.Equal(t, map[string]interface{}{"type": "json_object"}, m["response_format"])
	assert.Equal(t, float64(512), m["max_completion_tokens"])
	assert.Equal(t, true, m["parallel_tool_calls"])
	assert.Equal(t, 0.5, m["reasoning_effort"])
	assert.Equal(t, "tester", m["user"])
}

func TestBuildChatResponse_Stop(t *testing.T) {
	result := &models.ChatResult{}
	result.Data.Content.Content = "The answer is 42."

	resp := BuildChatResponse("gpt-4o", result)

	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "chat.completion", resp.Object)
	assert.Equal(t, "gpt-4o", resp.Model)
	assert.Equal(t, "stop", resp.Choices[0].FinishReason)
	assert.Equal(t, "assistant", resp.Choices[0].Message.Role)
	assert.Equal(t, "The answer is 42.", resp.Choices[0].Message.Content)
	assert.Nil(t, resp.Choices[0].Message.ToolCalls)
	assert.Contains(t, resp.ID, "chatcmpl-")
}

func TestBuildChatResponse_ToolCalls(t *testing.T) {
	result := &models.ChatResult{}
	result.Data.Content.ToolCalls = []models.UpstreamToolCall{
		{Name: "get_weather", Arguments: json.RawMessage(`"{\"city\":\"Taipei\"}"`)},
		{Name: "get_time"},
	}

	resp := BuildChatResponse("gpt-4o", result)

	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "tool_calls", resp.Choices[0].FinishReason)

	calls := resp.Choices[0].Message.ToolCalls
	require.Len(t, calls, 2)
	assert.Equal(t, "function", calls[0].Type)
	assert.Equal(t, "get_weather", calls[0].Function.Name)
	assert.Equal(t, `{"city":"Taipei"}`, calls[0].Function.Arguments)
	assert.Equal(t, "{}", calls[1].Function.Arguments, "missing arguments default to an empty JSON object")
	assert.NotEqual(t, calls[0].ID, calls[1].ID, "generated ids must be unique per call")
}

func TestFormatToolCalls_ObjectArguments(t *testing.T) {
	calls := FormatToolCalls([]models.UpstreamToolCall{
		{Name: "lookup", Arguments: json.RawMessage(`{"id":7}`)},
	})

	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"id":7}`, calls[0].Function.Arguments)
}

func TestRoundTrip_ModelPreserved(t *testing.T) {
	req := &models.ChatCompletionRequest{
		Model:    "gpt-3.5-turbo",
		Messages: []models.ChatMessage{{Role: "user", Content: "hi"}},
	}
	payload := BuildChatPayload(req)

	result := &models.ChatResult{}
	result.Data.Content.Content = "hello back"
	resp := BuildChatResponse(payload.Model, result)

	assert.Equal(t, req.Model, resp.Model)
}

func TestNormalizeEmbeddingInput(t *testing.T) {
	t.Run("single string", func(t *testing.T) {
		got, err := NormalizeEmbeddingInput("hello")
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"hello"}, got)
	})

	t.Run("list of strings", func(t *testing.T) {
		got, err := NormalizeEmbeddingInput([]interface{}{"a", "b", "c"})
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"a", "b", "c"}, got)
	})

	t.Run("nested first element is unwrapped", func(t *testing.T) {
		got, err := NormalizeEmbeddingInput([]interface{}{[]interface{}{1.0, 2.0, 3.0}})
		require.NoError(t, err)
		assert.Equal(t, []interface{}{1.0, 2.0, 3.0}, got)
	})

	t.Run("unwrap is first-level only", func(t *testing.T) {
		got, err := NormalizeEmbeddingInput([]interface{}{"a", []interface{}{"b"}})
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"a", []interface{}{"b"}}, got)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := NormalizeEmbeddingInput(42)
		assert.Error(t, err)
	})
}

func TestBuildEmbeddingParams_Defaults(t *testing.T) {
	req := &models.EmbeddingRequest{Input: "hi"}
	params := BuildEmbeddingParams(req, "hi")

	assert.Equal(t, "text-embedding-ada-002", params.Model)
	assert.Equal(t, "float", params.EncodingFormat)
	assert.Equal(t, 0.5, params.Timeout)
	assert.Empty(t, params.User)
}

func TestBuildEmbeddingParams_UserForwarded(t *testing.T) {
	req := &models.EmbeddingRequest{Input: "hi", Model: "text-embedding-3-small", User: "tracker"}
	params := BuildEmbeddingParams(req, "hi")

	assert.Equal(t, "text-embedding-3-small", params.Model)
	assert.Equal(t, "tracker", params.User)
}

func TestEstimateTokens(t *testing.T) {
	inputs := []interface{}{"hello world", "one two three"}
	assert.Equal(t, 20, EstimateTokens(inputs)) // 5 words * 4

	assert.Equal(t, 0, EstimateTokens(nil))
}
