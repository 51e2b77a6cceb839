package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/yctimlin/openai-mimic/internal/mapper"
	"github.com/yctimlin/openai-mimic/internal/models"
)

const (
	// chunkCount is how many content slices a full response is cut into.
	chunkCount = 5
	// defaultDelay paces content frames to resemble incremental delivery.
	defaultDelay = 50 * time.Millisecond
)

// doneMarker terminates every stream.
const doneMarker = "data: [DONE]\n\n"

// Emulator synthesizes a token-chunked SSE stream out of a complete
// backend response. The emission order is fixed: a role frame, content
// slices, an optional tool-call frame, a close frame, then [DONE]. There
// is no branching back and no restart.
type Emulator struct {
	model  string
	result *models.ChatResult
	delay  time.Duration
}

// New creates an emulator for one completed backend result.
func New(model string, result *models.ChatResult) *Emulator {
	return &Emulator{model: model, result: result, delay: defaultDelay}
}

// WithDelay overrides the pacing delay between content frames.
func (e *Emulator) WithDelay(d time.Duration) *Emulator {
	e.delay = d
	return e
}

// Emit writes the full frame sequence to w, flushing after every frame
// when w supports it. The pacing delay cooperates with ctx so a client
// disconnect stops emission; no frames follow a cancellation.
func (e *Emulator) Emit(ctx context.Context, w io.Writer) error {
	content := e.result.Data.Content.Content
	toolCalls := e.result.Data.Content.ToolCalls

	// Role frame signals the start of the assistant message.
	if err := e.writeChunk(w, models.ChatCompletionDelta{Role: "assistant"}, nil); err != nil {
		return err
	}

	for i, slice := range sliceContent(content, chunkCount) {
		if i > 0 {
			if err := e.pause(ctx); err != nil {
				return err
			}
		}
		if err := e.writeChunk(w, models.ChatCompletionDelta{Content: slice}, nil); err != nil {
			return err
		}
	}

	finishReason := "stop"
	if len(toolCalls) > 0 {
		finishReason = "tool_calls"
		delta := models.ChatCompletionDelta{ToolCalls: mapper.FormatToolCalls(toolCalls)}
		if err := e.writeChunk(w, delta, nil); err != nil {
			return err
		}
	}

	if err := e.writeChunk(w, models.ChatCompletionDelta{}, &finishReason); err != nil {
		return err
	}

	if _, err := io.WriteString(w, doneMarker); err != nil {
		return err
	}
	flush(w)
	return nil
}

func (e *Emulator) writeChunk(w io.Writer, delta models.ChatCompletionDelta, finishReason *string) error {
	chunk := models.ChatCompletionChunk{
		ID:      "chatcmpl-" + uuid.New().String(),
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Model:   e.model,
		Choices: []models.ChatCompletionChunkChoice{
			{Index: 0, Delta: delta, FinishReason: finishReason},
		},
	}

	data, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("failed to marshal chunk: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	flush(w)
	return nil
}

// pause waits out the pacing delay without blocking other requests, and
// bails out as soon as the caller disconnects.
func (e *Emulator) pause(ctx context.Context) error {
	if e.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(e.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func flush(w io.Writer) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// sliceContent cuts content into ceil(len/n)-sized rune slices. Empty
// content yields no slices; the last slice may be shorter.
func sliceContent(content string, n int) []string {
	runes := []rune(content)
	if len(runes) == 0 {
		return nil
	}
	size := (len(runes) + n - 1) / n
	slices := make([]string, 0, n)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		slices = append(slices, string(runes[start:end]))
	}
	return slices
}
