package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/yctimlin/openai-mimic/internal/models"
)

// ErrModelNotFound is returned when a model id is not in the catalog.
var ErrModelNotFound = errors.New("model not found")

// catalogEntry is one row of the static model table. Offsets are seconds
// subtracted from the construction time, ascending per entry, so the list
// keeps a stable descending created order.
type catalogEntry struct {
	id       string
	category string
}

const createdStep = 500

var entries = []catalogEntry{
	// GPT-4 models
	{"gpt-4o", "chat"},
	{"gpt-4o-mini", "chat"},
	{"gpt-4o-audio-preview", "chat"},
	{"gpt-4-turbo", "chat"},
	{"gpt-4-turbo-preview", "chat"},
	{"gpt-4-0125-preview", "chat"},
	{"gpt-4-vision-preview", "chat"},
	{"gpt-4", "chat"},

	// GPT-3.5 models
	{"gpt-3.5-turbo-0125", "chat"},
	{"gpt-3.5-turbo", "chat"},

	// Embedding models
	{"text-embedding-3-large", "embedding"},
	{"text-embedding-3-small", "embedding"},
	{"text-embedding-ada-002", "embedding"},

	// Audio models
	{"whisper-1", "audio"},
	{"tts-1", "audio"},
	{"tts-1-hd", "audio"},

	// Image models
	{"dall-e-3", "image"},
	{"dall-e-2", "image"},
}

var visionModels = map[string]bool{
	"gpt-4-vision-preview": true,
	"gpt-4o":               true,
}

// Catalog is the fixed in-memory model list. It is built once at startup
// and safe for unsynchronized concurrent reads.
type Catalog struct {
	list     []models.Model
	byID     map[string]models.Model
	category map[string]string
}

// New builds the catalog. Created timestamps are synthetic: now minus an
// ascending per-entry offset, giving relative ordering rather than
// wall-clock accuracy.
func New() *Catalog {
	now := time.Now().Unix()

	c := &Catalog{
		list:     make([]models.Model, 0, len(entries)),
		byID:     make(map[string]models.Model, len(entries)),
		category: make(map[string]string, len(entries)),
	}

	for i, e := range entries {
		m := models.Model{
			ID:      e.id,
			Object:  "model",
			Created: now - int64(i+2)*createdStep,
			OwnedBy: "openai",
		}
		c.list = append(c.list, m)
		c.byID[strings.ToLower(e.id)] = m
		c.category[strings.ToLower(e.id)] = e.category
	}

	return c
}

// List returns all models in catalog order.
func (c *Catalog) List() []models.Model {
	out := make([]models.Model, len(c.list))
	copy(out, c.list)
	return out
}

// Get returns the model with the given id, matched case-insensitively.
func (c *Catalog) Get(id string) (models.Model, error) {
	m, ok := c.byID[strings.ToLower(id)]
	if !ok {
		return models.Model{}, ErrModelNotFound
	}
	return m, nil
}

// IsStreamingSupported reports whether the model can be streamed. All chat
// models support streaming.
func (c *Catalog) IsStreamingSupported(id string) bool {
	return c.category[strings.ToLower(id)] == "chat"
}

// IsVisionModel reports whether the model accepts multimodal input.
func (c *Catalog) IsVisionModel(id string) bool {
	return visionModels[strings.ToLower(id)]
}
