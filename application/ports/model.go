package ports

import "context"

// Modality selects what the model should produce
type Modality string

const (
	ModalityText  Modality = "TEXT"
	ModalityAudio Modality = "AUDIO"
)

// Part is one piece of a prompt: text or inline media
type Part struct {
	Text      string
	MediaType string
	Data      []byte
}

// TextPart builds a text part
func TextPart(text string) Part { return Part{Text: text} }

// MediaPart builds an inline media part
func MediaPart(mediaType string, data []byte) Part {
	return Part{MediaType: mediaType, Data: data}
}

// IsMedia reports whether the part carries inline bytes
func (p Part) IsMedia() bool { return p.MediaType != "" }

// GenerateRequest is a single call to the generative model
type GenerateRequest struct {
	// Flow names the calling flow for metrics and tracing
	Flow  string
	Model string
	Parts []Part
	JSON  bool
	// Schema describes the expected JSON reply (OpenAPI subset)
	Schema   map[string]any
	Modality Modality
	Voice    string
}

// GenerateResponse is the model's reply
type GenerateResponse struct {
	Text      string
	MediaType string
	Media     []byte
}

// HasMedia reports whether the reply carried inline media
func (r *GenerateResponse) HasMedia() bool {
	return r != nil && len(r.Media) > 0
}

// ModelClient is the sole network dependency of the flows
type ModelClient interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// PromptStore serves named prompt templates
type PromptStore interface {
	Get(name string) (string, error)
}
