package flows

import (
	"github.com/Sk16er/Scholar-chat/application/ports"
	"go.uber.org/zap"
)

// Flow names, used for metrics, tracing and prompt lookup
const (
	FlowSummarize   = PromptSummarize
	FlowAnswer      = PromptAnswer
	FlowMindMap     = PromptMindMap
	FlowExtractFile = PromptExtractFile
	FlowExtractURL  = PromptExtractURL
	FlowAudio       = "audio"
)

// Config selects models for the flows
type Config struct {
	TextModel   string
	SpeechModel string
	Voice       string
}

// DefaultConfig returns the stock model selection
func DefaultConfig() Config {
	return Config{
		TextModel:   "gemini-2.5-flash",
		SpeechModel: "gemini-2.5-flash-preview-tts",
		Voice:       "Algenib",
	}
}

// Flows runs the prompt flows against a model client.
// Flows never retry, cache or batch.
type Flows struct {
	client  ports.ModelClient
	prompts ports.PromptStore
	cfg     Config
	logger  *zap.Logger
}

// New creates the flow runner. A nil prompt store falls back to the
// built-in templates.
func New(client ports.ModelClient, prompts ports.PromptStore, cfg Config, logger *zap.Logger) *Flows {
	if prompts == nil {
		prompts = builtinPrompts(DefaultPrompts())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.TextModel == "" {
		cfg.TextModel = def.TextModel
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = def.SpeechModel
	}
	if cfg.Voice == "" {
		cfg.Voice = def.Voice
	}
	return &Flows{client: client, prompts: prompts, cfg: cfg, logger: logger}
}

func newPrompt[In any, Out any](f *Flows, name string, schema map[string]any) *prompt[In, Out] {
	return &prompt[In, Out]{
		name:    name,
		model:   f.cfg.TextModel,
		schema:  schema,
		prompts: f.prompts,
		client:  f.client,
	}
}
