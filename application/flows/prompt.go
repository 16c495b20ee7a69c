package flows

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/Sk16er/Scholar-chat/application/ports"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"github.com/Sk16er/Scholar-chat/pkg/utils"
)

// Prompt template names
const (
	PromptSummarize   = "summarize"
	PromptAnswer      = "answer"
	PromptMindMap     = "mindmap"
	PromptExtractFile = "extract_file"
	PromptExtractURL  = "extract_url"
)

//go:embed prompts/*.tmpl
var defaultPromptFS embed.FS

// DefaultPrompts returns the built-in prompt templates keyed by name
func DefaultPrompts() map[string]string {
	out := make(map[string]string)
	entries, err := defaultPromptFS.ReadDir("prompts")
	if err != nil {
		return out
	}
	for _, e := range entries {
		data, err := defaultPromptFS.ReadFile(path.Join("prompts", e.Name()))
		if err != nil {
			continue
		}
		out[strings.TrimSuffix(e.Name(), ".tmpl")] = string(data)
	}
	return out
}

type builtinPrompts map[string]string

func (b builtinPrompts) Get(name string) (string, error) {
	if t, ok := b[name]; ok {
		return t, nil
	}
	return "", fmt.Errorf("prompt %q not found", name)
}

// prompt renders a template, calls the model in JSON mode and decodes the
// reply into Out. In and Out are checked against their validate tags.
type prompt[In any, Out any] struct {
	name    string
	model   string
	schema  map[string]any
	prompts ports.PromptStore
	client  ports.ModelClient
}

func (p *prompt[In, Out]) run(ctx context.Context, in In, media ...ports.Part) (Out, error) {
	var zero Out

	if err := utils.ValidateStruct(in); err != nil {
		return zero, pkgerrors.NewValidationError(p.name + ": " + err.Error())
	}

	text, err := p.render(in)
	if err != nil {
		return zero, err
	}

	parts := make([]ports.Part, 0, 1+len(media))
	parts = append(parts, ports.TextPart(text))
	parts = append(parts, media...)

	resp, err := p.client.Generate(ctx, ports.GenerateRequest{
		Flow:     p.name,
		Model:    p.model,
		Parts:    parts,
		JSON:     true,
		Schema:   p.schema,
		Modality: ports.ModalityText,
	})
	if err != nil {
		return zero, fmt.Errorf("%s: %w", p.name, err)
	}

	var out Out
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Text)), &out); err != nil {
		return zero, pkgerrors.NewExternalError("model", err).
			WithCode(pkgerrors.CodeContractViolation).
			WithDetails(map[string]interface{}{"flow": p.name})
	}
	if err := utils.ValidateStruct(out); err != nil {
		return zero, pkgerrors.NewExternalError("model", err).
			WithCode(pkgerrors.CodeContractViolation).
			WithDetails(map[string]interface{}{"flow": p.name})
	}
	return out, nil
}

func (p *prompt[In, Out]) render(in In) (string, error) {
	src, err := p.prompts.Get(p.name)
	if err != nil {
		return "", pkgerrors.NewInternalError("prompt template unavailable").WithCause(err)
	}
	tmpl, err := template.New(p.name).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", pkgerrors.NewInternalError("prompt template " + p.name + " is invalid").WithCause(err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, in); err != nil {
		return "", pkgerrors.NewInternalError("rendering prompt " + p.name).WithCause(err)
	}
	return buf.String(), nil
}

// stripCodeFence removes a ```json fence some models wrap JSON replies in
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
