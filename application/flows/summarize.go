package flows

import "context"

// SummaryProgress is the fixed progress message returned with every summary
const SummaryProgress = "Generated a short, one-sentence summary of the document."

// SummarizeInput is a document to summarize
type SummarizeInput struct {
	Title string `validate:"required"`
	Text  string `validate:"required"`
}

// SummarizeOutput is the model's summary
type SummarizeOutput struct {
	Summary  string `json:"summary" validate:"required"`
	Progress string `json:"progress"`
}

var summarizeSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"summary":  map[string]any{"type": "STRING", "description": "A summary of the document."},
		"progress": map[string]any{"type": "STRING", "description": "A message indicating the progress of the summarization process."},
	},
	"required": []string{"summary"},
}

// Summarize produces a concise summary of one document
func (f *Flows) Summarize(ctx context.Context, in SummarizeInput) (*SummarizeOutput, error) {
	out, err := newPrompt[SummarizeInput, SummarizeOutput](f, PromptSummarize, summarizeSchema).run(ctx, in)
	if err != nil {
		return nil, err
	}
	out.Progress = SummaryProgress
	return &out, nil
}
