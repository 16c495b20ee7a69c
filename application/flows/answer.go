package flows

import "context"

// RefusalAnswer is the fixed reply when the passages do not contain an answer
const RefusalAnswer = "I can't answer that from the provided documents."

// Passage is a source's content with locating metadata
type Passage struct {
	SourceID string `validate:"required"`
	Page     int    `validate:"min=1"`
	Text     string
}

// AnswerInput is a question over a set of passages
type AnswerInput struct {
	ProjectID      string
	ConversationID string
	Query          string    `validate:"required"`
	Passages       []Passage `validate:"dive"`
}

// CitationOutput is one citation returned by the model
type CitationOutput struct {
	SourceID string `json:"sourceId" validate:"required"`
	Page     int    `json:"page"`
	Snippet  string `json:"snippet" validate:"required"`
}

// AnswerOutput is a grounded answer with citations
type AnswerOutput struct {
	Answer    string           `json:"answer" validate:"required"`
	Citations []CitationOutput `json:"citations" validate:"dive"`
}

var answerSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"answer": map[string]any{"type": "STRING", "description": "The answer to the user question, based on the provided documents."},
		"citations": map[string]any{
			"type": "ARRAY",
			"items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"sourceId": map[string]any{"type": "STRING"},
					"page":     map[string]any{"type": "INTEGER"},
					"snippet":  map[string]any{"type": "STRING", "description": "A snippet from the source document that supports the answer."},
				},
				"required": []string{"sourceId", "page", "snippet"},
			},
		},
	},
	"required": []string{"answer", "citations"},
}

// Answer answers a question using only the supplied passages
func (f *Flows) Answer(ctx context.Context, in AnswerInput) (*AnswerOutput, error) {
	out, err := newPrompt[AnswerInput, AnswerOutput](f, PromptAnswer, answerSchema).run(ctx, in)
	if err != nil {
		return nil, err
	}
	if out.Citations == nil {
		out.Citations = []CitationOutput{}
	}
	return &out, nil
}
