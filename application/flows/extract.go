package flows

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sk16er/Scholar-chat/application/ports"
)

// Legacy failure texts. Older clients compare extracted content against
// these literals, so they must not change.
const (
	SentinelFileUnprocessable = "I am unable to process this file."
	SentinelURLUnreachable    = "I am unable to access this URL."
)

// FailureReason names why an extraction failed
type FailureReason string

const (
	FailureFileUnprocessable FailureReason = "file_unprocessable"
	FailureURLUnreachable    FailureReason = "url_unreachable"
)

// ExtractionFailure is the failure variant of an extraction
type ExtractionFailure struct {
	Reason  FailureReason
	Message string
	Cause   error
}

func (f *ExtractionFailure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %v", f.Message, f.Cause)
	}
	return f.Message
}

func (f *ExtractionFailure) Unwrap() error { return f.Cause }

// ExtractionResult is the outcome of a text extraction. Exactly one of
// Content or Failure is meaningful.
type ExtractionResult struct {
	Name    string
	Content string
	Failure *ExtractionFailure
}

// IsSentinel reports whether content is one of the legacy failure texts
func IsSentinel(content string) bool {
	c := strings.TrimSpace(content)
	return c == SentinelFileUnprocessable || c == SentinelURLUnreachable
}

// Failed reports whether extraction failed, either explicitly or because
// the model echoed a legacy failure text back as content.
func (r ExtractionResult) Failed() bool {
	return r.Failure != nil || IsSentinel(r.Content)
}

// Reason returns the failure reason, inferring it from sentinel content
func (r ExtractionResult) Reason() FailureReason {
	if r.Failure != nil {
		return r.Failure.Reason
	}
	switch strings.TrimSpace(r.Content) {
	case SentinelFileUnprocessable:
		return FailureFileUnprocessable
	case SentinelURLUnreachable:
		return FailureURLUnreachable
	}
	return ""
}

// FailureMessage renders a message suitable for storing on a failed source
func (r ExtractionResult) FailureMessage(subject string) string {
	return FailureMessageFor(r.Reason(), subject)
}

// FailureMessageFor renders the stored failure message for a reason
func FailureMessageFor(reason FailureReason, subject string) string {
	switch reason {
	case FailureURLUnreachable:
		return fmt.Sprintf("Could not extract text from %s: the address could not be reached.", subject)
	case FailureFileUnprocessable:
		return fmt.Sprintf("Could not extract text from %s: the file could not be processed.", subject)
	}
	return ""
}

// ExtractFileInput carries an encoded file
type ExtractFileInput struct {
	DataURI string `validate:"required,startswith=data:"`
}

type extractFileOutput struct {
	Content string `json:"content"`
}

var extractFileSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"content": map[string]any{"type": "STRING", "description": "The extracted text content from the file."},
	},
	"required": []string{"content"},
}

// ExtractFromFile extracts text from a data URI encoded file. It never
// returns an error; failures come back as the failure variant.
func (f *Flows) ExtractFromFile(ctx context.Context, in ExtractFileInput) ExtractionResult {
	fail := func(err error) ExtractionResult {
		f.logger.Sugar().Warnw("file extraction failed", "error", err)
		return ExtractionResult{
			Content: SentinelFileUnprocessable,
			Failure: &ExtractionFailure{Reason: FailureFileUnprocessable, Message: SentinelFileUnprocessable, Cause: err},
		}
	}

	mediaType, data, err := ParseDataURI(in.DataURI)
	if err != nil {
		return fail(err)
	}

	out, err := newPrompt[ExtractFileInput, extractFileOutput](f, PromptExtractFile, extractFileSchema).
		run(ctx, in, ports.MediaPart(mediaType, data))
	if err != nil {
		return fail(err)
	}
	return ExtractionResult{Content: out.Content}
}

// ExtractURLInput carries a web page or video address
type ExtractURLInput struct {
	URL string `validate:"required,http_url"`
}

type extractURLOutput struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

var extractURLSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"name":    map[string]any{"type": "STRING", "description": "The title of the page or video."},
		"content": map[string]any{"type": "STRING", "description": "The extracted text content from the URL."},
	},
	"required": []string{"name", "content"},
}

// ExtractFromURL extracts a title and text (a transcript for videos) from
// an address. Failures return the URL as name and the failure variant.
func (f *Flows) ExtractFromURL(ctx context.Context, in ExtractURLInput) ExtractionResult {
	out, err := newPrompt[ExtractURLInput, extractURLOutput](f, PromptExtractURL, extractURLSchema).run(ctx, in)
	if err != nil {
		f.logger.Sugar().Warnw("url extraction failed", "url", in.URL, "error", err)
		return ExtractionResult{
			Name:    in.URL,
			Content: SentinelURLUnreachable,
			Failure: &ExtractionFailure{Reason: FailureURLUnreachable, Message: SentinelURLUnreachable, Cause: err},
		}
	}
	return ExtractionResult{Name: out.Name, Content: out.Content}
}
