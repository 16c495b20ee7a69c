// Package gemini adapts the Gemini generateContent REST API to the model port.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Sk16er/Scholar-chat/application/ports"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"go.uber.org/zap"
)

var _ ports.ModelClient = (*Client)(nil)

// Default configuration values
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// responses larger than this are rejected
	maxResponseBytes = 64 << 20
)

// Config holds the Gemini connection settings
type Config struct {
	APIKey  string
	BaseURL string
	// Timeout bounds each call; zero means no limit
	Timeout time.Duration
}

// Client calls models:generateContent
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type generationConfig struct {
	ResponseMimeType   string         `json:"responseMimeType,omitempty"`
	ResponseSchema     map[string]any `json:"responseSchema,omitempty"`
	ResponseModalities []string       `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig  `json:"speechConfig,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type responsePart struct {
	Text       string `json:"text"`
	InlineData *struct {
		MimeType string `json:"mimeType"`
		Data     string `json:"data"`
	} `json:"inlineData"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []responsePart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewClient creates a Gemini client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		logger:  logger,
	}, nil
}

// Generate sends one request and returns the first candidate
func (c *Client) Generate(ctx context.Context, req ports.GenerateRequest) (*ports.GenerateResponse, error) {
	if req.Model == "" {
		return nil, pkgerrors.NewValidationError("model is required")
	}

	body, err := json.Marshal(buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, req.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.NewExternalError("gemini", fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, pkgerrors.NewExternalError("gemini", fmt.Errorf("read response: %w", err))
	}

	c.logger.Debug("Model call completed",
		zap.String("flow", req.Flow),
		zap.String("model", req.Model),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, statusError(resp.StatusCode, string(raw))
		}
		return nil, pkgerrors.NewExternalError("gemini", fmt.Errorf("decode response: %w", err))
	}
	if parsed.Error != nil {
		return nil, statusError(resp.StatusCode, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, string(raw))
	}

	return parseResponse(&parsed)
}

func buildRequest(req ports.GenerateRequest) generateRequest {
	parts := make([]part, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.IsMedia() {
			parts = append(parts, part{InlineData: &inlineData{
				MimeType: p.MediaType,
				Data:     base64.StdEncoding.EncodeToString(p.Data),
			}})
			continue
		}
		parts = append(parts, part{Text: p.Text})
	}

	out := generateRequest{Contents: []content{{Role: "user", Parts: parts}}}

	switch {
	case req.Modality == ports.ModalityAudio:
		gc := &generationConfig{ResponseModalities: []string{string(ports.ModalityAudio)}}
		if req.Voice != "" {
			gc.SpeechConfig = &speechConfig{VoiceConfig: voiceConfig{
				PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: req.Voice},
			}}
		}
		out.GenerationConfig = gc
	case req.JSON:
		out.GenerationConfig = &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   req.Schema,
		}
	}
	return out
}

func parseResponse(parsed *generateResponse) (*ports.GenerateResponse, error) {
	if len(parsed.Candidates) == 0 {
		reason := "no candidates returned"
		if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
			reason = "prompt blocked: " + parsed.PromptFeedback.BlockReason
		}
		return nil, pkgerrors.NewExternalError("gemini", fmt.Errorf("%s", reason))
	}

	out := &ports.GenerateResponse{}
	var text strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		if p.InlineData != nil && out.Media == nil {
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return nil, pkgerrors.NewExternalError("gemini", fmt.Errorf("decode inline data: %w", err))
			}
			out.MediaType = p.InlineData.MimeType
			out.Media = data
			continue
		}
		text.WriteString(p.Text)
	}
	out.Text = text.String()
	return out, nil
}

func statusError(status int, message string) error {
	return pkgerrors.NewExternalError("gemini",
		fmt.Errorf("gemini error (status %d): %s", status, strings.TrimSpace(message))).
		WithDetails(map[string]interface{}{"status": status})
}
