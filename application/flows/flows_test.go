package flows

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/Sk16er/Scholar-chat/application/ports"
	"github.com/Sk16er/Scholar-chat/application/ports/mocks"
	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFlows(client ports.ModelClient) *Flows {
	return New(client, nil, Config{}, zap.NewNop())
}

func textReply(s string) *ports.GenerateResponse {
	return &ports.GenerateResponse{Text: s}
}

func forFlow(name string) interface{} {
	return mock.MatchedBy(func(req ports.GenerateRequest) bool { return req.Flow == name })
}

func TestDefaultPromptsEmbedded(t *testing.T) {
	prompts := DefaultPrompts()
	for _, name := range []string{PromptSummarize, PromptAnswer, PromptMindMap, PromptExtractFile, PromptExtractURL} {
		assert.Contains(t, prompts, name)
	}
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockModelClient)
	client.On("Generate", ctx, mock.MatchedBy(func(req ports.GenerateRequest) bool {
		return req.Flow == FlowSummarize && req.JSON && req.Model == DefaultConfig().TextModel &&
			strings.Contains(req.Parts[0].Text, "Title: Paper")
	})).Return(textReply(`{"summary":"A short summary."}`), nil)

	out, err := newTestFlows(client).Summarize(ctx, SummarizeInput{Title: "Paper", Text: "body"})

	require.NoError(t, err)
	assert.Equal(t, "A short summary.", out.Summary)
	assert.Equal(t, SummaryProgress, out.Progress)
	client.AssertExpectations(t)
}

func TestSummarize_RejectsEmptyInput(t *testing.T) {
	client := new(mocks.MockModelClient)

	_, err := newTestFlows(client).Summarize(context.Background(), SummarizeInput{Title: "Paper"})

	assert.True(t, pkgerrors.IsValidation(err))
	client.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestSummarize_ContractViolation(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockModelClient)
	client.On("Generate", ctx, forFlow(FlowSummarize)).Return(textReply(`{"summary":""}`), nil)

	_, err := newTestFlows(client).Summarize(ctx, SummarizeInput{Title: "t", Text: "x"})

	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeContractViolation, appErr.Code)
}

func TestSummarize_StripsCodeFence(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockModelClient)
	client.On("Generate", ctx, forFlow(FlowSummarize)).
		Return(textReply("```json\n{\"summary\":\"fenced\"}\n```"), nil)

	out, err := newTestFlows(client).Summarize(ctx, SummarizeInput{Title: "t", Text: "x"})

	require.NoError(t, err)
	assert.Equal(t, "fenced", out.Summary)
}

func TestAnswer(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockModelClient)
	client.On("Generate", ctx, mock.MatchedBy(func(req ports.GenerateRequest) bool {
		return req.Flow == FlowAnswer && strings.Contains(req.Parts[0].Text, "SOURCE:src_1 PAGE:1")
	})).Return(textReply(`{"answer":"RAG grounds answers.","citations":[{"sourceId":"src_1","page":1,"snippet":"grounds"}]}`), nil)

	out, err := newTestFlows(client).Answer(ctx, AnswerInput{
		Query:    "What is RAG?",
		Passages: []Passage{{SourceID: "src_1", Page: 1, Text: "RAG grounds answers."}},
	})

	require.NoError(t, err)
	assert.Equal(t, "RAG grounds answers.", out.Answer)
	require.Len(t, out.Citations, 1)
	assert.Equal(t, "src_1", out.Citations[0].SourceID)
}

func TestAnswer_NilCitationsBecomeEmpty(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockModelClient)
	client.On("Generate", ctx, forFlow(FlowAnswer)).Return(textReply(`{"answer":"`+RefusalAnswer+`"}`), nil)

	out, err := newTestFlows(client).Answer(ctx, AnswerInput{Query: "q"})

	require.NoError(t, err)
	assert.NotNil(t, out.Citations)
	assert.Empty(t, out.Citations)
}

func TestAnswer_PropagatesUpstreamError(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockModelClient)
	upstream := pkgerrors.NewUnavailableError("model")
	client.On("Generate", ctx, forFlow(FlowAnswer)).Return(nil, upstream)

	_, err := newTestFlows(client).Answer(ctx, AnswerInput{Query: "q"})

	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
}

func TestGenerateMindMap_NoSourcesShortCircuits(t *testing.T) {
	client := new(mocks.MockModelClient)

	m, err := newTestFlows(client).GenerateMindMap(context.Background(), MindMapInput{})

	require.NoError(t, err)
	assert.Empty(t, m.Nodes())
	client.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerateMindMap(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockModelClient)
	client.On("Generate", ctx, forFlow(FlowMindMap)).Return(textReply(`{
		"nodes":[{"id":"src_1","label":"Paper","type":"source"},{"id":"rag","label":"RAG","type":"concept"}],
		"edges":[{"id":"src_1-rag","from":"src_1","to":"rag","label":"mentions"}]}`), nil)

	m, err := newTestFlows(client).GenerateMindMap(ctx, MindMapInput{
		Sources: []MindMapSource{{ID: "src_1", Name: "Paper", Content: "text"}},
	})

	require.NoError(t, err)
	require.Len(t, m.Nodes(), 2)
	assert.Equal(t, valueobjects.NodeTypeSource, m.Nodes()[0].Type)
	assert.Len(t, m.Edges(), 1)
}

func TestGenerateMindMap_DanglingEdge(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockModelClient)
	client.On("Generate", ctx, forFlow(FlowMindMap)).Return(textReply(`{
		"nodes":[{"id":"src_1","label":"Paper","type":"source"}],
		"edges":[{"id":"e","from":"src_1","to":"ghost"}]}`), nil)

	_, err := newTestFlows(client).GenerateMindMap(ctx, MindMapInput{
		Sources: []MindMapSource{{ID: "src_1", Name: "Paper"}},
	})

	assert.True(t, pkgerrors.IsExternal(err))
	assert.Equal(t, pkgerrors.CodeContractViolation, pkgerrors.GetAppError(err).Code)
}

func TestExtractFromFile(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockModelClient)
	client.On("Generate", ctx, mock.MatchedBy(func(req ports.GenerateRequest) bool {
		return req.Flow == FlowExtractFile && len(req.Parts) == 2 &&
			req.Parts[1].MediaType == "text/plain" && string(req.Parts[1].Data) == "hello"
	})).Return(textReply(`{"content":"hello"}`), nil)

	res := newTestFlows(client).ExtractFromFile(ctx, ExtractFileInput{DataURI: EncodeDataURI("text/plain", []byte("hello"))})

	assert.False(t, res.Failed())
	assert.Equal(t, "hello", res.Content)
}

func TestExtractFromFile_FailureVariant(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockModelClient)
	client.On("Generate", ctx, forFlow(FlowExtractFile)).Return(nil, errors.New("boom"))

	res := newTestFlows(client).ExtractFromFile(ctx, ExtractFileInput{DataURI: EncodeDataURI("application/pdf", []byte("%PDF"))})

	assert.True(t, res.Failed())
	assert.Equal(t, FailureFileUnprocessable, res.Reason())
	assert.Equal(t, SentinelFileUnprocessable, res.Content)
	assert.Contains(t, res.FailureMessage("paper.pdf"), "paper.pdf")
}

func TestFailureMessageFor(t *testing.T) {
	assert.Equal(t, "Could not extract text from a.pdf: the file could not be processed.",
		FailureMessageFor(FailureFileUnprocessable, "a.pdf"))
	assert.Equal(t, "Could not extract text from https://x.io: the address could not be reached.",
		FailureMessageFor(FailureURLUnreachable, "https://x.io"))
	assert.Empty(t, FailureMessageFor("", "a.pdf"))
}

func TestExtractFromFile_BadDataURI(t *testing.T) {
	client := new(mocks.MockModelClient)

	res := newTestFlows(client).ExtractFromFile(context.Background(), ExtractFileInput{DataURI: "data:text/plain,hello"})

	assert.True(t, res.Failed())
	client.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestExtractFromURL_SentinelContentCountsAsFailure(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockModelClient)
	client.On("Generate", ctx, forFlow(FlowExtractURL)).
		Return(textReply(`{"name":"Example","content":"I am unable to access this URL."}`), nil)

	res := newTestFlows(client).ExtractFromURL(ctx, ExtractURLInput{URL: "https://example.com/post"})

	assert.Nil(t, res.Failure)
	assert.True(t, res.Failed())
	assert.Equal(t, FailureURLUnreachable, res.Reason())
}

func TestExtractFromURL_ErrorUsesURLAsName(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockModelClient)
	client.On("Generate", ctx, forFlow(FlowExtractURL)).Return(nil, errors.New("timeout"))

	res := newTestFlows(client).ExtractFromURL(ctx, ExtractURLInput{URL: "https://example.com/post"})

	assert.True(t, res.Failed())
	assert.Equal(t, "https://example.com/post", res.Name)
	assert.Equal(t, SentinelURLUnreachable, res.Content)
}

func TestSynthesizeAudio(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockModelClient)
	pcm := []byte{1, 0, 2, 0, 3, 0}
	client.On("Generate", ctx, mock.MatchedBy(func(req ports.GenerateRequest) bool {
		return req.Flow == FlowAudio && req.Modality == ports.ModalityAudio && req.Voice == "Algenib"
	})).Return(&ports.GenerateResponse{MediaType: "audio/L16;rate=24000", Media: pcm}, nil)

	out, err := newTestFlows(client).SynthesizeAudio(ctx, "A summary to read aloud.")

	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out.AudioDataURI, "data:audio/wav;base64,"))
	wav, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(out.AudioDataURI, "data:audio/wav;base64,"))
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(wav[:4]))
	assert.Len(t, wav, 44+len(pcm))
}

func TestSynthesizeAudio_NoMedia(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockModelClient)
	client.On("Generate", ctx, forFlow(FlowAudio)).Return(&ports.GenerateResponse{}, nil)

	_, err := newTestFlows(client).SynthesizeAudio(ctx, "text")

	assert.ErrorIs(t, err, ErrNoMedia)
}

func TestSynthesizeAudio_EmptyText(t *testing.T) {
	client := new(mocks.MockModelClient)

	_, err := newTestFlows(client).SynthesizeAudio(context.Background(), "  ")

	assert.True(t, pkgerrors.IsValidation(err))
}

func TestParseDataURI(t *testing.T) {
	mediaType, data, err := ParseDataURI("data:application/pdf;name=a.pdf;base64," + base64.StdEncoding.EncodeToString([]byte("x")))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mediaType)
	assert.Equal(t, []byte("x"), data)

	for _, bad := range []string{"", "http://x", "data:text/plain;base64", "data:;base64,AA==", "data:text/plain;base64,!!"} {
		_, _, err := ParseDataURI(bad)
		assert.Error(t, err, bad)
	}
}
