package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Sk16er/Scholar-chat/application/commands/bus"
	cmdhandlers "github.com/Sk16er/Scholar-chat/application/commands/handlers"
	"github.com/Sk16er/Scholar-chat/application/flows"
	"github.com/Sk16er/Scholar-chat/application/queries"
	querybus "github.com/Sk16er/Scholar-chat/application/queries/bus"
	queryhandlers "github.com/Sk16er/Scholar-chat/application/queries/handlers"
	"github.com/Sk16er/Scholar-chat/domain/config"
	"github.com/Sk16er/Scholar-chat/domain/core/aggregates"
	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	"github.com/Sk16er/Scholar-chat/infrastructure/persistence/memory"
	"github.com/Sk16er/Scholar-chat/interfaces/http/rest/handlers"
	"github.com/Sk16er/Scholar-chat/pkg/auth"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"github.com/Sk16er/Scholar-chat/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubFlows answers every flow deterministically
type stubFlows struct{}

func (stubFlows) Summarize(ctx context.Context, in flows.SummarizeInput) (*flows.SummarizeOutput, error) {
	return &flows.SummarizeOutput{Summary: "stub summary", Progress: flows.SummaryProgress}, nil
}

func (stubFlows) Answer(ctx context.Context, in flows.AnswerInput) (*flows.AnswerOutput, error) {
	out := &flows.AnswerOutput{Answer: "stub answer", Citations: []flows.CitationOutput{}}
	if len(in.Passages) > 0 {
		out.Citations = append(out.Citations, flows.CitationOutput{
			SourceID: in.Passages[0].SourceID,
			Page:     in.Passages[0].Page,
			Snippet:  "cited",
		})
	}
	return out, nil
}

func (stubFlows) GenerateMindMap(ctx context.Context, in flows.MindMapInput) (*aggregates.MindMap, error) {
	nodes := []aggregates.MindMapNode{{ID: "c_root", Label: "Topic", Type: valueobjects.NodeTypeConcept}}
	var edges []aggregates.MindMapEdge
	for _, s := range in.Sources {
		nodes = append(nodes, aggregates.MindMapNode{ID: s.ID, Label: s.Name, Type: valueobjects.NodeTypeSource})
		edges = append(edges, aggregates.MindMapEdge{ID: "e_" + s.ID, From: s.ID, To: "c_root"})
	}
	return aggregates.BuildMindMap(nodes, edges, nil)
}

func (stubFlows) ExtractFromFile(ctx context.Context, in flows.ExtractFileInput) flows.ExtractionResult {
	return flows.ExtractionResult{Content: "extracted text"}
}

func (stubFlows) ExtractFromURL(ctx context.Context, in flows.ExtractURLInput) flows.ExtractionResult {
	return flows.ExtractionResult{Name: "Page Title", Content: "page text"}
}

func (stubFlows) SynthesizeAudio(ctx context.Context, text string) (*flows.AudioOutput, error) {
	return &flows.AudioOutput{AudioDataURI: "data:audio/wav;base64,UklGRg=="}, nil
}

type testServer struct {
	handler      http.Handler
	store        *memory.ProjectStore
	orchestrator *cmdhandlers.AddSourceOrchestrator
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	logger := zap.NewNop()
	cfg := config.DefaultDomainConfig()

	store := memory.NewProjectStore(nil, nil, logger)
	store.Seed(context.Background(), memory.DemoProjects(cfg))

	f := stubFlows{}
	orchestrator := cmdhandlers.NewAddSourceOrchestrator(store, store, f, cfg, nil, logger)
	h := &cmdhandlers.Handlers{
		Projects:  cmdhandlers.NewProjectHandler(store, store, cfg, logger),
		Sources:   orchestrator,
		Summaries: cmdhandlers.NewSummaryHandler(store, f, cfg, logger),
		MindMaps:  cmdhandlers.NewMindMapHandler(store, f, logger),
		Chat:      cmdhandlers.NewChatHandler(store, f, cfg, nil, logger),
	}
	cb := bus.NewCommandBus()
	require.NoError(t, h.Register(cb))

	qb := querybus.NewQueryBus()
	require.NoError(t, queryhandlers.NewProjectQueryHandler(store, store, logger).Register(qb))

	metrics := observability.NewCollector("resttest")
	router := NewRouter(cb, qb, pkgerrors.NewErrorHandler(logger, false), metrics, opts, logger)
	return &testServer{handler: router.Setup(), store: store, orchestrator: orchestrator}
}

func (s *testServer) do(t *testing.T, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) upload(t *testing.T, path, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) waitIngestion(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.orchestrator.Wait(ctx))
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	assert.True(t, envelope.Success)
	return envelope.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) pkgerrors.ErrorResponse {
	t.Helper()
	var resp pkgerrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestHealthAndReadiness(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadinessFailure(t *testing.T) {
	s := newTestServer(t, Options{Ready: func() error { return assert.AnError }})

	rec := s.do(t, http.MethodGet, "/ready", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestProjectLifecycle(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(t, http.MethodGet, "/api/v1/projects", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeData[queries.ListProjectsResult](t, rec)
	assert.Equal(t, 2, list.TotalCount)
	assert.Equal(t, "proj_1", list.ActiveProjectID)

	rec = s.do(t, http.MethodPost, "/api/v1/projects", `{"name":"Thesis"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeData[queries.ProjectView](t, rec)
	assert.Equal(t, "Thesis", created.Name)
	assert.True(t, strings.HasPrefix(created.ID, valueobjects.ProjectIDPrefix))
	assert.Equal(t, config.DefaultDomainConfig().PlaceholderSummary, created.Summary)

	rec = s.do(t, http.MethodGet, "/api/v1/workspace", "")
	ws := decodeData[queries.WorkspaceView](t, rec)
	assert.Equal(t, created.ID, ws.ActiveProjectID)

	rec = s.do(t, http.MethodPost, "/api/v1/projects/proj_2/select", "")
	require.Equal(t, http.StatusOK, rec.Code)
	ws = decodeData[queries.WorkspaceView](t, rec)
	assert.Equal(t, "proj_2", ws.ActiveProjectID)

	rec = s.do(t, http.MethodDelete, "/api/v1/projects/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/projects/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(pkgerrors.ErrorTypeNotFound), decodeError(t, rec).Type)
}

func TestCreateProject_RejectsUnknownFields(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(t, http.MethodPost, "/api/v1/projects", `{"title":"x"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.ErrorTypeValidation), decodeError(t, rec).Type)
}

func TestSendMessage(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(t, http.MethodPost, "/api/v1/projects/proj_1/messages", `{"text":"What is RAG?"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeData[handlers.SendMessageResponse](t, rec)
	assert.Equal(t, "conv_1", resp.ConversationID)
	require.NotNil(t, resp.UserMessage)
	assert.Equal(t, "What is RAG?", resp.UserMessage.Text)
	require.NotNil(t, resp.Reply)
	assert.Equal(t, "stub answer", resp.Reply.Text)
	require.Len(t, resp.Reply.Citations, 1)
	require.NotNil(t, resp.Reply.Citations[0].Source)
	assert.Equal(t, "RAG System Design.pdf", resp.Reply.Citations[0].Source.Name)

	rec = s.do(t, http.MethodGet, "/api/v1/projects/proj_1/messages", "")
	conv := decodeData[queries.ConversationView](t, rec)
	assert.Len(t, conv.Messages, 3)
}

func TestSendMessage_EmptyProjectGetsUploadHint(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(t, http.MethodPost, "/api/v1/projects/proj_2/messages", `{"text":"Hello?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), config.MsgUploadBeforeAsking)

	rec = s.do(t, http.MethodPost, "/api/v1/projects/proj_2/messages", `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadFile(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.upload(t, "/api/v1/projects/proj_2/sources", "notes.txt", []byte("some notes"))

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	placeholder := decodeData[queries.SourceView](t, rec)
	assert.Equal(t, "notes.txt", placeholder.Name)
	assert.Equal(t, config.MediaTypeText, placeholder.MediaType)

	s.waitIngestion(t)

	rec = s.do(t, http.MethodGet, "/api/v1/projects/proj_2/sources/"+placeholder.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	src := decodeData[queries.SourceView](t, rec)
	assert.Equal(t, "indexed", src.Status)
	assert.Equal(t, "extracted text", src.Content)

	rec = s.do(t, http.MethodGet, "/api/v1/projects/proj_2", "")
	project := decodeData[queries.ProjectView](t, rec)
	assert.Equal(t, "Summary for notes.txt: stub summary", project.Summary)
	assert.False(t, project.Uploading)
}

func TestUploadFile_UnsupportedType(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.upload(t, "/api/v1/projects/proj_2/sources", "picture.png", []byte{0x89, 'P', 'N', 'G'})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, pkgerrors.CodeUnsupportedMedia, resp.Code)
	assert.Equal(t, config.MsgUnsupportedFileType, resp.Message)
}

func TestUploadFile_TooLarge(t *testing.T) {
	s := newTestServer(t, Options{MaxUploadBytes: 8})

	rec := s.upload(t, "/api/v1/projects/proj_2/sources", "notes.txt", []byte("more than eight bytes"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddWebsiteSource(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(t, http.MethodPost, "/api/v1/projects/proj_2/sources", `{"url":"https://example.com/a","kind":"website"}`)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	placeholder := decodeData[queries.SourceView](t, rec)
	assert.Equal(t, "https://example.com/a", placeholder.URL)
	s.waitIngestion(t)

	rec = s.do(t, http.MethodGet, "/api/v1/projects/proj_2/sources/"+placeholder.ID, "")
	src := decodeData[queries.SourceView](t, rec)
	assert.Equal(t, "Page Title", src.Name)

	rec = s.do(t, http.MethodPost, "/api/v1/projects/proj_2/sources", `{"url":"not a url","kind":"website"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSourceSelectionAndDeletion(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(t, http.MethodPost, "/api/v1/projects/proj_1/sources/src_rag_system/select", "")
	require.Equal(t, http.StatusOK, rec.Code)
	ws := decodeData[queries.WorkspaceView](t, rec)
	assert.Equal(t, "src_rag_system", ws.ActiveSourceID)

	rec = s.do(t, http.MethodDelete, "/api/v1/projects/proj_1/sources/src_rag_system", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/workspace", "")
	ws = decodeData[queries.WorkspaceView](t, rec)
	assert.Empty(t, ws.ActiveSourceID)

	rec = s.do(t, http.MethodGet, "/api/v1/projects/proj_1/sources/src_rag_system", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSummaryAudioAndMindMap(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(t, http.MethodPost, "/api/v1/projects/proj_2/audio", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, config.MsgSummaryFirst, decodeError(t, rec).Message)

	rec = s.do(t, http.MethodPost, "/api/v1/projects/proj_2/summary", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, config.MsgUploadFirst, decodeError(t, rec).Message)

	rec = s.do(t, http.MethodPost, "/api/v1/projects/proj_1/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stub summary", decodeData[queries.ProjectView](t, rec).Summary)

	rec = s.do(t, http.MethodPost, "/api/v1/projects/proj_1/audio", "")
	require.Equal(t, http.StatusOK, rec.Code)
	audio := decodeData[handlers.AudioOverviewResponse](t, rec)
	assert.Equal(t, "proj_1", audio.ProjectID)
	assert.True(t, strings.HasPrefix(audio.AudioOverview, "data:audio/wav;base64,"))

	rec = s.do(t, http.MethodGet, "/api/v1/projects/proj_1/mindmap", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[queries.MindMapView](t, rec).Nodes)

	rec = s.do(t, http.MethodPost, "/api/v1/projects/proj_1/mindmap", "")
	require.Equal(t, http.StatusOK, rec.Code)
	m := decodeData[queries.MindMapView](t, rec)
	assert.Len(t, m.Nodes, 3)
	assert.Len(t, m.Edges, 2)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(t, http.MethodGet, "/api/v2/nothing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthentication(t *testing.T) {
	validator, err := auth.NewJWTValidator("test-secret", "scholar")
	require.NoError(t, err)
	s := newTestServer(t, Options{Validator: validator})

	rec := s.do(t, http.MethodGet, "/api/v1/projects", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	gen, err := auth.NewJWTGenerator("test-secret", "scholar", time.Hour)
	require.NoError(t, err)
	token, err := gen.GenerateToken("user-1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	ok := httptest.NewRecorder()
	s.handler.ServeHTTP(ok, req)
	assert.Equal(t, http.StatusOK, ok.Code)

	rec = s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code, "health stays public")
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, Options{RateLimitRPS: 0.001, RateLimitBurst: 1})

	first := s.do(t, http.MethodGet, "/health", "")
	second := s.do(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
