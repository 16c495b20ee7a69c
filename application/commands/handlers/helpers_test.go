package handlers

import (
	"context"
	"testing"

	"github.com/Sk16er/Scholar-chat/application/commands"
	"github.com/Sk16er/Scholar-chat/application/flows"
	"github.com/Sk16er/Scholar-chat/application/ports/mocks"
	"github.com/Sk16er/Scholar-chat/domain/config"
	"github.com/Sk16er/Scholar-chat/domain/core/aggregates"
	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	"github.com/Sk16er/Scholar-chat/infrastructure/persistence/memory"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockFlows is a mock implementation of Flows
type MockFlows struct {
	mock.Mock
}

func (m *MockFlows) Summarize(ctx context.Context, in flows.SummarizeInput) (*flows.SummarizeOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flows.SummarizeOutput), args.Error(1)
}

func (m *MockFlows) Answer(ctx context.Context, in flows.AnswerInput) (*flows.AnswerOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flows.AnswerOutput), args.Error(1)
}

func (m *MockFlows) GenerateMindMap(ctx context.Context, in flows.MindMapInput) (*aggregates.MindMap, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aggregates.MindMap), args.Error(1)
}

func (m *MockFlows) ExtractFromFile(ctx context.Context, in flows.ExtractFileInput) flows.ExtractionResult {
	args := m.Called(ctx, in)
	return args.Get(0).(flows.ExtractionResult)
}

func (m *MockFlows) ExtractFromURL(ctx context.Context, in flows.ExtractURLInput) flows.ExtractionResult {
	args := m.Called(ctx, in)
	return args.Get(0).(flows.ExtractionResult)
}

func (m *MockFlows) SynthesizeAudio(ctx context.Context, text string) (*flows.AudioOutput, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flows.AudioOutput), args.Error(1)
}

type fixture struct {
	store     *memory.ProjectStore
	publisher *mocks.RecordingPublisher
	flows     *MockFlows
	cfg       *config.DomainConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	publisher := &mocks.RecordingPublisher{}
	return &fixture{
		store:     memory.NewProjectStore(memory.NewKeyedLock(nil), publisher, zap.NewNop()),
		publisher: publisher,
		flows:     new(MockFlows),
		cfg:       config.DefaultDomainConfig(),
	}
}

func (f *fixture) projects() *ProjectHandler {
	return NewProjectHandler(f.store, f.store, f.cfg, zap.NewNop())
}

func (f *fixture) createProject(t *testing.T, id, name string) valueobjects.ProjectID {
	t.Helper()
	err := f.projects().CreateProject(context.Background(), commands.CreateProjectCommand{ProjectID: id, Name: name})
	require.NoError(t, err)
	pid, err := valueobjects.NewProjectIDFromString(id)
	require.NoError(t, err)
	return pid
}

func (f *fixture) project(t *testing.T, id valueobjects.ProjectID) *aggregates.Project {
	t.Helper()
	p, err := f.store.Get(context.Background(), id)
	require.NoError(t, err)
	return p
}

// seedIndexed adds an indexed source through the orchestrator with stubbed flows
func (f *fixture) seedIndexed(t *testing.T, pid valueobjects.ProjectID, sourceID, name, content string) {
	t.Helper()
	stub := new(MockFlows)
	stub.On("ExtractFromFile", mock.Anything, mock.Anything).Return(flows.ExtractionResult{Content: content})
	stub.On("Summarize", mock.Anything, mock.Anything).Return(&flows.SummarizeOutput{Summary: "s"}, nil)

	o := NewAddSourceOrchestrator(f.store, f.store, stub, f.cfg, nil, zap.NewNop())
	err := o.Handle(context.Background(), commands.AddSourceCommand{
		ProjectID: pid.String(),
		SourceID:  sourceID,
		Kind:      "file",
		FileName:  name,
		MediaType: config.MediaTypeText,
		Data:      []byte(content),
	})
	require.NoError(t, err)
}

func mustProjectID(t *testing.T, id string) valueobjects.ProjectID {
	t.Helper()
	pid, err := valueobjects.NewProjectIDFromString(id)
	require.NoError(t, err)
	return pid
}
