package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Sk16er/Scholar-chat/domain/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockPutEventsAPI struct {
	mock.Mock
}

func (m *MockPutEventsAPI) PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventbridge.PutEventsOutput), args.Error(1)
}

func testPublisher(client PutEventsAPI) *Publisher {
	p := NewPublisher(client, "scholar-bus", zap.NewNop())
	p.backoff = time.Millisecond
	return p
}

func sampleEvents(n int) []events.DomainEvent {
	out := make([]events.DomainEvent, n)
	for i := range out {
		out[i] = events.NewSourceAdded("proj_1", "src_1", "paper.pdf", "file", i+1, time.Now())
	}
	return out
}

func TestPublisher_PublishMapsEntries(t *testing.T) {
	ctx := context.Background()
	client := new(MockPutEventsAPI)
	var captured *eventbridge.PutEventsInput
	client.On("PutEvents", ctx, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*eventbridge.PutEventsInput) }).
		Return(&eventbridge.PutEventsOutput{}, nil)

	err := testPublisher(client).Publish(ctx, sampleEvents(1)[0])

	require.NoError(t, err)
	require.Len(t, captured.Entries, 1)
	entry := captured.Entries[0]
	assert.Equal(t, "scholar-bus", aws.ToString(entry.EventBusName))
	assert.Equal(t, events.SourceService, aws.ToString(entry.Source))
	assert.Equal(t, events.TypeSourceAdded, aws.ToString(entry.DetailType))
	assert.Equal(t, []string{"scholar:project/proj_1"}, entry.Resources)

	var detail map[string]any
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, "src_1", detail["source_id"])
}

func TestPublisher_ChunksLargeBatches(t *testing.T) {
	ctx := context.Background()
	client := new(MockPutEventsAPI)
	client.On("PutEvents", ctx, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
		return len(in.Entries) <= maxBatchSize
	})).Return(&eventbridge.PutEventsOutput{}, nil)

	require.NoError(t, testPublisher(client).PublishBatch(ctx, sampleEvents(23)))

	client.AssertNumberOfCalls(t, "PutEvents", 3)
}

func TestPublisher_RetriesThenFails(t *testing.T) {
	ctx := context.Background()
	client := new(MockPutEventsAPI)
	client.On("PutEvents", ctx, mock.Anything).Return(nil, errors.New("throttled"))

	err := testPublisher(client).PublishBatch(ctx, sampleEvents(1))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	client.AssertNumberOfCalls(t, "PutEvents", 3)
}

func TestPublisher_RetrySucceeds(t *testing.T) {
	ctx := context.Background()
	client := new(MockPutEventsAPI)
	client.On("PutEvents", ctx, mock.Anything).Return(nil, errors.New("throttled")).Once()
	client.On("PutEvents", ctx, mock.Anything).Return(&eventbridge.PutEventsOutput{}, nil).Once()

	assert.NoError(t, testPublisher(client).PublishBatch(ctx, sampleEvents(2)))
	client.AssertExpectations(t)
}

func TestPublisher_PartialFailure(t *testing.T) {
	ctx := context.Background()
	client := new(MockPutEventsAPI)
	client.On("PutEvents", ctx, mock.Anything).Return(&eventbridge.PutEventsOutput{
		FailedEntryCount: 1,
		Entries: []types.PutEventsResultEntry{
			{EventId: aws.String("1")},
			{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("oops")},
		},
	}, nil)

	err := testPublisher(client).PublishBatch(ctx, sampleEvents(2))
	assert.Error(t, err)
}

func TestPublisher_EmptyBatch(t *testing.T) {
	client := new(MockPutEventsAPI)

	assert.NoError(t, testPublisher(client).PublishBatch(context.Background(), nil))
	client.AssertNotCalled(t, "PutEvents", mock.Anything, mock.Anything)
}
