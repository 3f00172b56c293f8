package events

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChannelEventPublisher_DeliversEnvelope(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	publisher, pubSub := NewChannelEventPublisher(PublisherConfig{TopicName: "compliance", Logger: testLogger()})
	defer publisher.Close()

	messages, err := pubSub.Subscribe(ctx, "compliance")
	require.NoError(t, err)

	now := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	event := NewEvent(EventSessionCompleted, SessionCompletedEvent{
		SessionID:  "s1",
		TemplateID: "hand_hygiene",
		Samples:    3,
		Passing:    2,
	}, now)
	require.NoError(t, publisher.Publish(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, string(EventSessionCompleted), msg.Metadata.Get("event_type"))
		assert.Equal(t, EventSource, msg.Metadata.Get("source"))
		assert.Equal(t, "2024-05-02T09:30:00Z", msg.Metadata.Get("timestamp"))

		decoded, err := DecodeMessage(msg)
		require.NoError(t, err)
		assert.Equal(t, EventSessionCompleted, decoded.Type)
		data, ok := decoded.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "hand_hygiene", data["template_id"])
		assert.EqualValues(t, 3, data["samples"])
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher(testLogger())
	now := time.Now()

	require.NoError(t, mock.Publish(context.Background(), NewEvent(EventQaActionCreated, QaActionCreatedEvent{ActionID: "a1"}, now)))
	require.NoError(t, mock.Publish(context.Background(), NewEvent(EventQaActionCreated, QaActionCreatedEvent{ActionID: "a2"}, now)))
	require.NoError(t, mock.Publish(context.Background(), NewEvent(EventSessionCompleted, SessionCompletedEvent{SessionID: "s1"}, now)))

	assert.Len(t, mock.GetPublishedEvents(), 3)
	assert.Len(t, mock.EventsOfType(EventQaActionCreated), 2)

	mock.ClearEvents()
	assert.Empty(t, mock.GetPublishedEvents())
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	now := time.Now()
	a := NewEvent(EventReportGenerated, nil, now)
	b := NewEvent(EventReportGenerated, nil, now)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, EventVersion, a.Version)
}
