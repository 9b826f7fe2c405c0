package events

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type stubWriter struct {
	messages []kafka.Message
	err      error
}

func (s *stubWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msgs...)
	return nil
}

func (s *stubWriter) Close() error { return nil }

func TestPublishActivityCreated(t *testing.T) {
	writer := &stubWriter{}
	publisher := &KafkaPublisher{writer: writer, logger: log.Default()}

	err := publisher.PublishActivityCreated(context.Background(), ActivityCreated{
		UserID:          "user-1",
		ActivityID:      123,
		SportType:       "Run",
		DurationMinutes: 30,
		Source:          "prompt",
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	require.Equal(t, []byte("user-1"), msg.Key)

	var decoded ActivityCreated
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	require.Equal(t, int64(123), decoded.ActivityID)
	require.NotEmpty(t, decoded.EventID)
	require.False(t, decoded.CreatedAt.IsZero())

	require.Equal(t, "event_type", msg.Headers[0].Key)
	require.Equal(t, "activity.created", string(msg.Headers[0].Value))
}

func TestPublishPropagatesWriterError(t *testing.T) {
	writer := &stubWriter{err: errors.New("broker down")}
	publisher := &KafkaPublisher{writer: writer, logger: log.Default()}

	err := publisher.PublishActivityCreated(context.Background(), ActivityCreated{UserID: "user-1"})
	require.Error(t, err)
}
