package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/clima-backend/internal/models"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaFeedbackPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaFeedbackPublisher{writer: w}

	id := primitive.NewObjectID()
	ts := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	rec := models.Feedback{
		ID:          id,
		Impact:      "transport",
		Career:      "Ingenieria de Sistemas",
		Feedback:    "Llegué tarde",
		Suggestion:  "Transporte propio",
		Timestamp:   ts,
		WeatherData: &models.WeatherSnapshot{Temperature: 27, Condition: "Lluvia", Humidity: 90},
	}

	require.NoError(t, p.Publish(context.Background(), rec))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, id.Hex(), string(msg.Key))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, FeedbackSubmittedEvent, headers["event_type"])
	assert.Equal(t, "2025-03-10T14:30:00Z", headers["submitted_at"])

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, id.Hex(), body["id"])
	assert.Equal(t, "transport", body["impact"])
	assert.NotContains(t, body, "feedback")
	assert.NotContains(t, body, "suggestion")
	assert.Contains(t, body, "weatherData")
}

func TestKafkaFeedbackPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := &KafkaFeedbackPublisher{writer: w}

	err := p.Publish(context.Background(), models.Feedback{ID: primitive.NewObjectID(), Impact: "health"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaFeedbackPublisher_FlushesEachMessage(t *testing.T) {
	p := NewKafkaFeedbackPublisher([]string{"localhost:9092"}, "")
	t.Cleanup(func() { _ = p.Close() })

	w, ok := p.writer.(*kafkago.Writer)
	require.True(t, ok)
	assert.Equal(t, DefaultFeedbackTopic, w.Topic)
	assert.Equal(t, 1, w.BatchSize)
	assert.LessOrEqual(t, w.BatchTimeout, 10*time.Millisecond)
	assert.Positive(t, w.BatchTimeout)
	assert.LessOrEqual(t, w.WriteTimeout, 2*time.Second)
}
