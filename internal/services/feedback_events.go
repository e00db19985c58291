package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/AnshRaj112/clima-backend/internal/models"
)

const (
	// DefaultFeedbackTopic receives one message per stored submission.
	DefaultFeedbackTopic = "feedback-submitted"

	// FeedbackSubmittedEvent is the event_type header value.
	FeedbackSubmittedEvent = "feedback.submitted"

	// One message per submission; flush it without waiting for a batch.
	publishBatchSize    = 1
	publishBatchTimeout = 10 * time.Millisecond
	publishWriteTimeout = 2 * time.Second
)

// FeedbackPublisher announces stored submissions to downstream consumers.
type FeedbackPublisher interface {
	Publish(ctx context.Context, record models.Feedback) error
	Close() error
}

var (
	_ FeedbackPublisher = NoopFeedbackPublisher{}
	_ FeedbackPublisher = (*KafkaFeedbackPublisher)(nil)
)

// NoopFeedbackPublisher is used when no brokers are configured.
type NoopFeedbackPublisher struct{}

func (NoopFeedbackPublisher) Publish(context.Context, models.Feedback) error { return nil }
func (NoopFeedbackPublisher) Close() error { return nil }

// FeedbackSubmitted is the message body. It leaves out the free text so the
// topic only carries what analytics consumers need.
type FeedbackSubmitted struct {
	ID          string                  `json:"id"`
	Impact      string                  `json:"impact"`
	Career      string                  `json:"career,omitempty"`
	Timestamp   time.Time               `json:"timestamp"`
	WeatherData *models.WeatherSnapshot `json:"weatherData,omitempty"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaFeedbackPublisher produces FeedbackSubmitted messages.
type KafkaFeedbackPublisher struct {
	writer messageWriter
}

// NewKafkaFeedbackPublisher creates a producer for topic.
func NewKafkaFeedbackPublisher(brokers []string, topic string) *KafkaFeedbackPublisher {
	if topic == "" {
		topic = DefaultFeedbackTopic
	}
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		BatchSize:              publishBatchSize,
		BatchTimeout:           publishBatchTimeout,
		WriteTimeout:           publishWriteTimeout,
	}
	return &KafkaFeedbackPublisher{writer: w}
}

func (p *KafkaFeedbackPublisher) Publish(ctx context.Context, record models.Feedback) error {
	msg, err := feedbackMessage(record)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish feedback %s: %w", record.ID.Hex(), err)
	}
	return nil
}

func (p *KafkaFeedbackPublisher) Close() error {
	return p.writer.Close()
}

func feedbackMessage(record models.Feedback) (kafkago.Message, error) {
	data, err := json.Marshal(FeedbackSubmitted{
		ID:          record.ID.Hex(),
		Impact:      record.Impact,
		Career:      record.Career,
		Timestamp:   record.Timestamp,
		WeatherData: record.WeatherData,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize feedback event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(record.ID.Hex()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(FeedbackSubmittedEvent)},
			{Key: "submitted_at", Value: []byte(record.Timestamp.UTC().Format(time.RFC3339))},
		},
	}, nil
}
