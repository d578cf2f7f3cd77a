package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/album-catalog/internal/infrastructure/mqtt"
)

// MQTTPublisher is the subset of the MQTT client used by MQTTSink.
type MQTTPublisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MQTTSink publishes events as JSON to per-type topics.
type MQTTSink struct {
	client MQTTPublisher
	topics mqtt.Topics
	qos    byte
}

// NewMQTTSink creates a sink publishing through client.
func NewMQTTSink(client MQTTPublisher, topics mqtt.Topics, qos byte) *MQTTSink {
	return &MQTTSink{client: client, topics: topics, qos: qos}
}

// Publish implements Publisher.
func (s *MQTTSink) Publish(_ context.Context, e Event) error {
	topic, err := s.topicFor(e)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	return s.client.Publish(topic, payload, s.qos, false)
}

func (s *MQTTSink) topicFor(e Event) (string, error) {
	switch {
	case e.IsAlbumEvent():
		return s.topics.AlbumEvent(string(e.Type)), nil
	case e.Type == UserRoleChanged:
		return s.topics.UserRole(e.UserID), nil
	default:
		return "", fmt.Errorf("no topic for event type %q", e.Type)
	}
}

// MetricsWriter is the subset of the InfluxDB client used by InfluxSink.
type MetricsWriter interface {
	WriteCatalogEvent(eventType, role string, albumID, userID int64, at time.Time)
}

// InfluxSink records events as time-series points. Writes are batched by
// the client, so Publish never fails.
type InfluxSink struct {
	writer MetricsWriter
}

// NewInfluxSink creates a sink writing through w.
func NewInfluxSink(w MetricsWriter) *InfluxSink {
	return &InfluxSink{writer: w}
}

// Publish implements Publisher.
func (s *InfluxSink) Publish(_ context.Context, e Event) error {
	s.writer.WriteCatalogEvent(string(e.Type), e.Role, e.AlbumID, e.UserID, e.Timestamp)
	return nil
}
