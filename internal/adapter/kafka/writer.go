package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/shootings-etl/internal/config"
	"github.com/couchcryptid/shootings-etl/internal/domain"
	"github.com/couchcryptid/shootings-etl/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes enriched incidents to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured incident topic.
func NewWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, metrics: metrics, logger: logger}
}

// Load publishes every incident of the partition in a single WriteMessages call.
func (w *Writer) Load(ctx context.Context, p domain.YearPartition) error {
	if len(p.Incidents) == 0 {
		return nil
	}
	processedAt := domain.Now()
	msgs := make([]kafkago.Message, len(p.Incidents))
	for i := range p.Incidents {
		msg, err := serializeToMessage(p.Incidents[i], processedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d incidents for %d: %w", len(msgs), p.Year, err)
	}
	w.metrics.MessagesProduced.Add(float64(len(msgs)))
	w.logger.Info("published year", "year", p.Year, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// incidentMessage is the JSON value of a published incident.
type incidentMessage struct {
	DCKey     string        `json:"dc_key"`
	Race      string        `json:"race"`
	Sex       string        `json:"sex"`
	Age       *float64      `json:"age"`
	Latino    *int          `json:"latino"`
	Fatal     *int          `json:"fatal"`
	Date      string        `json:"date"`
	Year      int           `json:"year"`
	AgeGroup  string        `json:"age_group"`
	Point     *domain.Point `json:"point"`
	GeoSource string        `json:"geo_source,omitempty"`
}

// serializeToMessage marshals an Incident into a Kafka message keyed by dc_key.
func serializeToMessage(inc domain.Incident, processedAt time.Time) (kafkago.Message, error) {
	msg := incidentMessage{
		DCKey:     inc.DCKey,
		Race:      inc.Race,
		Sex:       inc.Sex,
		Latino:    inc.Latino,
		Fatal:     inc.Fatal,
		Date:      inc.Date.Format(domain.DateLayout),
		Year:      inc.Year,
		AgeGroup:  string(inc.AgeGroup),
		Point:     inc.Point,
		GeoSource: inc.GeoSource,
	}
	if inc.HasAge() {
		age := inc.Age
		msg.Age = &age
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize incident: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(inc.DCKey),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "year", Value: []byte(strconv.Itoa(inc.Year))},
			{Key: "processed_at", Value: []byte(processedAt.Format(time.RFC3339))},
		},
	}, nil
}
