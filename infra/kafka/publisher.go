// Package kafka publishes trip plan summaries to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kilianp07/evroute/core/factory"
	"github.com/kilianp07/evroute/core/monitoring"
	"github.com/kilianp07/evroute/core/notify"
	"github.com/kilianp07/evroute/infra/logger"
)

// DefaultTopic receives plan messages when none is configured.
const DefaultTopic = "evroute.plans"

// Config defines the Kafka writer settings.
type Config struct {
	Brokers      []string `json:"brokers"`
	Topic        string   `json:"topic"`
	RequiredAcks int      `json:"required_acks"`
	BatchTimeout string   `json:"batch_timeout"`
}

// messageWriter is the subset of kafka.Writer used by the publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// PlanPublisher writes one message per plan, keyed by vehicle so plans of
// the same model land on the same partition.
type PlanPublisher struct {
	w     messageWriter
	topic string
	log   logger.Logger
}

func init() {
	_ = notify.RegisterPublisher("kafka", func(conf map[string]any) (notify.Publisher, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPlanPublisher(c)
	})
}

// NewPlanPublisher builds a synchronous writer for cfg.
func NewPlanPublisher(cfg Config) (*PlanPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker is required")
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	acks := kafkago.RequireOne
	switch cfg.RequiredAcks {
	case 0, 1:
	case -1:
		acks = kafkago.RequireAll
	default:
		return nil, fmt.Errorf("kafka: required_acks must be -1, 0 or 1")
	}
	batch := 10 * time.Millisecond
	if cfg.BatchTimeout != "" {
		d, err := time.ParseDuration(cfg.BatchTimeout)
		if err != nil {
			return nil, fmt.Errorf("kafka: batch_timeout: %w", err)
		}
		batch = d
	}
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           acks,
		BatchTimeout:           batch,
		AllowAutoTopicCreation: true,
	}
	return newWithWriter(w, cfg.Topic), nil
}

func newWithWriter(w messageWriter, topic string) *PlanPublisher {
	return &PlanPublisher{w: w, topic: topic, log: logger.New("kafka_publisher")}
}

// Publish writes msg as JSON.
func (p *PlanPublisher) Publish(ctx context.Context, msg notify.PlanMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	m := kafkago.Message{
		Key:   []byte(msg.Vehicle),
		Value: payload,
		Time:  msg.CreatedAt,
		Headers: []kafkago.Header{
			{Key: "plan_id", Value: []byte(msg.PlanID)},
		},
	}
	if err := p.w.WriteMessages(ctx, m); err != nil {
		monitoring.CaptureException(err, map[string]string{"module": "kafka", "plan_id": msg.PlanID})
		return fmt.Errorf("kafka publish %s: %w", p.topic, err)
	}
	p.log.Debugf("published plan %s to %s", msg.PlanID, p.topic)
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *PlanPublisher) Close() error { return p.w.Close() }
