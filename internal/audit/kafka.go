package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink publishes audit events to a Kafka topic, keyed by shipment hash
// so all events for one shipment land on one partition in order.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// NewKafkaSink connects to the brokers and ensures the topic exists.
func NewKafkaSink(ctx context.Context, brokers []string, topic string) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !kerr.IsRetriable(r.Err) && r.Err != kerr.TopicAlreadyExists {
			client.Close()
			return nil, fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}

	return &KafkaSink{client: client, topic: topic}, nil
}

// payload is the JSON structure published to Kafka.
type payload struct {
	ID           string `json:"id"`
	Timestamp    string `json:"timestamp"`
	ActorID      string `json:"actor_id,omitempty"`
	Role         string `json:"role,omitempty"`
	Action       string `json:"action"`
	ShipmentHash string `json:"shipment_hash,omitempty"`
	ContainerID  string `json:"container_id,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Concern      string `json:"concern,omitempty"`
}

// Publish produces the event synchronously so worker backpressure reflects
// broker health.
func (s *KafkaSink) Publish(ctx context.Context, event Event) error {
	p := payload{
		ID:           event.ID.String(),
		Timestamp:    event.Timestamp.Format(time.RFC3339Nano),
		Action:       event.Action,
		ShipmentHash: string(event.ShipmentHash),
		ContainerID:  string(event.ContainerID),
		Reason:       event.Reason,
		Concern:      event.Concern,
		Role:         string(event.Role),
	}
	if !event.Actor.IsNil() {
		p.ActorID = event.Actor.String()
	}

	value, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.ShipmentHash),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying client.
func (s *KafkaSink) Close() {
	s.client.Close()
}
