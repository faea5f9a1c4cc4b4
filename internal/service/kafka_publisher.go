package service

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/iliyamo/train-seat-reservation/internal/booking"
	q "github.com/iliyamo/train-seat-reservation/internal/queue"
)

// KafkaPublisher publishes reservation events to a Kafka topic.  Messages
// are keyed by reservation id so every event of one reservation lands on the
// same partition in order.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *zap.SugaredLogger
}

// NewKafkaPublisher connects a synchronous producer to brokers.
func NewKafkaPublisher(brokers []string, topic string, log *zap.SugaredLogger) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return NewKafkaPublisherWithProducer(p, topic, log), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(p sarama.SyncProducer, topic string, log *zap.SugaredLogger) *KafkaPublisher {
	if topic == "" {
		topic = q.ReservationQueue
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &KafkaPublisher{producer: p, topic: topic, log: log}
}

func (p *KafkaPublisher) Publish(_ context.Context, ev q.ReservationEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(ev.ReservationID, 10)),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(ev.Type)},
		},
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.log.Errorw("kafka: publish failed", "topic", p.topic, "reservation_id", ev.ReservationID, "error", err)
		return err
	}
	p.log.Debugw("kafka: event published", "topic", p.topic, "partition", partition, "offset", offset, "type", ev.Type)
	return nil
}

func (p *KafkaPublisher) Close() error { return p.producer.Close() }

var _ booking.EventPublisher = (*KafkaPublisher)(nil)
