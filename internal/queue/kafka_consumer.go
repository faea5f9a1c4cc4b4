package queue

import (
	"context"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// KafkaConsumer reads reservation events from a topic as part of a
// consumer group.
type KafkaConsumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler sarama.ConsumerGroupHandler
	log     *zap.SugaredLogger
}

// NewKafkaConsumer joins groupID on brokers.  New groups start at the newest
// offset.
func NewKafkaConsumer(brokers []string, groupID, topic string, rec *Recorder, log *zap.SugaredLogger) (*KafkaConsumer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	if topic == "" {
		topic = ReservationQueue
	}
	return &KafkaConsumer{
		group:   group,
		topic:   topic,
		handler: &recordHandler{rec: rec, log: log},
		log:     log,
	}, nil
}

// Start consumes until ctx is cancelled.  Consume returns on every group
// rebalance, so it is called in a loop.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.log.Infow("starting kafka consumer", "topic", c.topic)
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, c.handler); err != nil {
			c.log.Errorw("kafka consumer error", "topic", c.topic, "error", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *KafkaConsumer) Close() error { return c.group.Close() }

type recordHandler struct {
	rec *Recorder
	log *zap.SugaredLogger
}

func (h *recordHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *recordHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks every message, including ones that fail to decode, so a
// poison message is logged once and skipped.
func (h *recordHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.rec.HandleMessage(msg.Value); err != nil {
				h.log.Errorw("kafka consumer: handle message failed", "partition", msg.Partition, "offset", msg.Offset, "error", err)
			}
			sess.MarkMessage(msg, "")
		case <-sess.Context().Done():
			return nil
		}
	}
}
