package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

// OutboxTopicPublisher публикует outbox-сообщения в заданный Kafka topic.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
	now      func() time.Time
}

// NewOutboxPublisher создаёт Kafka-паблишер для transactional outbox.
func NewOutboxPublisher(producer *Producer, topic string) *OutboxTopicPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OutboxTopicPublisher{
		producer: producer,
		topic:    topic,
		now:      time.Now,
	}
}

// Topic возвращает топик публикации.
func (p *OutboxTopicPublisher) Topic() string {
	return p.topic
}

// Publish отправляет событие; ключ сообщения: aggregate id ("<userId>/<orderId>"),
// поэтому события одного заказа попадают в одну партицию по порядку.
func (p *OutboxTopicPublisher) Publish(ctx context.Context, event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not initialized")
	}

	key := event.AggregateID
	if key == "" {
		key = event.ID
	}

	headers := map[string]string{
		HeaderEventID:       event.ID,
		HeaderEventType:     event.EventType,
		HeaderAggregateType: event.AggregateType,
	}

	return p.producer.PublishEvent(ctx, p.topic, key, NewEnvelope(event, p.now()), headers)
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
