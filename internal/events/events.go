// Package events публикует события жизненного цикла заказа во внешнюю шину.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"requisition/internal/domain"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "events").Logger()

type Kind string

const (
	OrderCreated Kind = "created"
	OrderUpdated Kind = "updated"
	OrderDeleted Kind = "deleted"
)

// Publisher получатель событий заказов
type Publisher interface {
	Publish(ctx context.Context, kind Kind, orders ...domain.Order) error
}

// MessageWriter часть *kafka.Writer, нужная публикатору
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher пишет по сообщению на заказ с ключом order-<kind>-<id>
type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, kind Kind, orders ...domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(orders))
	for _, o := range orders {
		value, err := json.Marshal(o)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(MessageKey(kind, o.ID)),
			Value: value,
		})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		logger.Error().Err(err).Str("kind", string(kind)).Int("count", len(msgs)).Msg("publish order events")
		return err
	}
	return nil
}

func MessageKey(kind Kind, orderID string) string {
	return fmt.Sprintf("order-%s-%s", kind, orderID)
}

// Noop используется, когда брокеры не настроены
type Noop struct{}

func (Noop) Publish(context.Context, Kind, ...domain.Order) error { return nil }
