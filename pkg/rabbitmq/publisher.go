package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"video-library/config"
	"video-library/constant"
	"video-library/dto"
)

// Publisher announces finished uploads to downstream processors.
type Publisher interface {
	PublishUpload(ctx context.Context, event dto.UploadEvent) error
}

type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type publisher struct {
	open func() (channel, error)
	cfg  *config.RabbitMQ
}

func NewPublisher(conn *amqp.Connection, cfg *config.RabbitMQ) Publisher {
	return &publisher{
		open: func() (channel, error) { return conn.Channel() },
		cfg:  cfg,
	}
}

// A channel per publish keeps the publisher safe for concurrent requests; uploads are rare enough for the cost.
func (p *publisher) PublishUpload(ctx context.Context, event dto.UploadEvent) error {
	ch, err := p.open()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(p.cfg.ExchangeName, p.cfg.Kind, true, false, false, false, nil)
	if err != nil {
		zerolog.Ctx(ctx).Error().Str("exchange", p.cfg.ExchangeName).Msg("failed to declare exchange")
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, p.cfg.ExchangeName, p.cfg.RoutingKey, false, false, amqp.Publishing{
		ContentType:  constant.ContentTypeJSON,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("video_id", event.VideoID).
		Str("exchange", p.cfg.ExchangeName).
		Str("routing_key", p.cfg.RoutingKey).
		Msg("upload event published")
	return nil
}
