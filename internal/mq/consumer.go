package mq

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ExpiryHandler is called once per expired order. order.Service.Expire
// satisfies it.
type ExpiryHandler func(ctx context.Context, orderID string) error

// StartExpiryConsumer drains the expired-order queue until the channel is
// closed. Handler errors requeue the message once via Nack.
func (r *RabbitMQ) StartExpiryConsumer(handler ExpiryHandler, log *zap.Logger) error {
	msgs, err := r.channel.Consume(
		workQueue,
		"storefront-expiry", // consumer tag
		false,               // auto-ack
		false,               // exclusive
		false,               // no-local
		false,               // no-wait
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			orderID := string(msg.Body)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := handler(ctx, orderID)
			cancel()
			if err != nil {
				log.Error("expire order", zap.String("order_id", orderID), zap.Error(err))
				_ = msg.Nack(false, !msg.Redelivered)
				continue
			}
			_ = msg.Ack(false)
		}
	}()
	return nil
}
