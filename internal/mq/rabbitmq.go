// Package mq schedules the auto-cancel of unpaid orders through RabbitMQ.
// Messages sit in a TTL wait queue and dead-letter into the work queue when
// the payment window expires.
package mq

import (
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	expiryExchange  = "order.expiry_exchange"
	expiredExchange = "order.expired_exchange"
	waitQueue       = "order.expiry.wait"
	workQueue       = "order.expired"
)

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	expiry  time.Duration
}

func NewRabbitMQ(url string, expiry time.Duration) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &RabbitMQ{conn: conn, channel: ch, expiry: expiry}, nil
}

func (r *RabbitMQ) SetupQueues() error {
	for _, ex := range []string{expiryExchange, expiredExchange} {
		if err := r.channel.ExchangeDeclare(
			ex,
			"direct",
			true,  // durable
			false, // auto-delete
			false, // internal
			false, // no-wait
			nil,
		); err != nil {
			return err
		}
	}

	if _, err := r.channel.QueueDeclare(
		waitQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		amqp.Table{
			"x-dead-letter-exchange":    expiredExchange,
			"x-dead-letter-routing-key": workQueue,
		},
	); err != nil {
		return err
	}
	if err := r.channel.QueueBind(waitQueue, waitQueue, expiryExchange, false, nil); err != nil {
		return err
	}

	if _, err := r.channel.QueueDeclare(workQueue, true, false, false, false, nil); err != nil {
		return err
	}
	return r.channel.QueueBind(workQueue, workQueue, expiredExchange, false, nil)
}

// PublishOrderExpiry drops the order id into the wait queue with the
// configured per-message TTL.
func (r *RabbitMQ) PublishOrderExpiry(orderID string) error {
	return r.channel.Publish(
		expiryExchange,
		waitQueue,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "text/plain",
			Body:         []byte(orderID),
			Expiration:   strconv.FormatInt(r.expiry.Milliseconds(), 10),
			Timestamp:    time.Now(),
		},
	)
}

func (r *RabbitMQ) Close() {
	if r.channel != nil {
		_ = r.channel.Close()
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
}
