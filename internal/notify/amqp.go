package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// AMQPDispatcher publishes notifications to a direct exchange with
// persistent delivery, one routing key per category.
type AMQPDispatcher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewAMQPDispatcher(url, exchange string) (*AMQPDispatcher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening amqp channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()

		return nil, fmt.Errorf("declaring exchange: %w", err)
	}

	return &AMQPDispatcher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (d *AMQPDispatcher) Publish(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshaling notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}

	if err := d.channel.PublishWithContext(ctx, d.exchange, string(n.Category), false, false, msg); err != nil {
		return fmt.Errorf("publishing notification: %w", err)
	}

	return nil
}

func (d *AMQPDispatcher) Close() error {
	if err := d.channel.Close(); err != nil {
		d.conn.Close()
		return fmt.Errorf("closing amqp channel: %w", err)
	}

	return d.conn.Close()
}
