package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/halchash/storefront/internal/metrics"
)

// DefaultDialTimeout bounds the TCP connect and AMQP handshake of a publish.
const DefaultDialTimeout = 3 * time.Second

// Publisher sends order events to RabbitMQ, dialing once per publish.
type Publisher struct {
	url         string
	queue       string
	dialTimeout time.Duration
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url, queue: OrderPlacedQueue, dialTimeout: DefaultDialTimeout}
}

// WithDialTimeout overrides the connect and handshake bound.
func (p *Publisher) WithDialTimeout(d time.Duration) *Publisher {
	p.dialTimeout = d
	return p
}

// dial connects within the dial timeout or the context deadline, whichever
// is sooner.  amqp.Dial alone waits for the OS connect timeout.
func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, error) {
	timeout := p.dialTimeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	return amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// PublishOrderPlaced publishes ev to the order.placed queue as a persistent
// JSON message.  Errors are logged and returned so the caller can choose
// to ignore them.
func (p *Publisher) PublishOrderPlaced(ctx context.Context, ev OrderPlacedEvent) (err error) {
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
			slog.Warn("order event publish failed", "order_number", ev.OrderNumber, "error", err)
		}
		metrics.OrderEvents.WithLabelValues(result).Inc()
	}()

	conn, err := p.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
