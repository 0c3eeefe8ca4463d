package queue

import (
    "context"
    "encoding/json"
    "log/slog"
    "net"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/hotel-booking-engine/internal/service"
)

// Publisher publishes confirmations to RabbitMQ.  It dials per message;
// confirmation volume is low and a broken connection never outlives a
// single booking.
type Publisher struct {
    url         string
    dialTimeout time.Duration
    log         *slog.Logger
}

var _ service.Notifier = (*Publisher)(nil)

func NewPublisher(url string, log *slog.Logger) *Publisher {
    return &Publisher{url: url, dialTimeout: 3 * time.Second, log: log}
}

// ReservationConfirmed implements service.Notifier.  Errors are logged
// and returned so the caller can ignore them.  Messages are persistent.
func (p *Publisher) ReservationConfirmed(ctx context.Context, n service.ReservationNotice) error {
    body, err := json.Marshal(EventFromNotice(n))
    if err != nil {
        p.log.Error("rabbitmq: marshal event failed", "err", err)
        return err
    }

    conn, err := amqp.DialConfig(p.url, amqp.Config{
        Dial: func(network, addr string) (net.Conn, error) {
            return net.DialTimeout(network, addr, p.dialTimeout)
        },
    })
    if err != nil {
        p.log.Warn("rabbitmq: dial failed", "err", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.log.Warn("rabbitmq: channel open failed", "err", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(ReservationConfirmedQueue, true, false, false, false, nil); err != nil {
        p.log.Warn("rabbitmq: queue declare failed", "err", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        MessageId:    n.ReferenceNumber,
        Body:         body,
    }
    ctx, cancel := context.WithTimeout(ctx, p.dialTimeout)
    defer cancel()
    if err := ch.PublishWithContext(ctx, "", ReservationConfirmedQueue, false, false, pub); err != nil {
        p.log.Warn("rabbitmq: publish failed", "err", err)
        return err
    }
    return nil
}
