package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// EmailSender is the outbound mail port.
type EmailSender interface {
    SendEmail(to, subject, body string) error
}

// Consumer turns reservation.confirmed messages into guest emails.
type Consumer struct {
    url    string
    sender EmailSender
    log    *slog.Logger
}

func NewConsumer(url string, sender EmailSender, log *slog.Logger) *Consumer {
    return &Consumer{url: url, sender: sender, log: log}
}

// Run connects to RabbitMQ, declares the queue and consumes messages
// until ctx is cancelled.  Lost connections are redialled with
// exponential backoff capped at 30s.  A message that cannot be handled
// is rejected without requeue so one bad payload cannot loop forever.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if err := ctx.Err(); err != nil {
            return err
        }
        conn, err := amqp.Dial(c.url)
        if err != nil {
            c.log.Warn("confirmation-consumer: failed to dial broker", "err", err, "retry_in", backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.log.Warn("confirmation-consumer: consume loop ended; reconnecting", "err", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.log.Warn("confirmation-consumer: set QoS failed", "err", err)
    }
    if _, err := ch.QueueDeclare(ReservationConfirmedQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(ReservationConfirmedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.handleMessage(d.Body); err != nil {
                c.log.Error("confirmation-consumer: handle message failed", "err", err, "message_id", d.MessageId)
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// handleMessage emails the guest.  Events without an address are
// acknowledged and skipped.
func (c *Consumer) handleMessage(body []byte) error {
    var ev ReservationConfirmedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Email == "" {
        c.log.Info("confirmation-consumer: no email on event", "reservation_id", ev.ReservationID)
        return nil
    }
    subject, text := ConfirmationEmail(ev)
    if err := c.sender.SendEmail(ev.Email, subject, text); err != nil {
        return fmt.Errorf("send email: %w", err)
    }
    c.log.Info("confirmation-consumer: email sent", "reservation_id", ev.ReservationID, "reference", ev.ReferenceNumber)
    return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
