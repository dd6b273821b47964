package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// ActivityConsumer drains both domain queues and appends one line per
// message to <Dir>/activity.log.
type ActivityConsumer struct {
    URL string
    Dir string
    Log *zap.Logger
}

// Run consumes until ctx is cancelled, redialing with exponential backoff
// whenever the broker connection is lost.
func (c *ActivityConsumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Log.Warn("activity-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            select {
            case <-ctx.Done():
                return ctx.Err()
            case <-time.After(backoff):
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.Log.Warn("activity-consumer: consume loop ended, reconnecting", zap.Error(err))
        time.Sleep(2 * time.Second)
    }
}

func (c *ActivityConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Log.Warn("activity-consumer: set QoS failed", zap.Error(err))
    }

    type delivery struct {
        queue string
        amqp.Delivery
    }
    merged := make(chan delivery)
    for _, q := range []string{ParticipationQueue, PaymentQueue} {
        if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", q, err)
        }
        msgs, err := ch.Consume(q, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("queue consume %s: %w", q, err)
        }
        go func(q string, msgs <-chan amqp.Delivery) {
            for d := range msgs {
                merged <- delivery{queue: q, Delivery: d}
            }
        }(q, msgs)
    }

    closed := conn.NotifyClose(make(chan *amqp.Error, 1))
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case amqpErr := <-closed:
            if amqpErr != nil {
                return amqpErr
            }
            return errors.New("connection closed")
        case d := <-merged:
            if err := c.handle(d.queue, d.Body); err != nil {
                c.Log.Error("activity-consumer: handle message failed", zap.String("queue", d.queue), zap.Error(err))
                _ = d.Nack(false, false) // drop, requeueing a malformed body would loop
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (c *ActivityConsumer) handle(queue string, body []byte) error {
    line, err := FormatActivity(queue, body)
    if err != nil {
        return err
    }
    if err := os.MkdirAll(c.Dir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(c.Dir, "activity.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatActivity renders a message body as a single log line.
func FormatActivity(queue string, body []byte) (string, error) {
    switch queue {
    case ParticipationQueue:
        var ev ParticipationChanged
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        if ev.EventID == "" || ev.UserID == "" {
            return "", errors.New("participation message without event_id or user_id")
        }
        return fmt.Sprintf("[%s] Participation %s | event_id=%s | user_id=%s | status=%s | occupancy=%d\n",
            ev.OccurredAt, ev.Action, ev.EventID, ev.UserID, ev.Status, ev.Occupancy), nil
    case PaymentQueue:
        var ev PaymentReconciled
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        if ev.SessionID == "" {
            return "", errors.New("payment message without session_id")
        }
        return fmt.Sprintf("[%s] Payment %s via %s | payment_id=%s | session_id=%s | event_id=%s | user_id=%s | amount=%s\n",
            ev.OccurredAt, ev.Status, ev.Source, ev.PaymentID, ev.SessionID, ev.EventID, ev.UserID, ev.Amount), nil
    }
    return "", fmt.Errorf("unknown queue %q", queue)
}
