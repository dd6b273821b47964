package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

const (
    dialTimeout   = 2 * time.Second
    redialBackoff = 5 * time.Second
)

// ErrBrokerBackoff is returned while a failed dial is cooling down.
var ErrBrokerBackoff = errors.New("rabbitmq: broker unavailable, retry pending")

var now = time.Now

// Publisher publishes a JSON message to the named durable queue.
type Publisher interface {
    Publish(ctx context.Context, queue string, msg any) error
}

// Nop discards every message.  It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

// AMQPPublisher keeps one connection and channel open and redials lazily
// after the broker drops them.
type AMQPPublisher struct {
    url string
    log *zap.Logger

    mu       sync.Mutex
    conn     *amqp.Connection
    ch       *amqp.Channel
    declared map[string]bool
    retryAt  time.Time
}

// NewAMQPPublisher returns a publisher for url.  No connection is made until
// the first Publish.
func NewAMQPPublisher(url string, log *zap.Logger) *AMQPPublisher {
    return &AMQPPublisher{url: url, log: log, declared: map[string]bool{}}
}

// channel returns an open channel, dialing when needed.  After a failed
// dial no new attempt is made for redialBackoff.  Callers hold mu.
func (p *AMQPPublisher) channel(ctx context.Context) (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
        return p.ch, nil
    }
    p.reset()
    if now().Before(p.retryAt) {
        return nil, ErrBrokerBackoff
    }
    conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: dialContext(ctx)})
    if err != nil {
        p.retryAt = now().Add(redialBackoff)
        return nil, fmt.Errorf("rabbitmq dial: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        p.retryAt = now().Add(redialBackoff)
        return nil, fmt.Errorf("rabbitmq channel: %w", err)
    }
    p.conn, p.ch = conn, ch
    p.declared = map[string]bool{}
    p.retryAt = time.Time{}
    return ch, nil
}

// dialContext connects within ctx and bounds the AMQP handshake by the
// earlier of ctx's deadline and dialTimeout.  The client clears the
// deadline once the connection is open.
func dialContext(ctx context.Context) func(network, addr string) (net.Conn, error) {
    return func(network, addr string) (net.Conn, error) {
        deadline := now().Add(dialTimeout)
        if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
            deadline = d
        }
        dialer := net.Dialer{Deadline: deadline}
        conn, err := dialer.DialContext(ctx, network, addr)
        if err != nil {
            return nil, err
        }
        if err := conn.SetDeadline(deadline); err != nil {
            _ = conn.Close()
            return nil, err
        }
        return conn, nil
    }
}

func (p *AMQPPublisher) reset() {
    if p.ch != nil {
        _ = p.ch.Close()
    }
    if p.conn != nil {
        _ = p.conn.Close()
    }
    p.ch, p.conn = nil, nil
}

// Publish marshals msg and publishes it as a persistent message.  Errors are
// logged and returned; callers treat publishing as best effort.
func (p *AMQPPublisher) Publish(ctx context.Context, queue string, msg any) error {
    body, err := json.Marshal(msg)
    if err != nil {
        p.log.Error("rabbitmq: marshal message failed", zap.String("queue", queue), zap.Error(err))
        return err
    }

    p.mu.Lock()
    defer p.mu.Unlock()

    ch, err := p.channel(ctx)
    if errors.Is(err, ErrBrokerBackoff) {
        return err
    }
    if err != nil {
        p.log.Warn("rabbitmq: unavailable", zap.Error(err))
        return err
    }
    if !p.declared[queue] {
        // durable, not auto-deleted, not exclusive
        if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
            p.log.Error("rabbitmq: queue declare failed", zap.String("queue", queue), zap.Error(err))
            p.reset()
            return err
        }
        p.declared[queue] = true
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
        p.log.Error("rabbitmq: publish failed", zap.String("queue", queue), zap.Error(err))
        p.reset()
        return err
    }
    return nil
}

// Close releases the connection.
func (p *AMQPPublisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.reset()
    return nil
}
