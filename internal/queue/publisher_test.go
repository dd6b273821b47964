package queue

import (
    "context"
    "net"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"
)

// silentBroker accepts connections and never answers the AMQP handshake.
func silentBroker(t *testing.T) string {
    t.Helper()
    ln, err := net.Listen("tcp", "127.0.0.1:0")
    require.NoError(t, err)
    var (
        mu    sync.Mutex
        conns []net.Conn
    )
    go func() {
        for {
            c, err := ln.Accept()
            if err != nil {
                return
            }
            mu.Lock()
            conns = append(conns, c)
            mu.Unlock()
        }
    }()
    t.Cleanup(func() {
        ln.Close()
        mu.Lock()
        defer mu.Unlock()
        for _, c := range conns {
            c.Close()
        }
    })
    return "amqp://guest:guest@" + ln.Addr().String() + "/"
}

func TestPublishDoesNotStallOnHungBroker(t *testing.T) {
    p := NewAMQPPublisher(silentBroker(t), zap.NewNop())
    defer p.Close()

    start := time.Now()
    var wg sync.WaitGroup
    errs := make([]error, 3)
    for i := range errs {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
            defer cancel()
            errs[i] = p.Publish(ctx, ParticipationQueue, ParticipationChanged{EventID: "e1"})
        }(i)
    }
    wg.Wait()

    assert.Less(t, time.Since(start), time.Second)
    backoff := 0
    for _, err := range errs {
        require.Error(t, err)
        if err == ErrBrokerBackoff {
            backoff++
        }
    }
    assert.Equal(t, 2, backoff)
}

func TestPublishRedialsAfterBackoff(t *testing.T) {
    p := NewAMQPPublisher(silentBroker(t), zap.NewNop())
    defer p.Close()
    t.Cleanup(func() { now = time.Now })

    ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
    defer cancel()
    err := p.Publish(ctx, PaymentQueue, PaymentReconciled{SessionID: "cs_1"})
    require.Error(t, err)
    assert.NotErrorIs(t, err, ErrBrokerBackoff)

    assert.ErrorIs(t, p.Publish(context.Background(), PaymentQueue, PaymentReconciled{}), ErrBrokerBackoff)

    later := time.Now().Add(redialBackoff + time.Second)
    now = func() time.Time { return later }
    ctx2, cancel2 := context.WithTimeout(context.Background(), 50*time.Millisecond)
    defer cancel2()
    err = p.Publish(ctx2, PaymentQueue, PaymentReconciled{SessionID: "cs_1"})
    require.Error(t, err)
    assert.NotErrorIs(t, err, ErrBrokerBackoff)
}
