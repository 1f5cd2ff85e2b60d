package queue

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// silentBroker accepts connections and never answers the AMQP handshake.
func silentBroker(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	var conns []net.Conn
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, c)
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		<-done
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return "amqp://guest:guest@" + ln.Addr().String() + "/"
}

func TestPublishGivesUpOnSilentBroker(t *testing.T) {
	p := NewPublisher(silentBroker(t)).WithDialTimeout(200 * time.Millisecond)

	start := time.Now()
	err := p.PublishOrderPlaced(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestPublishHonoursContextDeadline(t *testing.T) {
	p := NewPublisher(silentBroker(t))

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := p.PublishOrderPlaced(ctx, sampleEvent())
	require.Error(t, err)
	assert.Less(t, time.Since(start), DefaultDialTimeout)
}

func TestPublishExpiredContext(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	err := NewPublisher("amqp://127.0.0.1:1/").PublishOrderPlaced(ctx, sampleEvent())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
