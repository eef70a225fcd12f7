package eventbus

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventBusWithoutURLUsesInMemoryBus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus, err := NewEventBus(ctx, Config{}, slog.Default())
	require.NoError(t, err)
	defer bus.Close()

	msgs, err := bus.Subscribe(ctx, "pug.test")
	require.NoError(t, err)

	require.NoError(t, bus.Publish("pug.test", message.NewMessage(watermill.NewUUID(), []byte(`{"ok":true}`))))

	select {
	case msg := <-msgs:
		assert.JSONEq(t, `{"ok":true}`, string(msg.Payload))
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}
