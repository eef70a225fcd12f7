package pugrouter

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/pug-bot/app/eventbus"
	pugservice "github.com/Black-And-White-Club/pug-bot/app/modules/pug/application"
	pugdomain "github.com/Black-And-White-Club/pug-bot/app/modules/pug/domain"
	pugevents "github.com/Black-And-White-Club/pug-bot/app/modules/pug/events"
	pughandlers "github.com/Black-And-White-Club/pug-bot/app/modules/pug/infrastructure/handlers"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestJoinCommandRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger := slog.Default()
	tracer := noop.NewTracerProvider().Tracer("test")
	bus := eventbus.NewInMemoryEventBus(logger)
	defer bus.Close()

	svc, err := pugservice.NewPugService(pugservice.Options{
		Game: pugdomain.GameConfig{MaxMembers: 4, NumCaptains: 2, TeamSize: 2},
	}, nil, logger, nil, tracer, nil)
	require.NoError(t, err)

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	require.NoError(t, err)
	router.AddMiddleware(middleware.CorrelationID)

	r := NewPugRouter(logger, router, bus, bus, tracer)
	require.NoError(t, r.Configure(ctx, pughandlers.NewPugHandlers(svc, logger, tracer, nil, nil)))

	notifications, err := bus.Subscribe(ctx, pugevents.NotificationV1)
	require.NoError(t, err)

	go func() { _ = router.Run(ctx) }()
	defer r.Close()
	select {
	case <-router.Running():
	case <-ctx.Done():
		t.Fatal("router did not start")
	}

	body, err := json.Marshal(pugevents.PlayerCommandPayloadV1{
		Player:    pugdomain.Player{ID: "alice", Name: "Alice"},
		ChannelID: "c1",
	})
	require.NoError(t, err)
	in := message.NewMessage(watermill.NewUUID(), body)
	middleware.SetCorrelationID("corr-1", in)
	require.NoError(t, bus.Publish(pugevents.JoinRequestedV1, in))

	select {
	case msg := <-notifications:
		msg.Ack()
		assert.Equal(t, "corr-1", middleware.MessageCorrelationID(msg))

		var got pugevents.NotificationPayloadV1
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, pugdomain.KindQueueProgress, got.Notification.Kind)
		assert.Equal(t, "1 of 4 users in queue", got.Notification.Footer)
		assert.Equal(t, "c1", got.ChannelID)
	case <-ctx.Done():
		t.Fatal("no notification published")
	}

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Len(t, status.Members, 1)
}
