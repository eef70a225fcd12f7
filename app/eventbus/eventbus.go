package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventBus publishes and subscribes watermill messages.
type EventBus interface {
	Publish(topic string, messages ...*message.Message) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

// Config selects the transport.
type Config struct {
	// URL of the NATS server. Empty selects the in-process bus.
	URL string
	// JetStream enables persistent delivery through a JetStream stream.
	JetStream bool
	// StreamName and Subjects describe the stream provisioned at startup.
	StreamName string
	Subjects   []string
	// QueueGroup load-balances subscriptions across replicas.
	QueueGroup string
}

type natsBus struct {
	publisher  *nats.Publisher
	subscriber *nats.Subscriber
	conn       *nc.Conn
	logger     *slog.Logger
}

// NewEventBus connects to NATS, or builds an in-process bus when no URL is configured.
func NewEventBus(ctx context.Context, cfg Config, logger *slog.Logger) (EventBus, error) {
	if cfg.URL == "" {
		logger.InfoContext(ctx, "No NATS URL configured, using in-process event bus")
		return NewInMemoryEventBus(logger), nil
	}

	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.MaxReconnects(-1),
		nc.ReconnectWait(2 * time.Second),
		nc.Timeout(30 * time.Second),
		nc.DisconnectErrHandler(func(_ *nc.Conn, err error) {
			if err != nil {
				logger.Warn("Disconnected from NATS", slog.Any("error", err))
			}
		}),
		nc.ReconnectHandler(func(conn *nc.Conn) {
			logger.Info("Reconnected to NATS", slog.String("url", conn.ConnectedUrl()))
		}),
	}

	conn, err := nc.Connect(cfg.URL, options...)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to NATS", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	if cfg.JetStream {
		js, err := jetstream.New(conn)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
		}
		if err := EnsureStream(ctx, js, cfg.StreamName, cfg.Subjects, logger); err != nil {
			conn.Close()
			return nil, err
		}
	}

	jsConfig := nats.JetStreamConfig{
		Disabled:      !cfg.JetStream,
		AutoProvision: false,
		SubscribeOptions: []nc.SubOpt{
			nc.DeliverNew(),
			nc.AckExplicit(),
		},
		DurablePrefix: cfg.QueueGroup,
	}

	wmLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:               cfg.URL,
			NatsOptions:       options,
			Marshaler:         marshaler,
			JetStream:         jsConfig,
			SubjectCalculator: nats.DefaultSubjectCalculator,
		},
		wmLogger,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:               cfg.URL,
			QueueGroupPrefix:  cfg.QueueGroup,
			SubscribersCount:  1,
			AckWaitTimeout:    30 * time.Second,
			NatsOptions:       options,
			Unmarshaler:       marshaler,
			JetStream:         jsConfig,
			SubjectCalculator: nats.DefaultSubjectCalculator,
		},
		wmLogger,
	)
	if err != nil {
		_ = publisher.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	logger.InfoContext(ctx, "Connected to NATS",
		slog.String("url", conn.ConnectedUrl()),
		slog.Bool("jetstream", cfg.JetStream),
	)

	return &natsBus{
		publisher:  publisher,
		subscriber: subscriber,
		conn:       conn,
		logger:     logger,
	}, nil
}

func (b *natsBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
	}
	return b.publisher.Publish(topic, messages...)
}

func (b *natsBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	msgs, err := b.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	b.logger.Info("Subscription started", slog.String("topic", topic))
	return msgs, nil
}

// Close closes the publisher, the subscriber and the NATS connection.
func (b *natsBus) Close() error {
	if err := b.publisher.Close(); err != nil {
		b.logger.Error("Error closing NATS publisher", slog.Any("error", err))
	}
	if err := b.subscriber.Close(); err != nil {
		b.logger.Error("Error closing NATS subscriber", slog.Any("error", err))
	}
	b.conn.Close()
	return nil
}

// NewInMemoryEventBus returns a bus backed by a watermill GoChannel. Messages
// never leave the process.
func NewInMemoryEventBus(logger *slog.Logger) EventBus {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(logger),
	)
}
