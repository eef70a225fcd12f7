// Package handlerwrapper adapts typed, side-effect free event handlers to
// watermill. A handler receives a decoded payload and returns the messages it
// wants published; the wrapper owns decoding, tracing, correlation and
// publishing.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/pug-bot/app/shared/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type ctxKey string

// CtxKeyReplyTo carries the reply_to metadata of the incoming message, when set.
const CtxKeyReplyTo ctxKey = "reply_to"

// MetadataReplyTo is the metadata key requesters use to ask for a direct reply.
const MetadataReplyTo = "reply_to"

// Result is a message a handler wants published.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// HandlerFunc is the signature of a typed handler.
type HandlerFunc[T any] func(ctx context.Context, payload *T) ([]Result, error)

// WrapTransformingTyped decodes the message payload into T, runs handler and
// publishes its results with the incoming correlation ID. Payloads that fail to
// decode are logged and acked; retrying them cannot succeed.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	publisher message.Publisher,
	handler HandlerFunc[T],
) message.NoPublishHandlerFunc {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(handlerName)
	}

	return func(msg *message.Message) error {
		correlationID := middleware.MessageCorrelationID(msg)
		if correlationID == "" {
			correlationID = watermill.NewUUID()
		}

		ctx := attr.WithCorrelationID(msg.Context(), correlationID)
		if replyTo := msg.Metadata.Get(MetadataReplyTo); replyTo != "" {
			ctx = context.WithValue(ctx, CtxKeyReplyTo, replyTo)
		}

		ctx, span := tracer.Start(ctx, handlerName, trace.WithAttributes(
			attribute.String("message.uuid", msg.UUID),
			attribute.String("correlation_id", correlationID),
		))
		defer span.End()

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Failed to unmarshal payload",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_uuid", msg.UUID),
				attr.Error(err),
			)
			span.SetStatus(codes.Error, "unmarshal failed")
			return nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("%s: %w", handlerName, err)
		}

		for _, r := range results {
			out, err := NewMessage(ctx, r)
			if err != nil {
				span.RecordError(err)
				return fmt.Errorf("%s: %w", handlerName, err)
			}
			if err := publisher.Publish(r.Topic, out); err != nil {
				span.RecordError(err)
				return fmt.Errorf("%s: failed to publish to %s: %w", handlerName, r.Topic, err)
			}
			logger.DebugContext(ctx, "Published handler result",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("topic", r.Topic),
			)
		}
		return nil
	}
}

// NewMessage encodes a Result as a watermill message carrying the correlation
// ID found in ctx.
func NewMessage(ctx context.Context, r Result) (*message.Message, error) {
	body, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for %s: %w", r.Topic, err)
	}

	out := message.NewMessage(watermill.NewUUID(), body)
	for k, v := range r.Metadata {
		out.Metadata.Set(k, v)
	}
	out.Metadata.Set("topic", r.Topic)
	if id := attr.CorrelationID(ctx); id != "" {
		middleware.SetCorrelationID(id, out)
	}
	return out, nil
}
