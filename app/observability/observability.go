// Package observability builds the logger, tracer and metrics registry shared
// by every module.
package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	pugmetrics "github.com/Black-And-White-Club/pug-bot/app/modules/pug/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
)

// Config describes the observability setup.
type Config struct {
	ServiceName  string
	Environment  string
	Version      string
	LogLevel     string
	OTLPEndpoint string
	SampleRate   float64
	// Output defaults to os.Stdout.
	Output io.Writer
}

// Provider owns the process-wide logger and tracer provider.
type Provider struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	shutdown       func(context.Context) error
}

// Registry holds the instruments handed to modules.
type Registry struct {
	Tracer     trace.Tracer
	Prometheus *prometheus.Registry
	PugMetrics pugmetrics.PugMetrics
}

// Observability bundles Provider and Registry.
type Observability struct {
	Provider *Provider
	Registry *Registry
}

// Init builds the logger, the tracer provider and the metrics registry.
func Init(ctx context.Context, cfg Config) (*Observability, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "pug-bot"
	}

	logger := NewLogger(cfg)

	tp, shutdown, err := NewTracerProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	logger.InfoContext(ctx, "Observability initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing", cfg.OTLPEndpoint != ""),
	)

	return &Observability{
		Provider: &Provider{
			Logger:         logger,
			TracerProvider: tp,
			shutdown:       shutdown,
		},
		Registry: &Registry{
			Tracer:     tp.Tracer(cfg.ServiceName),
			Prometheus: reg,
			PugMetrics: pugmetrics.NewPrometheus(reg),
		},
	}, nil
}

// NewLogger returns a JSON logger writing to cfg.Output at cfg.LogLevel.
func NewLogger(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})

	logger := slog.New(handler).With(slog.String("service", cfg.ServiceName))
	if cfg.Environment != "" {
		logger = logger.With(slog.String("env", cfg.Environment))
	}
	if cfg.Version != "" {
		logger = logger.With(slog.String("version", cfg.Version))
	}
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MetricsHandler serves the Prometheus registry.
func (o *Observability) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(o.Registry.Prometheus, promhttp.HandlerOpts{})
}

// Shutdown flushes pending spans.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o.Provider == nil || o.Provider.shutdown == nil {
		return nil
	}
	if err := o.Provider.shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
