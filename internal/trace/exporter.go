package trace

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/kerraform/kota"

type ExporterType string

const (
	ExporterTypeConsole ExporterType = "console"
)

func NewConsoleExporter(w io.Writer) (sdktrace.SpanExporter, error) {
	return stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
		stdouttrace.WithoutTimestamps(),
	)
}

// Provider owns the tracer handed to drivers and the fetcher.
type Provider struct {
	provider trace.TracerProvider
	shutdown func(context.Context) error
}

type ProviderConfig struct {
	Enable bool
	Type   ExporterType
	Writer io.Writer
}

func NewProvider(cfg *ProviderConfig) (*Provider, error) {
	if !cfg.Enable {
		return &Provider{
			provider: noop.NewTracerProvider(),
			shutdown: func(context.Context) error { return nil },
		}, nil
	}

	var exp sdktrace.SpanExporter
	var err error
	switch cfg.Type {
	case ExporterTypeConsole:
		exp, err = NewConsoleExporter(cfg.Writer)
	default:
		return nil, fmt.Errorf("no valid trace exporter specified, got: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	return &Provider{
		provider: tp,
		shutdown: tp.Shutdown,
	}, nil
}

func (p *Provider) Tracer() trace.Tracer {
	return p.provider.Tracer(tracerName)
}

func (p *Provider) Shutdown(ctx context.Context) error {
	return p.shutdown(ctx)
}
