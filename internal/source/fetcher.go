package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const (
	defaultMaxBytes  = 16 << 20
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "kota"
)

var (
	ErrMalformedJSON    = errors.New("response body is not valid json")
	ErrResponseTooLarge = errors.New("response body exceeds size limit")
)

// StatusError is returned when the remote answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch: %s", e.Status)
}

type Fetcher struct {
	client *resty.Client
	logger *zap.Logger
	tracer trace.Tracer
}

type FetcherConfig struct {
	HTTPClient *http.Client
	Logger     *zap.Logger

	// MaxBytes caps the response body size. Zero means the default of 16 MiB.
	MaxBytes  int
	Timeout   time.Duration
	Tracer    trace.Tracer
	UserAgent string
}

func NewFetcher(cfg *FetcherConfig) *Fetcher {
	if cfg == nil {
		cfg = &FetcherConfig{}
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}

	client := resty.NewWithClient(hc).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetResponseBodyLimit(maxBytes).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", ua)

	return &Fetcher{
		client: client,
		logger: logger,
		tracer: tracer,
	}
}

// Fetch downloads the JSON document at u, rewriting GitHub blob URLs to
// their raw form first. Failures are logged and returned; nothing is retried.
func (f *Fetcher) Fetch(ctx context.Context, u string) ([]byte, error) {
	ctx, span := f.tracer.Start(ctx, "Fetch")
	defer span.End()

	body, err := f.get(ctx, span, u)
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		f.logger.Error("failed to parse document", zap.String("url", RawGitHubURL(u)), zap.Int("bytes", len(body)), zap.Error(ErrMalformedJSON))
		span.SetStatus(codes.Error, ErrMalformedJSON.Error())
		return nil, ErrMalformedJSON
	}

	return body, nil
}

// FetchSignature downloads the armored detached signature at u. The body is
// returned as is.
func (f *Fetcher) FetchSignature(ctx context.Context, u string) ([]byte, error) {
	ctx, span := f.tracer.Start(ctx, "FetchSignature")
	defer span.End()

	return f.get(ctx, span, u)
}

func (f *Fetcher) get(ctx context.Context, span trace.Span, u string) ([]byte, error) {
	target := RawGitHubURL(u)
	span.SetAttributes(attribute.String("url", target))

	l := f.logger.With(zap.String("url", target))
	if target != u {
		l.Debug("rewrote github blob url", zap.String("original", u))
	}

	resp, err := f.client.R().
		SetContext(ctx).
		Get(target)
	if errors.Is(err, resty.ErrResponseBodyTooLarge) {
		l.Error("failed to fetch document", zap.Error(ErrResponseTooLarge))
		span.SetStatus(codes.Error, ErrResponseTooLarge.Error())
		return nil, fmt.Errorf("fetch %s: %w", target, ErrResponseTooLarge)
	}
	if err != nil {
		l.Error("failed to fetch document", zap.Error(err))
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}

	span.SetAttributes(attribute.Int("status", resp.StatusCode()))
	if !resp.IsSuccess() {
		serr := &StatusError{
			URL:        target,
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
		}
		l.Error("failed to fetch document", zap.Int("statusCode", resp.StatusCode()), zap.Error(serr))
		span.SetStatus(codes.Error, serr.Error())
		return nil, serr
	}

	body := resp.Body()
	l.Debug("fetched document", zap.Int("bytes", len(body)))
	return body, nil
}
