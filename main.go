package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kerraform/kota/internal/config"
	"github.com/kerraform/kota/internal/driver"
	"github.com/kerraform/kota/internal/driver/gcs"
	"github.com/kerraform/kota/internal/driver/local"
	"github.com/kerraform/kota/internal/driver/s3"
	"github.com/kerraform/kota/internal/logging"
	"github.com/kerraform/kota/internal/metric"
	"github.com/kerraform/kota/internal/schema"
	"github.com/kerraform/kota/internal/server"
	"github.com/kerraform/kota/internal/source"
	"github.com/kerraform/kota/internal/trace"
	v1 "github.com/kerraform/kota/internal/v1"
	"github.com/kerraform/kota/internal/verify"
	"github.com/kerraform/kota/internal/version"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	exitOk = iota
	exitError
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitError)
	}

	os.Exit(exitOk)
}

func run(args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(os.Stdout, logging.Level(cfg.Log.Level), logging.Format(cfg.Log.Format))
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger = logger.With(
		zap.String("version", version.Version),
		zap.String("revision", version.Commit),
	)

	tp, err := trace.NewProvider(&trace.ProviderConfig{
		Enable: cfg.Trace.Enable,
		Type:   trace.ExporterType(cfg.Trace.Type),
		Writer: os.Stderr,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()
		if err := tp.Shutdown(sctx); err != nil {
			logger.Error("failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	logger.Info("setup backend", zap.Object("backend", cfg.Backend))
	d, err := newDriver(ctx, cfg.Backend, logger.Named("driver"), tp.Tracer())
	if err != nil {
		return err
	}

	verifier, err := newVerifier(cfg.Verify, logger.Named("verifier"))
	if err != nil {
		return err
	}

	linter, err := schema.NewLinter()
	if err != nil {
		return err
	}

	fetcher := source.NewFetcher(&source.FetcherConfig{
		Logger:    logger.Named("fetcher"),
		MaxBytes:  cfg.Fetch.MaxBytes,
		Timeout:   cfg.Fetch.Timeout,
		Tracer:    tp.Tracer(),
		UserAgent: cfg.Fetch.UserAgent,
	})

	m := metric.New()

	handler := v1.New(&v1.HandlerConfig{
		Driver:   d,
		Fetcher:  fetcher,
		Linter:   linter,
		Logger:   logger,
		Metric:   m,
		Verifier: verifier,
	})

	svr := server.NewServer(&server.ServerConfig{
		Logger: logger,
		Metric: m,
		V1:     handler,
	})

	conn, err := net.Listen("tcp", cfg.Address())
	if err != nil {
		return err
	}

	wg, ctx := errgroup.WithContext(ctx)

	logger.Info("server started", zap.Int("port", cfg.Port))
	wg.Go(func() error {
		return svr.Serve(ctx, conn)
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
	select {
	case v := <-sigCh:
		logger.Info("received signal", zap.String("signal", v.String()))
	case <-ctx.Done():
	}

	sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer scancel()
	if err := svr.Shutdown(sctx); err != nil {
		logger.Error("failed to graceful shutdown server", zap.Error(err))
		return err
	}

	return wg.Wait()
}

func newDriver(ctx context.Context, cfg *config.Backend, logger *zap.Logger, tracer oteltrace.Tracer) (driver.Driver, error) {
	switch driver.DriverType(cfg.Type) {
	case driver.DriverTypeGCS:
		return gcs.NewDriver(ctx, logger, &gcs.DriverOpts{
			Bucket:            cfg.GCS.Bucket,
			Endpoint:          cfg.GCS.Endpoint,
			ServiceAccountKey: cfg.GCS.ServiceAccountKey,
			Tracer:            tracer,
		})
	case driver.DriverTypeLocal:
		return local.NewDriver(&local.DriverConfig{
			RootPath: cfg.RootPath,
			Logger:   logger,
			Tracer:   tracer,
		}), nil
	case driver.DriverTypeS3:
		return s3.NewDriver(logger, &s3.DriverOpts{
			AccessKey:    cfg.S3.AccessKey,
			Bucket:       cfg.S3.Bucket,
			Endpoint:     cfg.S3.Endpoint,
			Region:       cfg.S3.Region,
			SecretKey:    cfg.S3.SecretKey,
			UsePathStyle: cfg.S3.UsePathStyle,
			Tracer:       tracer,
		})
	default:
		return nil, fmt.Errorf("no valid driver specified, got: %s", cfg.Type)
	}
}

// newVerifier returns nil when no keyring is configured.
func newVerifier(cfg *config.Verify, logger *zap.Logger) (*verify.Verifier, error) {
	if cfg.KeyringPath == "" {
		return nil, nil
	}

	f, err := os.Open(cfg.KeyringPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return verify.NewVerifier(f, logger)
}
