package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"cloud.google.com/go/storage"
	"github.com/kerraform/kota/internal/driver"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	gOption "google.golang.org/api/option"
)

const contentTypeJSON = "application/json"

type DriverOpts struct {
	Bucket            string
	Endpoint          string
	ServiceAccountKey string
	Tracer            trace.Tracer

	// WithoutAuthentication is meant for emulators.
	WithoutAuthentication bool
}

type gcsDriver struct {
	bucket string
	gcs    *storage.Client
	logger *zap.Logger
	tracer trace.Tracer
}

var _ driver.Driver = (*gcsDriver)(nil)

func NewDriver(ctx context.Context, logger *zap.Logger, opts *DriverOpts) (driver.Driver, error) {
	if opts == nil || opts.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}

	gOptions := []gOption.ClientOption{}

	if key := opts.ServiceAccountKey; key != "" {
		gOptions = append(gOptions, gOption.WithCredentialsFile(key))
	}

	if opts.Endpoint != "" {
		gOptions = append(gOptions, gOption.WithEndpoint(opts.Endpoint))
	}

	if opts.WithoutAuthentication {
		gOptions = append(gOptions, gOption.WithoutAuthentication())
	}

	c, err := storage.NewClient(ctx, gOptions...)
	if err != nil {
		return nil, err
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}

	return &gcsDriver{
		bucket: opts.Bucket,
		gcs:    c,
		logger: logger,
		tracer: tracer,
	}, nil
}

func (d *gcsDriver) GetSnapshot(ctx context.Context, digest string) (io.ReadCloser, error) {
	ctx, span := d.tracer.Start(ctx, "GetSnapshot")
	defer span.End()
	span.SetAttributes(attribute.String("digest", digest))

	key, err := driver.SnapshotKey(digest)
	if err != nil {
		return nil, err
	}

	r, err := d.Bucket().Object(key).NewReader(ctx)
	if err != nil {
		return nil, handleError(err)
	}

	return r, nil
}

func (d *gcsDriver) ListSnapshots(ctx context.Context) ([]string, error) {
	ctx, span := d.tracer.Start(ctx, "ListSnapshots")
	defer span.End()

	it := d.Bucket().Objects(ctx, &storage.Query{
		Prefix: driver.SnapshotRootPath + "/",
	})

	digests := []string{}
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}

		digest, ok := driver.DigestFromKey(attrs.Name)
		if !ok {
			d.logger.Debug("skip object in snapshot prefix", zap.String("key", attrs.Name))
			continue
		}
		digests = append(digests, digest)
	}

	sort.Strings(digests)
	d.logger.Debug("found snapshots", zap.String("bucket", d.bucket), zap.Int("count", len(digests)))
	return digests, nil
}

func (d *gcsDriver) SaveSnapshot(ctx context.Context, digest string, body io.Reader) error {
	ctx, span := d.tracer.Start(ctx, "SaveSnapshot")
	defer span.End()
	span.SetAttributes(attribute.String("digest", digest))

	key, err := driver.SnapshotKey(digest)
	if err != nil {
		return err
	}

	// Cancelling the writer context aborts the upload; Close would commit it.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := d.Bucket().Object(key).NewWriter(wctx)
	w.ContentType = contentTypeJSON
	if _, err := io.Copy(w, body); err != nil {
		cancel()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		return err
	}

	d.logger.Debug("saved snapshot", zap.String("bucket", d.bucket), zap.String("key", key))
	return nil
}

func (d *gcsDriver) Bucket() *storage.BucketHandle {
	return d.gcs.Bucket(d.bucket)
}

func handleError(err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return driver.ErrSnapshotNotExist
	}
	return err
}
