package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/kerraform/kota/internal/driver"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

type DriverConfig struct {
	RootPath string
	Logger   *zap.Logger
	Tracer   trace.Tracer
}

type local struct {
	logger   *zap.Logger
	rootPath string
	tracer   trace.Tracer
}

var _ driver.Driver = (*local)(nil)

func NewDriver(cfg *DriverConfig) driver.Driver {
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &local{
		logger:   logger,
		rootPath: cfg.RootPath,
		tracer:   tracer,
	}
}

func (d *local) GetSnapshot(ctx context.Context, digest string) (io.ReadCloser, error) {
	_, span := d.tracer.Start(ctx, "GetSnapshot")
	defer span.End()
	span.SetAttributes(attribute.String("digest", digest))

	key, err := driver.SnapshotKey(digest)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(d.rootPath, filepath.FromSlash(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, driver.ErrSnapshotNotExist
		}
		return nil, err
	}

	return f, nil
}

func (d *local) ListSnapshots(ctx context.Context) ([]string, error) {
	_, span := d.tracer.Start(ctx, "ListSnapshots")
	defer span.End()

	dir := filepath.Join(d.rootPath, driver.SnapshotRootPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}

	digests := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			d.logger.Debug("skip directory in snapshot root", zap.String("name", e.Name()))
			continue
		}

		digest, ok := driver.DigestFromKey(driver.SnapshotRootPath + "/" + e.Name())
		if !ok {
			d.logger.Debug("skip file in snapshot root", zap.String("name", e.Name()))
			continue
		}
		digests = append(digests, digest)
	}

	sort.Strings(digests)
	d.logger.Debug("found snapshots", zap.String("path", dir), zap.Int("count", len(digests)))
	return digests, nil
}

func (d *local) SaveSnapshot(ctx context.Context, digest string, body io.Reader) error {
	_, span := d.tracer.Start(ctx, "SaveSnapshot")
	defer span.End()
	span.SetAttributes(attribute.String("digest", digest))

	key, err := driver.SnapshotKey(digest)
	if err != nil {
		return err
	}

	dst := filepath.Join(d.rootPath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".snapshot-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return err
	}

	d.logger.Debug("saved snapshot", zap.String("path", dst))
	return nil
}
