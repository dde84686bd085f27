package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/kerraform/kota/internal/digest"
)

var (
	ErrInvalidDigest    = errors.New("invalid snapshot digest")
	ErrSnapshotNotExist = errors.New("snapshot not exist")
)

const (
	SnapshotRootPath  = "snapshots"
	snapshotExtension = ".json"
)

type DriverType string

const (
	DriverTypeGCS   DriverType = "gcs"
	DriverTypeLocal DriverType = "local"
	DriverTypeS3    DriverType = "s3"
)

// Driver stores normalized documents keyed by their canonical digest.
type Driver interface {
	GetSnapshot(ctx context.Context, digest string) (io.ReadCloser, error)
	ListSnapshots(ctx context.Context) ([]string, error)
	SaveSnapshot(ctx context.Context, digest string, body io.Reader) error
}

// SnapshotKey returns the storage key of a snapshot relative to the driver
// root.
func SnapshotKey(d string) (string, error) {
	if !digest.Valid(d) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDigest, d)
	}
	return path.Join(SnapshotRootPath, d+snapshotExtension), nil
}

// DigestFromKey reverses SnapshotKey. ok is false for keys that are not
// snapshots.
func DigestFromKey(key string) (string, bool) {
	dir, file := path.Split(key)
	if path.Clean(dir) != SnapshotRootPath || path.Ext(file) != snapshotExtension {
		return "", false
	}

	d := file[:len(file)-len(snapshotExtension)]
	if !digest.Valid(d) {
		return "", false
	}
	return d, true
}
