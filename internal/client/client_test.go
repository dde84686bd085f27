package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/kerraform/kota/internal/digest"
	"github.com/kerraform/kota/internal/driver/local"
	"github.com/kerraform/kota/internal/metric"
	"github.com/kerraform/kota/internal/schema"
	"github.com/kerraform/kota/internal/server"
	"github.com/kerraform/kota/internal/source"
	v1 "github.com/kerraform/kota/internal/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const series = `[{"date":"2025-03-08","datetime":1741392000,"files":[{"filename":"lineage-22.1-20250308-nightly-renoir-signed.zip","size":1288490188,"url":"https://mirror.example/lineage.zip"}],"version":"22.1"}]`

func newTestClient(t *testing.T) (*Client, *httptest.Server) {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/renoir.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(series))
	}))
	t.Cleanup(upstream.Close)

	linter, err := schema.NewLinter()
	require.NoError(t, err)

	m := metric.New()
	svr := server.NewServer(&server.ServerConfig{
		Logger: zap.NewNop(),
		Metric: m,
		V1: v1.New(&v1.HandlerConfig{
			Driver:  local.NewDriver(&local.DriverConfig{RootPath: t.TempDir()}),
			Fetcher: source.NewFetcher(&source.FetcherConfig{HTTPClient: upstream.Client()}),
			Linter:  linter,
			Metric:  m,
		}),
	})

	api := httptest.NewServer(svr.Handler())
	t.Cleanup(api.Close)

	u, err := url.Parse(api.URL)
	require.NoError(t, err)
	return New(u, WithHTTPClient(api.Client()), WithUserAgent("kota-cli-test")), upstream
}

func TestSnapshotRoundTrip(t *testing.T) {
	c, upstream := newTestClient(t)
	ctx := context.Background()

	digests, err := c.Snapshot.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, digests)

	created, err := c.Snapshot.Create(ctx, upstream.URL+"/renoir.json", "")
	require.NoError(t, err)
	assert.True(t, digest.Valid(created.ID))
	assert.Equal(t, v1.DataTypeOTASnapshots, created.Type)
	assert.True(t, created.Attributes.Recognized)

	digests, err = c.Snapshot.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{created.ID}, digests)

	var buf bytes.Buffer
	require.NoError(t, c.Snapshot.Get(ctx, created.ID, &buf))

	d, err := digest.Of(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, created.ID, d)
}

func TestAPIError(t *testing.T) {
	c, upstream := newTestClient(t)
	ctx := context.Background()

	err := c.Snapshot.Get(ctx, strings.Repeat("f", 64), &bytes.Buffer{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "snapshot not exist", apiErr.Message)

	_, err = c.Snapshot.Create(ctx, upstream.URL+"/missing.json", "")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestNewRequest(t *testing.T) {
	u, err := url.Parse("https://kota.example")
	require.NoError(t, err)
	c := New(u, WithUserAgent("kota-cli"))

	req, err := c.NewPostRequest("/v1/snapshots", map[string]string{"url": "https://x/a?b=<c>"})
	require.NoError(t, err)
	assert.Equal(t, "https://kota.example/v1/snapshots", req.URL.String())
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "kota-cli", req.Header.Get("User-Agent"))

	var body bytes.Buffer
	_, err = body.ReadFrom(req.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"url":"https://x/a?b=<c>"}`+"\n", body.String())
}

func TestAPIErrorMessage(t *testing.T) {
	assert.Equal(t, "kota api: Bad Gateway", (&APIError{StatusCode: http.StatusBadGateway}).Error())
	assert.Equal(t, "kota api: boom (500)", (&APIError{StatusCode: 500, Message: "boom"}).Error())
}
