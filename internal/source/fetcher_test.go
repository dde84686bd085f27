package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRawGitHubURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{
			"https://github.com/LineageOS/android_updater/blob/lineage-22.1/ota.json",
			"https://raw.githubusercontent.com/LineageOS/android_updater/refs/heads/lineage-22.1/ota.json",
		},
		{
			"https://github.com/owner/repo/blob/main/devices/renoir/ota.json",
			"https://raw.githubusercontent.com/owner/repo/refs/heads/main/devices/renoir/ota.json",
		},
		{
			"https://download.lineageos.org/api/v2/devices/renoir/builds",
			"https://download.lineageos.org/api/v2/devices/renoir/builds",
		},
		{
			"https://raw.githubusercontent.com/owner/repo/refs/heads/main/ota.json",
			"https://raw.githubusercontent.com/owner/repo/refs/heads/main/ota.json",
		},
		{"https://github.com/owner/repo/tree/main/ota.json", "https://github.com/owner/repo/tree/main/ota.json"},
		{"::not a url::", "::not a url::"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RawGitHubURL(tt.in), tt.in)
	}
}

func newTestFetcher(t *testing.T, handler http.HandlerFunc) (*Fetcher, *httptest.Server, *observer.ObservedLogs) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	core, logs := observer.New(zap.DebugLevel)
	f := NewFetcher(&FetcherConfig{
		HTTPClient: srv.Client(),
		Logger:     zap.New(core),
		UserAgent:  "kota-test",
	})
	return f, srv, logs
}

func TestFetchSuccess(t *testing.T) {
	f, srv, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "kota-test", r.UserAgent())
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":[{"device":"renoir"}]}`))
	})

	body, err := f.Fetch(context.Background(), srv.URL+"/ota.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"response":[{"device":"renoir"}]}`, string(body))
}

func TestFetchStatusError(t *testing.T) {
	f, srv, logs := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)
	assert.Equal(t, "failed to fetch: 404 Not Found", err.Error())
	assert.Equal(t, 1, logs.FilterMessage("failed to fetch document").Len())
}

func TestFetchDoesNotRetry(t *testing.T) {
	calls := 0
	f, srv, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestFetchMalformedJSON(t *testing.T) {
	f, srv, logs := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	})

	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrMalformedJSON)
	assert.Equal(t, 1, logs.FilterMessage("failed to parse document").Len())
}

func TestFetchResponseTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":[{"filename":"` + strings.Repeat("a", 4096) + `"}]}`))
	}))
	t.Cleanup(srv.Close)

	core, logs := observer.New(zap.DebugLevel)
	f := NewFetcher(&FetcherConfig{
		HTTPClient: srv.Client(),
		Logger:     zap.New(core),
		MaxBytes:   1024,
	})

	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrResponseTooLarge)
	assert.Equal(t, 1, logs.FilterMessage("failed to fetch document").Len())

	_, err = f.FetchSignature(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrResponseTooLarge)
}

func TestFetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()

	f := NewFetcher(nil)
	_, err := f.Fetch(context.Background(), u)
	require.Error(t, err)

	var serr *StatusError
	assert.False(t, errors.As(err, &serr))
}

func TestFetchCanceledContext(t *testing.T) {
	f, srv, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchSignature(t *testing.T) {
	const armored = "-----BEGIN PGP SIGNATURE-----\n\nwsBc\n-----END PGP SIGNATURE-----\n"
	f, srv, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(armored))
	})

	body, err := f.FetchSignature(context.Background(), srv.URL+"/ota.json.asc")
	require.NoError(t, err)
	assert.Equal(t, armored, string(body))

	_, err = f.Fetch(context.Background(), srv.URL+"/ota.json.asc")
	assert.ErrorIs(t, err, ErrMalformedJSON)
}
