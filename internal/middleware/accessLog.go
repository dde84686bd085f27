package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/kerraform/kota/internal/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type rwWrapper struct {
	rw     http.ResponseWriter
	mirror *http.Response
	closed bool
}

// newRwWrapper wraps the HTTP responseWriter for access logging
func newRwWrapper(rw http.ResponseWriter, mirror *http.Response) *rwWrapper {
	return &rwWrapper{
		rw:     rw,
		mirror: mirror,
	}
}

func (r *rwWrapper) Header() http.Header {
	return r.rw.Header()
}

func (r *rwWrapper) Write(i []byte) (int, error) {
	if !r.closed {
		r.WriteHeader(http.StatusOK)
	}
	r.mirror.ContentLength += int64(len(i))
	r.mirror.Body = io.NopCloser(bytes.NewReader(i))
	return r.rw.Write(i)
}

func (r *rwWrapper) WriteHeader(statusCode int) {
	if r.closed {
		return
	}
	r.closed = true
	r.rw.WriteHeader(statusCode)
	r.mirror.StatusCode = statusCode
}

// AccessLog logs every request once it has been served and hands the
// request-scoped logger down through the context.
func AccessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			res := &http.Response{StatusCode: http.StatusOK}
			rww := newRwWrapper(w, res)

			l := logger.With(
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			r = r.WithContext(logging.WithCtx(r.Context(), l))

			defer func() {
				logger.Named("accessLog").Info("access to server",
					append(flattenVars(r, res), zap.Duration("latency", time.Since(start)))...,
				)
			}()
			next.ServeHTTP(rww, r)
		})
	}
}

func flattenVars(r *http.Request, res *http.Response) []zapcore.Field {
	fs := []zapcore.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("userAgent", r.UserAgent()),
		zap.String("contentLength", strconv.FormatInt(r.ContentLength, 10)),
		zap.String("query", r.URL.Query().Encode()),
		zap.Int("statusCode", res.StatusCode),
		zap.Int64("responseBytes", res.ContentLength),
	}
	for k, v := range mux.Vars(r) {
		fs = append(fs, zap.String(k, v))
	}

	return fs
}
