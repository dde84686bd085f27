package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/kerraform/kota/internal/digest"
	"github.com/kerraform/kota/internal/driver"
	kerrors "github.com/kerraform/kota/internal/errors"
	"github.com/kerraform/kota/internal/logging"
	"github.com/kerraform/kota/internal/metric"
	"github.com/kerraform/kota/internal/ota"
	"github.com/kerraform/kota/internal/schema"
	"github.com/kerraform/kota/internal/verify"
	"go.uber.org/zap"
)

const (
	HeaderVariant    = "X-Ota-Variant"
	HeaderRecognized = "X-Ota-Recognized"
	HeaderSigner     = "X-Ota-Signer"

	maxDocumentBytes = 16 << 20
)

var (
	ErrURLRequired          = errors.New("url is required")
	ErrVerificationDisabled = errors.New("signature verification is not configured")
	ErrDocumentTooLarge     = fmt.Errorf("document exceeds %d bytes", maxDocumentBytes)
)

// Fetcher retrieves remote OTA documents and their detached signatures.
type Fetcher interface {
	Fetch(ctx context.Context, u string) ([]byte, error)
	FetchSignature(ctx context.Context, u string) ([]byte, error)
}

type Handler struct {
	driver     driver.Driver
	fetcher    Fetcher
	linter     *schema.Linter
	logger     *zap.Logger
	metric     *metric.OTAMetrics
	normalizer *ota.Normalizer
	verifier   *verify.Verifier
}

type HandlerConfig struct {
	Driver  driver.Driver
	Fetcher Fetcher
	Linter  *schema.Linter
	Logger  *zap.Logger
	Metric  *metric.OTAMetrics

	// Verifier is optional. Without it requests carrying a signature are
	// rejected.
	Verifier *verify.Verifier
}

func New(cfg *HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := cfg.Metric
	if m == nil {
		m = metric.New()
	}

	return &Handler{
		driver:     cfg.Driver,
		fetcher:    cfg.Fetcher,
		linter:     cfg.Linter,
		logger:     logger.Named("v1"),
		metric:     m,
		normalizer: ota.NewNormalizer(logger.Named("normalizer")),
		verifier:   cfg.Verifier,
	}
}

func (h *Handler) requestLogger(r *http.Request) *zap.Logger {
	l, err := logging.FromCtx(r.Context())
	if err != nil {
		return h.logger
	}
	return l
}

func readDocument(r *http.Request) ([]byte, error) {
	defer r.Body.Close()

	b, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, kerrors.Wrap(err, kerrors.WithBadRequest())
	}
	if len(b) > maxDocumentBytes {
		return nil, kerrors.Wrap(ErrDocumentTooLarge, kerrors.WithStatusCode(http.StatusRequestEntityTooLarge))
	}
	return b, nil
}

func (h *Handler) normalize(raw []byte) *ota.Result {
	res := h.normalizer.Normalize(raw)
	h.metric.ObserveNormalize(string(res.Variant))
	return res
}

func (h *Handler) fetch(ctx context.Context, u string) ([]byte, error) {
	start := time.Now()
	raw, err := h.fetcher.Fetch(ctx, u)
	h.metric.ObserveFetch(start, err)
	if err != nil {
		return nil, kerrors.Wrap(err, kerrors.WithBadGateway())
	}
	return raw, nil
}

// verify checks raw against the detached signature at sigURL and returns the
// signer key ID.
func (h *Handler) verify(ctx context.Context, raw []byte, sigURL string) (string, error) {
	if h.verifier == nil {
		return "", kerrors.Wrap(ErrVerificationDisabled, kerrors.WithBadRequest())
	}

	sig, err := h.fetcher.FetchSignature(ctx, sigURL)
	if err != nil {
		return "", kerrors.Wrap(err, kerrors.WithBadGateway())
	}

	keyID, err := h.verifier.Verify(raw, sig)
	if err != nil {
		return "", kerrors.Wrap(err, kerrors.WithUnprocessable())
	}
	return keyID, nil
}

// writeDocument encodes the normalized document with its variant and digest
// headers.
func (h *Handler) writeDocument(w http.ResponseWriter, l *zap.Logger, res *ota.Result) error {
	b, err := json.Marshal(res.Document)
	if err != nil {
		return kerrors.Wrap(err)
	}

	if d, err := digest.Of(b); err != nil {
		l.Warn("failed to compute document digest", zap.Error(err))
	} else {
		w.Header().Set("ETag", strconv.Quote(d))
	}

	w.Header().Set(HeaderVariant, string(res.Variant))
	w.Header().Set(HeaderRecognized, strconv.FormatBool(res.Recognized()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(b); err != nil {
		l.Warn("failed to write document", zap.Error(err))
	}
	return nil
}
