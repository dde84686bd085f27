package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	kerrors "github.com/kerraform/kota/internal/errors"
	"github.com/kerraform/kota/internal/handler"
	"github.com/kerraform/kota/internal/ota"
	"github.com/kerraform/kota/internal/schema"
	"go.uber.org/zap"
)

func (h *Handler) Normalize() http.Handler {
	return handler.NewHandler(h.logger, func(w http.ResponseWriter, r *http.Request) error {
		raw, err := readDocument(r)
		if err != nil {
			return err
		}

		l := h.requestLogger(r)
		res := h.normalize(raw)
		l.Debug("normalized document", zap.String("variant", string(res.Variant)))

		return h.writeDocument(w, l, res)
	})
}

func (h *Handler) Validate() http.Handler {
	return handler.NewHandler(h.logger, func(w http.ResponseWriter, r *http.Request) error {
		raw, err := readDocument(r)
		if err != nil {
			return err
		}

		resp := &ValidateResponse{
			Valid:   ota.Validate(raw),
			Variant: ota.Classify(raw).Variant,
		}
		return json.NewEncoder(w).Encode(resp)
	})
}

func (h *Handler) Lint() http.Handler {
	return handler.NewHandler(h.logger, func(w http.ResponseWriter, r *http.Request) error {
		raw, err := readDocument(r)
		if err != nil {
			return err
		}

		b, err := json.Marshal(h.normalize(raw).Document)
		if err != nil {
			return kerrors.Wrap(err)
		}

		resp := &LintResponse{
			Valid:  true,
			Errors: []string{},
		}

		if err := h.linter.Lint(b); err != nil {
			var lerr *schema.LintError
			if !errors.As(err, &lerr) {
				return kerrors.Wrap(err)
			}
			resp.Valid = false
			resp.Errors = lerr.Problems
		}

		return json.NewEncoder(w).Encode(resp)
	})
}

// FetchDocument fetches the document named by the url query parameter,
// optionally verifies it against the signature parameter and returns it
// normalized.
func (h *Handler) FetchDocument() http.Handler {
	return handler.NewHandler(h.logger, func(w http.ResponseWriter, r *http.Request) error {
		u := r.URL.Query().Get("url")
		if u == "" {
			return kerrors.Wrap(ErrURLRequired, kerrors.WithBadRequest())
		}

		l := h.requestLogger(r).With(zap.String("url", u))
		raw, err := h.fetch(r.Context(), u)
		if err != nil {
			return err
		}

		if sig := r.URL.Query().Get("signature"); sig != "" {
			keyID, err := h.verify(r.Context(), raw, sig)
			if err != nil {
				return err
			}
			w.Header().Set(HeaderSigner, keyID)
			l = l.With(zap.String("keyID", keyID))
		}

		res := h.normalize(raw)
		l.Info("served remote document", zap.String("variant", string(res.Variant)))
		return h.writeDocument(w, l, res)
	})
}
