package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/kerraform/kota/internal/digest"
	"github.com/kerraform/kota/internal/driver"
	kerrors "github.com/kerraform/kota/internal/errors"
	"github.com/kerraform/kota/internal/handler"
	"github.com/kerraform/kota/internal/v1/jsonapi"
	"go.uber.org/zap"
)

const SnapshotPath = "/v1/snapshots"

func (h *Handler) CreateSnapshot() http.Handler {
	return handler.NewHandler(h.logger, func(w http.ResponseWriter, r *http.Request) error {
		var req CreateSnapshotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return kerrors.Wrap(err, kerrors.WithBadRequest())
		}
		defer r.Body.Close()

		if req.Data == nil || req.Data.Attributes == nil {
			return kerrors.Wrap(errors.New("data.attributes is required"), kerrors.WithBadRequest())
		}

		if req.Data.Type != DataTypeOTASnapshots {
			return kerrors.Wrap(fmt.Errorf("data type is not %s", DataTypeOTASnapshots), kerrors.WithBadRequest())
		}

		attrs := req.Data.Attributes
		if attrs.URL == "" {
			return kerrors.Wrap(ErrURLRequired, kerrors.WithBadRequest())
		}

		l := h.requestLogger(r).With(zap.String("url", attrs.URL))
		raw, err := h.fetch(r.Context(), attrs.URL)
		if err != nil {
			return err
		}

		if attrs.Signature != "" {
			if _, err := h.verify(r.Context(), raw, attrs.Signature); err != nil {
				return err
			}
		}

		res := h.normalize(raw)
		b, err := json.Marshal(res.Document)
		if err != nil {
			return kerrors.Wrap(err)
		}

		d, err := digest.Of(b)
		if err != nil {
			return kerrors.Wrap(err)
		}

		err = h.driver.SaveSnapshot(r.Context(), d, bytes.NewReader(b))
		h.metric.ObserveSnapshot(err)
		if err != nil {
			return kerrors.Wrap(err)
		}
		l.Info("stored snapshot", zap.String("digest", d), zap.String("variant", string(res.Variant)))

		self := path.Join(SnapshotPath, d)
		resp := &SnapshotResponse{
			Data: &jsonapi.Resource[SnapshotAttributes, DataType]{
				Type: DataTypeOTASnapshots,
				ID:   d,
				Attributes: &SnapshotAttributes{
					URL:        attrs.URL,
					Variant:    res.Variant,
					Recognized: res.Recognized(),
				},
				Links: &jsonapi.Links{
					Self: self,
				},
			},
		}

		w.Header().Set("Location", self)
		w.WriteHeader(http.StatusCreated)
		return json.NewEncoder(w).Encode(resp)
	})
}

func (h *Handler) ListSnapshots() http.Handler {
	return handler.NewHandler(h.logger, func(w http.ResponseWriter, r *http.Request) error {
		digests, err := h.driver.ListSnapshots(r.Context())
		if err != nil {
			return kerrors.Wrap(err)
		}

		resp := &ListSnapshotsResponse{
			Data: make([]*jsonapi.Resource[SnapshotAttributes, DataType], 0, len(digests)),
		}
		for _, d := range digests {
			resp.Data = append(resp.Data, &jsonapi.Resource[SnapshotAttributes, DataType]{
				Type: DataTypeOTASnapshots,
				ID:   d,
				Links: &jsonapi.Links{
					Self: path.Join(SnapshotPath, d),
				},
			})
		}

		return json.NewEncoder(w).Encode(resp)
	})
}

func (h *Handler) GetSnapshot() http.Handler {
	return handler.NewHandler(h.logger, func(w http.ResponseWriter, r *http.Request) error {
		d := mux.Vars(r)["digest"]

		rc, err := h.driver.GetSnapshot(r.Context(), d)
		if err != nil {
			switch {
			case errors.Is(err, driver.ErrInvalidDigest):
				return kerrors.Wrap(err, kerrors.WithBadRequest())
			case errors.Is(err, driver.ErrSnapshotNotExist):
				return kerrors.Wrap(err, kerrors.WithNotFound())
			default:
				return kerrors.Wrap(err)
			}
		}
		defer rc.Close()

		etag := strconv.Quote(d)
		w.Header().Set("ETag", etag)
		if etagMatches(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return nil
		}

		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, rc); err != nil {
			h.requestLogger(r).Warn("failed to write snapshot", zap.String("digest", d), zap.Error(err))
		}
		return nil
	})
}

// etagMatches applies the weak comparison If-None-Match calls for.
func etagMatches(header, etag string) bool {
	for _, v := range strings.Split(header, ",") {
		v = strings.TrimSpace(v)
		if v == "*" || strings.TrimPrefix(v, "W/") == etag {
			return true
		}
	}
	return false
}
