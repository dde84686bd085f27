package server

import (
	"net/http"

	v1 "github.com/kerraform/kota/internal/v1"
)

const v1Path = "/v1"

func (s *Server) registerOTAHandler() {
	s.mux.Methods(http.MethodPost).Path(v1Path + "/normalize").Handler(s.v1.Normalize())
	s.mux.Methods(http.MethodPost).Path(v1Path + "/validate").Handler(s.v1.Validate())
	s.mux.Methods(http.MethodPost).Path(v1Path + "/lint").Handler(s.v1.Lint())

	// Fetch a remote document, e.g. a GitHub hosted OTA JSON.
	s.mux.Methods(http.MethodGet).Path(v1Path + "/ota").Handler(s.v1.FetchDocument())

	s.mux.Methods(http.MethodPost).Path(v1.SnapshotPath).Handler(s.v1.CreateSnapshot())
	s.mux.Methods(http.MethodGet).Path(v1.SnapshotPath).Handler(s.v1.ListSnapshots())
	s.mux.Methods(http.MethodGet).Path(v1.SnapshotPath + "/{digest}").Handler(s.v1.GetSnapshot())
}
