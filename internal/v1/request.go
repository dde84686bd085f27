package v1

import (
	"github.com/kerraform/kota/internal/ota"
	"github.com/kerraform/kota/internal/v1/jsonapi"
)

type DataType string

const (
	DataTypeOTASnapshots DataType = "ota-snapshots"
)

type CreateSnapshotRequestAttributes struct {
	URL       string `json:"url"`
	Signature string `json:"signature,omitempty"`
}

type CreateSnapshotRequest = jsonapi.Request[CreateSnapshotRequestAttributes, DataType]

type SnapshotAttributes struct {
	URL        string      `json:"url"`
	Variant    ota.Variant `json:"variant"`
	Recognized bool        `json:"recognized"`
}

type SnapshotResponse = jsonapi.Response[SnapshotAttributes, DataType]

type ListSnapshotsResponse = jsonapi.ListResponse[SnapshotAttributes, DataType]

type ValidateResponse struct {
	Valid   bool        `json:"valid"`
	Variant ota.Variant `json:"variant"`
}

type LintResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}
