package client

import (
	"context"
	"io"
	"net/url"

	v1 "github.com/kerraform/kota/internal/v1"
	"github.com/kerraform/kota/internal/v1/jsonapi"
)

type SnapshotService service

// Create asks the server to fetch, normalize and store the document at
// documentURL. signatureURL may be empty.
func (s *SnapshotService) Create(ctx context.Context, documentURL, signatureURL string) (*jsonapi.Resource[v1.SnapshotAttributes, v1.DataType], error) {
	body := &v1.CreateSnapshotRequest{
		Data: &jsonapi.Data[v1.CreateSnapshotRequestAttributes, v1.DataType]{
			Type: v1.DataTypeOTASnapshots,
			Attributes: &v1.CreateSnapshotRequestAttributes{
				URL:       documentURL,
				Signature: signatureURL,
			},
		},
	}

	req, err := s.client.NewPostRequest(v1.SnapshotPath, body)
	if err != nil {
		return nil, err
	}

	var resp v1.SnapshotResponse
	if _, err := s.client.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (s *SnapshotService) List(ctx context.Context) ([]string, error) {
	req, err := s.client.NewGetRequest(v1.SnapshotPath)
	if err != nil {
		return nil, err
	}

	var resp v1.ListSnapshotsResponse
	if _, err := s.client.Do(ctx, req, &resp); err != nil {
		return nil, err
	}

	digests := make([]string, 0, len(resp.Data))
	for _, d := range resp.Data {
		digests = append(digests, d.ID)
	}
	return digests, nil
}

// Get writes the stored document named by digest to w.
func (s *SnapshotService) Get(ctx context.Context, digest string, w io.Writer) error {
	req, err := s.client.NewGetRequest(v1.SnapshotPath + "/" + url.PathEscape(digest))
	if err != nil {
		return err
	}

	_, err = s.client.Do(ctx, req, w)
	return err
}
