package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/kerraform/kota/internal/handler"
)

type service struct {
	client *Client
}

type Client struct {
	baseURL   *url.URL
	client    *http.Client
	common    service
	userAgent string

	Snapshot *SnapshotService
}

type ClientOpts struct {
	HTTPClient *http.Client
	UserAgent  string
}

type ClientOpt func(o *ClientOpts)

func WithHTTPClient(client *http.Client) ClientOpt {
	return func(o *ClientOpts) {
		o.HTTPClient = client
	}
}

func WithUserAgent(ua string) ClientOpt {
	return func(o *ClientOpts) {
		o.UserAgent = ua
	}
}

// APIError is returned for every non-2xx answer of the kota server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("kota api: %s", http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("kota api: %s (%d)", e.Message, e.StatusCode)
}

func New(baseURL *url.URL, opts ...ClientOpt) *Client {
	var o ClientOpts
	for _, opt := range opts {
		opt(&o)
	}

	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}

	c := &Client{
		baseURL:   baseURL,
		client:    o.HTTPClient,
		userAgent: o.UserAgent,
	}
	c.common.client = c

	c.Snapshot = (*SnapshotService)(&c.common)
	return c
}

// Do sends req and decodes a successful JSON answer into v. v may be an
// io.Writer to receive the body unchanged, or nil to discard it.
func (c *Client) Do(ctx context.Context, req *http.Request, v interface{}) (*http.Response, error) {
	resp, err := c.client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
		}
		var e handler.Error
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil {
			apiErr.Message = e.Message
		}
		return resp, apiErr
	}

	switch v := v.(type) {
	case nil:
		_, err = io.Copy(io.Discard, resp.Body)
	case io.Writer:
		_, err = io.Copy(v, resp.Body)
	default:
		err = json.NewDecoder(resp.Body).Decode(v)
	}
	return resp, err
}

// NewGetRequest creates an API GET request.
func (c *Client) NewGetRequest(urlStr string) (*http.Request, error) {
	return c.NewRequest(http.MethodGet, urlStr, nil)
}

// NewPostRequest creates an API POST request.
func (c *Client) NewPostRequest(urlStr string, body interface{}) (*http.Request, error) {
	return c.NewRequest(http.MethodPost, urlStr, body)
}

// NewRequest creates an API request.
func (c *Client) NewRequest(method, urlStr string, body interface{}) (*http.Request, error) {
	u, err := c.baseURL.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	var buf io.ReadWriter
	if body != nil {
		buf = &bytes.Buffer{}
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		err := enc.Encode(body)
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequest(method, u.String(), buf)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	return req, nil
}
