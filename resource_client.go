package register

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const defaultUsersPath = "/Users"

// ResourceResult is the remote server's answer: the status code forwarded
// verbatim, the raw body, and the ETag when the server versions records.
type ResourceResult struct {
	StatusCode int
	Body       []byte
	ETag       string
}

// ResourceClientConfig holds the HTTP wiring for the resource server.
type ResourceClientConfig struct {
	// BaseURL is the scheme://host:port prefix of the resource server.
	BaseURL string
	// UsersPath overrides the users collection path, default "/Users".
	UsersPath string
	// HTTPClient lets callers inject transports; a 10s timeout client is
	// used when nil.
	HTTPClient *http.Client
}

// HTTPResourceClient implements ResourceClient against a SCIM style users
// endpoint. It never retries and never rewrites remote statuses.
type HTTPResourceClient struct {
	baseURL    string
	usersPath  string
	httpClient *http.Client
}

// NewHTTPResourceClient creates a resource client from cfg.
func NewHTTPResourceClient(cfg ResourceClientConfig) *HTTPResourceClient {
	if cfg.UsersPath == "" {
		cfg.UsersPath = defaultUsersPath
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &HTTPResourceClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		usersPath:  cfg.UsersPath,
		httpClient: client,
	}
}

// CreateUser issues POST {base}{usersPath} with the caller's credential.
func (c *HTTPResourceClient) CreateUser(ctx context.Context, body []byte, credential string) (ResourceResult, error) {
	return c.do(ctx, http.MethodPost, c.usersURL(""), body, credential, "")
}

// GetUser issues GET {base}{usersPath}/{id}.
func (c *HTTPResourceClient) GetUser(ctx context.Context, id string, credential string) (ResourceResult, error) {
	return c.do(ctx, http.MethodGet, c.usersURL(id), nil, credential, "")
}

// ReplaceUser issues PUT {base}{usersPath}/{id} with a full replacement
// document. When etag is non-empty it is sent as If-Match so the update only
// lands on the version that was read.
func (c *HTTPResourceClient) ReplaceUser(ctx context.Context, id string, body []byte, credential string, etag string) (ResourceResult, error) {
	return c.do(ctx, http.MethodPut, c.usersURL(id), body, credential, etag)
}

func (c *HTTPResourceClient) usersURL(id string) string {
	url := c.baseURL + c.usersPath
	if id != "" {
		url += "/" + id
	}
	return url
}

func (c *HTTPResourceClient) do(ctx context.Context, method, url string, body []byte, credential, etag string) (ResourceResult, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return ResourceResult{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build resource server request")
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", credential)
	}
	if etag != "" {
		req.Header.Set("If-Match", etag)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return ResourceResult{}, goerrors.Wrap(err, goerrors.CategoryInternal, "resource server request failed")
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return ResourceResult{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read resource server response")
	}

	return ResourceResult{
		StatusCode: res.StatusCode,
		Body:       payload,
		ETag:       res.Header.Get("ETag"),
	}, nil
}
