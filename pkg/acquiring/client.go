package acquiring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/systemstart/paychain/pkg/api"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	DefaultSocketTimeout  = 30 * time.Second
	DefaultConnectTimeout = 10 * time.Second

	TraceIDHeader = "trace-id"
)

// Caller performs one JSON request against the acquiring API.
type Caller interface {
	Do(ctx context.Context, method, path string, body any) (*Response, error)
}

// Client talks to one acquiring API environment.
type Client struct {
	baseURL    string
	integrator string
	timeout    time.Duration
	http       *http.Client
}

// NewClient builds a client for env. When the environment has a token URI and
// client credentials, requests are authorised with an OAuth2 client credentials grant.
func NewClient(ctx context.Context, env api.Environment) *Client {
	connectTimeout := DefaultConnectTimeout
	if env.ConnectTimeout > 0 {
		connectTimeout = time.Duration(env.ConnectTimeout) * time.Second
	}
	timeout := DefaultSocketTimeout
	if env.SocketTimeout > 0 {
		timeout = time.Duration(env.SocketTimeout) * time.Second
	}

	base := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         (&net.Dialer{Timeout: connectTimeout}).DialContext,
			TLSHandshakeTimeout: connectTimeout,
			MaxIdleConnsPerHost: 16,
		},
	}

	httpClient := base
	if env.TokenURI != "" && env.ClientID != "" {
		cfg := clientcredentials.Config{
			ClientID:     env.ClientID,
			ClientSecret: env.ClientSecret,
			TokenURL:     env.TokenURI,
		}
		httpClient = cfg.Client(context.WithValue(ctx, oauth2.HTTPClient, base))
	}

	return &Client{
		baseURL:    strings.TrimRight(env.EndpointHost, "/"),
		integrator: env.Integrator,
		timeout:    timeout,
		http:       httpClient,
	}
}

// Timeout is the per-call deadline applied by Do.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Do sends body as JSON and decodes the JSON answer. HTTP status codes of 400
// and above are returned as *APIError together with the decoded response.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	traceID := uuid.New().String()
	req.Header.Set(TraceIDHeader, traceID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.integrator != "" {
		req.Header.Set("User-Agent", "paychain ("+c.integrator+")")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{TraceID: traceID, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, TraceID: traceID, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	r, err := DecodeResponse(resp.StatusCode, raw)
	if err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(raw), TraceID: traceID, Err: err}
	}
	r.TraceID = traceID

	if resp.StatusCode >= http.StatusBadRequest {
		return r, newAPIError(r)
	}
	return r, nil
}
