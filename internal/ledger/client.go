package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxErrorBody = 512

// Config holds connection settings for the ledger REST API.
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	MaxRetries int // applies to idempotent reads only
}

// DefaultConfig returns a Config for a ledger on localhost.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://localhost:8000/api",
		Timeout:    10 * time.Second,
		MaxRetries: 1,
	}
}

// Client talks to the work-log ledger, the task-source catalog and the
// follow-up endpoints, which all live behind one base URL.
type Client struct {
	cfg      Config
	http     *http.Client
	observer Observer
	newKey   func() string
}

// NewClient creates a Client. A nil observer discards call events.
func NewClient(cfg Config, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
		newKey:   uuid.NewString,
	}
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	headers map[string]string
	retries int
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	var lastErr error
	attempts := 1 + req.retries
	for i := 1; i <= attempts; i++ {
		start := time.Now()
		status, err := c.roundTrip(ctx, req, out)
		event := CallEvent{
			Method:    req.method,
			Path:      req.path,
			Status:    status,
			Attempt:   i,
			LatencyMs: time.Since(start).Milliseconds(),
			Success:   err == nil,
		}
		if err != nil {
			event.ErrorCode = errorCode(ctx, err)
		}
		c.observer.OnCallComplete(event)
		if err == nil {
			return nil
		}
		lastErr = err

		// Neither a spent deadline nor a refusal gets better on retry.
		if ctx.Err() != nil || errors.Is(err, ErrRejected) {
			break
		}
	}
	return classify(ctx, req, lastErr)
}

func (c *Client) roundTrip(ctx context.Context, req request, out any) (int, error) {
	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return 0, fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	target := strings.TrimRight(c.cfg.BaseURL, "/") + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 4<<20))
	if err != nil {
		return httpResp.StatusCode, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(respBody))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return httpResp.StatusCode, &APIError{
			Method: req.method,
			Path:   req.path,
			Status: httpResp.StatusCode,
			Body:   msg,
		}
	}

	if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return httpResp.StatusCode, fmt.Errorf("decoding %s %s response: %w", req.method, req.path, err)
		}
	}
	return httpResp.StatusCode, nil
}

func classify(ctx context.Context, req request, err error) error {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%s %s: %w", req.method, req.path, ErrTimeout)
	case ctx.Err() != nil:
		return fmt.Errorf("%s %s: %w", req.method, req.path, ctx.Err())
	case isConnectionError(err):
		return fmt.Errorf("%s %s: %w: %v", req.method, req.path, ErrUnavailable, err)
	default:
		return err
	}
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func errorCode(ctx context.Context, err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return fmt.Sprintf("HTTP_%d", apiErr.Status)
	case ctx.Err() != nil:
		return "TIMEOUT"
	case isConnectionError(err):
		return "UNAVAILABLE"
	default:
		return "UNKNOWN"
	}
}
