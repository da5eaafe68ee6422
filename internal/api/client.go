package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"delrio-stay/internal/logger"
	"delrio-stay/internal/model"
	"delrio-stay/pkg/apierror"
)

const maxResponseBytes = 16 << 20

// TokenSource returns the bearer token of the session behind ctx, or "".
type TokenSource func(ctx context.Context) string

// Client is the only thing in the application that talks to the booking
// backend. It never retries; a failure surfaces once to the caller.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if tokens == nil {
		tokens = func(context.Context) string { return "" }
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	auth        bool
}

func jsonRequest(method string, path string, payload any, auth bool) (request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("encode %s %s body: %w", method, path, err)
	}
	return request{method: method, path: path, body: bytes.NewReader(data), contentType: "application/json", auth: auth}, nil
}

// do performs the call and decodes the normalized payload into out, which may
// be nil when the caller does not need the body.
func (c *Client) do(ctx context.Context, req request, out any) error {
	payload, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	return decodePayload(payload, out)
}

func (c *Client) send(ctx context.Context, req request) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, req.body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", req.method, req.path, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.auth {
		if token := c.tokens(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if requestID := logger.RequestID(ctx); requestID != "" {
		httpReq.Header.Set("X-Request-ID", requestID)
	}

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		slog.WarnContext(ctx, "backend unreachable", "method", req.method, "path", req.path, "error", err)
		return nil, apierror.Network(req.method, req.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apierror.Network(req.method, req.path, err)
	}

	slog.DebugContext(ctx, "backend call",
		"method", req.method,
		"path", req.path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := apierror.New(req.method, req.path, resp.StatusCode, errorMessage(body))
		slog.WarnContext(ctx, "backend call failed", "method", req.method, "path", req.path, "status", resp.StatusCode, "message", apiErr.Message)
		return nil, apiErr
	}

	return unwrapEnvelope(body), nil
}

// unwrapEnvelope returns the data member of a {data, message, error} object,
// or the body itself when it is a bare payload.
func unwrapEnvelope(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return trimmed
	}

	data, ok := fields["data"]
	if !ok {
		return trimmed
	}
	return bytes.TrimSpace(data)
}

func decodePayload(payload []byte, out any) error {
	if out == nil || len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode backend payload: %w", err)
	}
	return nil
}

// decodeList accepts only array payloads; anything else reads as empty.
func decodeList[T any](payload []byte) ([]T, error) {
	items := make([]T, 0)
	if len(payload) == 0 || payload[0] != '[' {
		return items, nil
	}
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("decode backend list: %w", err)
	}
	return items, nil
}

// errorMessage digs a human readable message out of an error body. An empty
// result makes apierror fall back to "Error <status>".
func errorMessage(body []byte) string {
	var parsed struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if strings.TrimSpace(parsed.Message) != "" {
		return strings.TrimSpace(parsed.Message)
	}

	var text string
	if json.Unmarshal(parsed.Error, &text) == nil && strings.TrimSpace(text) != "" {
		return strings.TrimSpace(text)
	}

	var nested struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(parsed.Error, &nested) == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}

// IsNotFound reports whether err means the looked up entity does not exist.
func IsNotFound(err error) bool {
	return apierror.IsNotFound(err) ||
		errors.Is(err, model.ErrRoomNotFound) ||
		errors.Is(err, model.ErrBookingNotFound) ||
		errors.Is(err, model.ErrUserNotFound)
}
