// Package restclient talks to the restaurant REST API.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
	"github.com/gestfood/digital-menu/pkg/logger"
	"github.com/gestfood/digital-menu/pkg/metrics"
)

const (
	DefaultTimeout = 30 * time.Second

	errorBodyReadLimit int64 = 4096
)

var errBaseURLRequired = errors.New("backend base url is required")

// Client issues JSON and multipart requests against the backend base URL.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	baseURL    string
	logg       *logger.Logger
	metrics    *metrics.BackendMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. The caller's client is not
// modified; a WithTimeout applies to a copy.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds every request, whatever the option order. Zero keeps the
// HTTP client's own timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		if logg != nil {
			c.logg = logg
		}
	}
}

func WithMetrics(m *metrics.BackendMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New builds a client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logg:       logger.Nop(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.timeout > 0 && client.httpClient.Timeout != client.timeout {
		httpClient := *client.httpClient
		httpClient.Timeout = client.timeout
		client.httpClient = &httpClient
	}

	return client, nil
}

// RequestOption decorates a single outgoing request.
type RequestOption func(*http.Request)

// WithHeader sets a header on the request.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		if value != "" {
			r.Header.Set(key, value)
		}
	}
}

// WithIdempotencyKey tags a create request so the backend can drop replays.
func WithIdempotencyKey(key string) RequestOption {
	return WithHeader("Idempotency-Key", key)
}

// Part is one section of a multipart/form-data body.
type Part struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
}

// JSONPart encodes value as an application/json file part.
func JSONPart(field, fileName string, value any) (Part, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return Part{}, pkgerrors.Wrap(pkgerrors.CodeInvalidArgument, err, "marshal json part")
	}
	return Part{Field: field, FileName: fileName, ContentType: "application/json", Data: data}, nil
}

// Raw sends in as JSON (when non-nil) and returns the raw response body of a
// 2xx reply. Non-2xx replies and transport failures are classified.
func (c *Client) Raw(ctx context.Context, method, path string, in any, opts ...RequestOption) ([]byte, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidArgument, err, "marshal request body")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidArgument, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	return c.send(req)
}

// JSON is Raw followed by decoding the reply into out. An empty body leaves out
// untouched.
func (c *Client) JSON(ctx context.Context, method, path string, in, out any, opts ...RequestOption) error {
	raw, err := c.Raw(ctx, method, path, in, opts...)
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

// Multipart sends the parts as multipart/form-data and returns the raw reply.
func (c *Client) Multipart(ctx context.Context, method, path string, parts []Part, opts ...RequestOption) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, part := range parts {
		if err := writePart(writer, part); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidArgument, err, "write multipart body")
		}
	}
	if err := writer.Close(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidArgument, err, "close multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), &buf)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidArgument, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", writer.FormDataContentType())
	for _, opt := range opts {
		opt(req)
	}
	return c.send(req)
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	ctx := c.logg.WithFields(req.Context(), map[string]any{
		"backend_method": req.Method,
		"backend_path":   req.URL.Path,
	})

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(req.Method, 0, time.Since(started))
		c.logg.Warn(ctx, "backend unreachable")
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "backend request failed")
	}
	defer func() { _ = resp.Body.Close() }()
	c.metrics.ObserveRequest(req.Method, resp.StatusCode, time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		classified := classifyStatus(resp.StatusCode, body)
		c.logg.Warn(c.logg.WithField(ctx, "backend_status", resp.StatusCode), classified.Error())
		return nil, classified
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "read backend response")
	}
	c.logg.Debug(c.logg.WithField(ctx, "backend_status", resp.StatusCode), "backend request completed")
	return body, nil
}

func (c *Client) url(path string) string {
	if path == "" {
		return c.baseURL
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func writePart(writer *multipart.Writer, part Part) error {
	if part.Field == "" {
		return errors.New("multipart field name is required")
	}
	header := make(textproto.MIMEHeader)
	disposition := fmt.Sprintf(`form-data; name=%q`, part.Field)
	if part.FileName != "" {
		disposition += fmt.Sprintf(`; filename=%q`, part.FileName)
	}
	header.Set("Content-Disposition", disposition)
	contentType := part.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	w, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = w.Write(part.Data)
	return err
}

func decodeInto(raw []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode backend response")
	}
	return nil
}
