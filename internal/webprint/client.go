package webprint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StatusFetcher is the subset of the client the poller depends on.
// Implemented by *Client; stub implementations are used in tests.
type StatusFetcher interface {
	QueueStatus(ctx context.Context) (*QueueStatus, error)
	TaskStatus(ctx context.Context, taskID string) (*TaskStatus, error)
}

// Ensure Client implements StatusFetcher at compile time.
var _ StatusFetcher = (*Client)(nil)

// Config is the explicit client configuration. Construct one (usually
// from internal/config) and pass it to NewClient; there is no package
// level mutable state.
type Config struct {
	BaseURL       string        // scheme://host:port, default http://localhost:8080
	APIPrefix     string        // default /api
	Timeout       time.Duration // default 30s
	EnableLogging bool
	Logger        zerolog.Logger
}

// Client talks to the WebPrint HTTP API. Every response travels in the
// {code, message, data} envelope; any non-success outcome surfaces as a
// *APIError.
type Client struct {
	baseURL   *url.URL
	prefix    string
	http      *http.Client
	userAgent string
	log       zerolog.Logger
	logging   bool
}

const (
	defaultBaseURL   = "http://localhost:8080"
	defaultAPIPrefix = "/api"
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "platen/0.1"
)

// NewClient builds a Client from the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	prefix := strings.TrimSpace(cfg.APIPrefix)
	if prefix == "" {
		prefix = defaultAPIPrefix
	}
	prefix = "/" + strings.Trim(prefix, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:   base,
		prefix:    prefix,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
		log:       cfg.Logger,
		logging:   cfg.EnableLogging,
	}, nil
}

// Health checks service reachability via GET /health.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var payload HealthStatus
	if err := c.get(ctx, "/health", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Printers retrieves all printers known to the service.
func (c *Client) Printers(ctx context.Context) ([]Printer, error) {
	var payload []Printer
	if err := c.get(ctx, "/printers", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Printer retrieves details for one printer.
func (c *Client) Printer(ctx context.Context, id string) (*Printer, error) {
	var payload Printer
	if err := c.get(ctx, "/printers/"+url.PathEscape(id), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// PrinterStatus retrieves the live status for one printer.
func (c *Client) PrinterStatus(ctx context.Context, id string) (*Printer, error) {
	var payload Printer
	if err := c.get(ctx, "/printers/"+url.PathEscape(id)+"/status", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SubmitPrint uploads a document and its print parameters as multipart
// form data and returns the server-issued task ID. The file is read
// from req.FilePath; validate it with ValidateFile before calling.
func (c *Client) SubmitPrint(ctx context.Context, req PrintRequest, onProgress func(percent int)) (*SubmitReceipt, error) {
	fields := map[string]string{
		"printerId": req.PrinterID,
		"copies":    strconv.Itoa(req.Copies),
		"paperSize": req.PaperSize,
		"duplex":    req.Duplex,
		"colorMode": req.ColorMode,
	}

	var data json.RawMessage
	if err := c.upload(ctx, "/print/submit", fields, req.FilePath, onProgress, &data); err != nil {
		return nil, err
	}
	return decodeReceipt(data)
}

// Jobs lists all print jobs on the server.
func (c *Client) Jobs(ctx context.Context) ([]PrintJob, error) {
	var payload []PrintJob
	if err := c.get(ctx, "/print/jobs", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Job retrieves one print job by ID.
func (c *Client) Job(ctx context.Context, id string) (*PrintJob, error) {
	var payload PrintJob
	if err := c.get(ctx, "/print/jobs/"+url.PathEscape(id), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// CancelJob cancels one print job and returns the server's message.
func (c *Client) CancelJob(ctx context.Context, id string) (string, error) {
	return c.postMessage(ctx, "/print/jobs/"+url.PathEscape(id)+"/cancel")
}

// Tasks lists all tasks on the server.
func (c *Client) Tasks(ctx context.Context) ([]TaskStatus, error) {
	var payload []TaskStatus
	if err := c.get(ctx, "/print/tasks", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Task retrieves full task details by ID.
func (c *Client) Task(ctx context.Context, taskID string) (*TaskStatus, error) {
	var payload TaskStatus
	if err := c.get(ctx, "/print/task/"+url.PathEscape(taskID), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// TaskStatus retrieves the live status for one task.
func (c *Client) TaskStatus(ctx context.Context, taskID string) (*TaskStatus, error) {
	var payload TaskStatus
	if err := c.get(ctx, "/print/task/"+url.PathEscape(taskID)+"/status", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// CancelTask cancels one task and returns the server's message.
func (c *Client) CancelTask(ctx context.Context, taskID string) (string, error) {
	return c.postMessage(ctx, "/print/task/"+url.PathEscape(taskID)+"/cancel")
}

// QueueStatus retrieves the aggregate queue snapshot.
func (c *Client) QueueStatus(ctx context.Context) (*QueueStatus, error) {
	var payload QueueStatus
	if err := c.get(ctx, "/print/queue/status", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ClearQueue removes all queued jobs.
func (c *Client) ClearQueue(ctx context.Context) (string, error) {
	return c.postMessage(ctx, "/print/queue/clear")
}

// PauseQueue pauses the scheduler.
func (c *Client) PauseQueue(ctx context.Context) (string, error) {
	return c.postMessage(ctx, "/print/queue/pause")
}

// ResumeQueue resumes the scheduler.
func (c *Client) ResumeQueue(ctx context.Context) (string, error) {
	return c.postMessage(ctx, "/print/queue/resume")
}

// UploadFile uploads a bare file via POST /upload/file.
func (c *Client) UploadFile(ctx context.Context, path string, onProgress func(percent int)) (string, error) {
	var data json.RawMessage
	if err := c.upload(ctx, "/upload/file", nil, path, onProgress, &data); err != nil {
		return "", err
	}
	receipt, err := decodeReceipt(data)
	if err != nil {
		return "", err
	}
	return receipt.TaskID, nil
}

// ValidateUpload asks the server to validate a file without printing it.
func (c *Client) ValidateUpload(ctx context.Context, path string) (*ValidationResult, error) {
	var payload ValidationResult
	if err := c.upload(ctx, "/upload/validate", nil, path, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// get issues a read-only request. GETs are retry-safe; callers may
// repeat them freely.
func (c *Client) get(ctx context.Context, path string, dest any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", dest)
}

// postMessage issues a bodyless POST whose data payload is a plain
// string message. POSTs are never retried automatically.
func (c *Client) postMessage(ctx context.Context, path string) (string, error) {
	var msg string
	if err := c.do(ctx, http.MethodPost, path, nil, "", &msg); err != nil {
		return "", err
	}
	return msg, nil
}

// upload issues a multipart POST with the given form fields and one
// file part named "file". onProgress, when non-nil, receives the
// percentage of the request body handed to the transport.
func (c *Client) upload(ctx context.Context, path string, fields map[string]string, filePath string, onProgress func(int), dest any) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open upload file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("write form field %s: %w", name, err)
		}
	}
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("read upload file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	var body io.Reader = &buf
	if onProgress != nil {
		body = &progressReader{r: &buf, total: int64(buf.Len()), report: onProgress}
	}
	return c.do(ctx, http.MethodPost, path, body, writer.FormDataContentType(), dest)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, dest any) error {
	rel := &url.URL{Path: c.prefix + path}
	reqURL := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if c.logging {
		c.log.Debug().
			Str("method", method).
			Str("url", reqURL.String()).
			Str("request_id", requestID).
			Msg("api request")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if c.logging {
			c.log.Debug().
				Str("url", reqURL.String()).
				Str("request_id", requestID).
				Err(err).
				Msg("api transport failure")
		}
		return transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}

	if c.logging {
		c.log.Debug().
			Int("status", resp.StatusCode).
			Str("url", reqURL.String()).
			Str("request_id", requestID).
			Dur("elapsed", time.Since(start)).
			Msg("api response")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Code == 0 {
		// No valid envelope; classify by HTTP status.
		if resp.StatusCode >= 400 {
			return httpStatusError(resp.StatusCode)
		}
		return fmt.Errorf("decode response: invalid envelope from %s", rel.Path)
	}

	if env.Code != CodeSuccess {
		return businessError(env.Code, env.Message)
	}
	if dest == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// envelope is the wire wrapper around every WebPrint response.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// decodeReceipt accepts both receipt shapes the server has returned
// over time: an object carrying taskId, and a bare task ID string.
func decodeReceipt(data json.RawMessage) (*SubmitReceipt, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("decode submit receipt: empty data payload")
	}
	var receipt SubmitReceipt
	if err := json.Unmarshal(data, &receipt); err == nil && receipt.TaskID != "" {
		return &receipt, nil
	}
	var taskID string
	if err := json.Unmarshal(data, &taskID); err == nil && taskID != "" {
		return &SubmitReceipt{TaskID: taskID}, nil
	}
	return nil, fmt.Errorf("decode submit receipt: no task id in %q", string(data))
}

// progressReader reports read progress as an integer percentage.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	last   int
	report func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.total > 0 {
		percent := int(p.read * 100 / p.total)
		if percent > 100 {
			percent = 100
		}
		if percent != p.last {
			p.last = percent
			p.report(percent)
		}
	}
	return n, err
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
