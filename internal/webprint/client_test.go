package webprint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func envelopeJSON(code int, message string, data any) []byte {
	raw, _ := json.Marshal(map[string]any{
		"code":    code,
		"message": message,
		"data":    data,
	})
	return raw
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: baseURL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultBaseURL {
		t.Fatalf("base url = %q, want %q", u.String(), defaultBaseURL)
	}

	u, err = parseBaseURL("example.com:9100/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "example.com:9100" {
		t.Fatalf("base url = %q, want http://example.com:9100", u.String())
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_FetchesEnvelopedEndpoints(t *testing.T) {
	t.Parallel()

	var gotUserAgent, gotRequestID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/api/health":
			_, _ = w.Write(envelopeJSON(1000, "success", HealthStatus{Status: "UP", Timestamp: "2024-01-01T12:00:00"}))
		case "/api/printers":
			_, _ = w.Write(envelopeJSON(1000, "success", []Printer{{ID: "p1", Name: "Office", Status: "online"}}))
		case "/api/print/queue/status":
			_, _ = w.Write(envelopeJSON(1000, "success", QueueStatus{
				QueueSize:       3,
				QueueStats:      QueueStats{Pending: 2, Processing: 1},
				SchedulerStatus: "running",
			}))
		case "/api/print/task/t-1/status":
			_, _ = w.Write(envelopeJSON(1000, "success", TaskStatus{TaskID: "t-1", Status: StatusPrinting, Progress: 40}))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	health, err := c.Health(ctx)
	if err != nil {
		t.Fatalf("Health returned error: %v", err)
	}
	if health.Status != "UP" {
		t.Fatalf("Health status = %q, want UP", health.Status)
	}

	printers, err := c.Printers(ctx)
	if err != nil {
		t.Fatalf("Printers returned error: %v", err)
	}
	if len(printers) != 1 || printers[0].ID != "p1" || !printers[0].Online() {
		t.Fatalf("Printers = %#v, want one online printer p1", printers)
	}

	queue, err := c.QueueStatus(ctx)
	if err != nil {
		t.Fatalf("QueueStatus returned error: %v", err)
	}
	if queue.QueueSize != 3 || queue.QueueStats.Pending != 2 || !queue.SchedulerRunning() {
		t.Fatalf("QueueStatus = %#v, want size=3 pending=2 running", queue)
	}

	task, err := c.TaskStatus(ctx, "t-1")
	if err != nil {
		t.Fatalf("TaskStatus returned error: %v", err)
	}
	if task.TaskID != "t-1" || task.Status != StatusPrinting || task.Progress != 40 {
		t.Fatalf("TaskStatus = %#v, want t-1 printing 40%%", task)
	}

	if !strings.HasPrefix(gotUserAgent, "platen/") {
		t.Fatalf("User-Agent = %q, want platen/*", gotUserAgent)
	}
	if gotRequestID == "" {
		t.Fatal("X-Request-ID header missing")
	}
}

func TestClient_BusinessErrorUsesFixedMessage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Server message differs from the fixed table on purpose.
		_, _ = w.Write(envelopeJSON(3002, "printer p1 unreachable", nil))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)

	_, err := c.QueueStatus(context.Background())
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Code != CodePrinterOffline {
		t.Fatalf("Code = %d, want %d", apiErr.Code, CodePrinterOffline)
	}
	if apiErr.Message != "Printer is currently offline. Please check the printer connection." {
		t.Fatalf("Message = %q, want fixed offline message", apiErr.Message)
	}
	if apiErr.Details != "printer p1 unreachable" {
		t.Fatalf("Details = %q, want raw server message", apiErr.Details)
	}
}

func TestClient_UnknownBusinessCodeFallsBack(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(envelopeJSON(6042, "exotic failure", nil))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)

	_, err := c.Printers(context.Background())
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Message != "exotic failure" {
		t.Fatalf("Message = %q, want server-supplied fallback", apiErr.Message)
	}
}

func TestClient_HTTPStatusWithoutEnvelope(t *testing.T) {
	t.Parallel()

	statuses := map[string]int{
		"/api/printers":           http.StatusBadGateway,
		"/api/print/queue/status": http.StatusNotFound,
		"/api/health":             http.StatusTeapot,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", statuses[r.URL.Path])
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)

	_, err := c.Printers(context.Background())
	apiErr, ok := AsAPIError(err)
	if !ok || apiErr.Message != "Bad gateway. Server is temporarily unavailable." {
		t.Fatalf("error = %v, want 502 message", err)
	}

	_, err = c.QueueStatus(context.Background())
	apiErr, ok = AsAPIError(err)
	if !ok || apiErr.Message != "Resource not found." {
		t.Fatalf("error = %v, want 404 message", err)
	}

	_, err = c.Health(context.Background())
	apiErr, ok = AsAPIError(err)
	if !ok || apiErr.Message != "Request failed with status 418." {
		t.Fatalf("error = %v, want generic status message", err)
	}
}

func TestClient_EnvelopedErrorOnHTTPErrorStatus(t *testing.T) {
	t.Parallel()

	// The server wraps business errors in the envelope even when it
	// also sets an HTTP error status; the envelope must win.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write(envelopeJSON(4001, "no such task", nil))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)

	_, err := c.TaskStatus(context.Background(), "gone")
	apiErr, ok := AsAPIError(err)
	if !ok || apiErr.Code != CodeTaskNotFound {
		t.Fatalf("error = %v, want code 4001", err)
	}
	if apiErr.Message != "Task does not exist or has expired." {
		t.Fatalf("Message = %q, want fixed 4001 message", apiErr.Message)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	t.Parallel()

	// Reserved port with nothing listening.
	c := newTestClient(t, "127.0.0.1:1")

	_, err := c.Printers(context.Background())
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Code != 0 {
		t.Fatalf("Code = %d, want 0 for transport failure", apiErr.Code)
	}
	if apiErr.Message != networkErrorMessage {
		t.Fatalf("Message = %q, want network error message", apiErr.Message)
	}
}

func TestClient_ContextCancellationPassesThrough(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.QueueStatus(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestClient_SubmitPrintSendsMultipartFields(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	docPath := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(docPath, []byte("%PDF-1.4 test"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var gotFields map[string]string
	var gotFileName string
	var gotFileBytes int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/print/submit" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		gotFields = map[string]string{}
		for name, values := range r.MultipartForm.Value {
			gotFields[name] = values[0]
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
		} else {
			gotFileName = header.Filename
			raw, _ := os.ReadFile(docPath)
			buf := make([]byte, len(raw)+1)
			n, _ := file.Read(buf)
			gotFileBytes = n
			_ = file.Close()
		}
		_, _ = w.Write(envelopeJSON(1000, "created", map[string]string{"taskId": "t-99"}))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)

	var lastPercent int
	receipt, err := c.SubmitPrint(context.Background(), PrintRequest{
		FilePath:  docPath,
		PrinterID: "p1",
		Copies:    2,
		PaperSize: "A4",
		Duplex:    "duplex",
		ColorMode: "grayscale",
	}, func(percent int) { lastPercent = percent })
	if err != nil {
		t.Fatalf("SubmitPrint returned error: %v", err)
	}
	if receipt.TaskID != "t-99" {
		t.Fatalf("TaskID = %q, want t-99", receipt.TaskID)
	}

	want := map[string]string{
		"printerId": "p1",
		"copies":    "2",
		"paperSize": "A4",
		"duplex":    "duplex",
		"colorMode": "grayscale",
	}
	for name, value := range want {
		if gotFields[name] != value {
			t.Fatalf("field %s = %q, want %q", name, gotFields[name], value)
		}
	}
	if gotFileName != "report.pdf" {
		t.Fatalf("file name = %q, want report.pdf", gotFileName)
	}
	if gotFileBytes == 0 {
		t.Fatal("file part was empty")
	}
	if lastPercent != 100 {
		t.Fatalf("final progress = %d, want 100", lastPercent)
	}
}

func TestClient_SubmitPrintAcceptsBareStringReceipt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	docPath := filepath.Join(dir, "memo.docx")
	if err := os.WriteFile(docPath, []byte("doc"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(envelopeJSON(1000, "created", "t-42"))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)

	receipt, err := c.SubmitPrint(context.Background(), PrintRequest{
		FilePath: docPath, PrinterID: "p1", Copies: 1, PaperSize: "A4", Duplex: "simplex", ColorMode: "color",
	}, nil)
	if err != nil {
		t.Fatalf("SubmitPrint returned error: %v", err)
	}
	if receipt.TaskID != "t-42" {
		t.Fatalf("TaskID = %q, want t-42", receipt.TaskID)
	}
}

func TestClient_PostMessageEndpoints(t *testing.T) {
	t.Parallel()

	var gotMethods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethods = append(gotMethods, r.Method+" "+r.URL.Path)
		_, _ = w.Write(envelopeJSON(1000, "success", "done"))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)
	ctx := context.Background()

	for _, call := range []func() (string, error){
		func() (string, error) { return c.CancelTask(ctx, "t-1") },
		func() (string, error) { return c.CancelJob(ctx, "j-1") },
		func() (string, error) { return c.ClearQueue(ctx) },
		func() (string, error) { return c.PauseQueue(ctx) },
		func() (string, error) { return c.ResumeQueue(ctx) },
	} {
		msg, err := call()
		if err != nil {
			t.Fatalf("post returned error: %v", err)
		}
		if msg != "done" {
			t.Fatalf("message = %q, want done", msg)
		}
	}

	wantPaths := []string{
		"POST /api/print/task/t-1/cancel",
		"POST /api/print/jobs/j-1/cancel",
		"POST /api/print/queue/clear",
		"POST /api/print/queue/pause",
		"POST /api/print/queue/resume",
	}
	for i, want := range wantPaths {
		if gotMethods[i] != want {
			t.Fatalf("request %d = %q, want %q", i, gotMethods[i], want)
		}
	}
}

func TestClient_CustomAPIPrefix(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write(envelopeJSON(1000, "success", []Printer{}))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Config{BaseURL: server.URL, APIPrefix: "v2/api/"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.Printers(context.Background()); err != nil {
		t.Fatalf("Printers returned error: %v", err)
	}
	if gotPath != "/v2/api/printers" {
		t.Fatalf("path = %q, want /v2/api/printers", gotPath)
	}
}

func TestClient_InvalidEnvelopeOnSuccessStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "{not-json")
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)

	_, err := c.Printers(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("error = %v, want decode response error", err)
	}
}
