package webprint

import (
	"time"
)

// CodeSuccess is the envelope code signalling a successful operation.
const CodeSuccess = 1000

// Business error codes returned inside the response envelope.
const (
	CodeUnsupportedFormat = 2001
	CodeFileTooLarge      = 2002
	CodeUploadFailed      = 2003
	CodePrinterNotFound   = 3001
	CodePrinterOffline    = 3002
	CodePrinterBusy       = 3003
	CodePrinterError      = 3004
	CodeInvalidParameters = 3005
	CodeJobCreationFailed = 3006
	CodeTaskNotFound      = 4001
	CodeServerError       = 5000
)

// HealthStatus mirrors the payload of GET /api/health.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Printer describes one printer known to the service.
type Printer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"` // online, offline, busy, error
	Description string `json:"description,omitempty"`
}

// Online reports whether the printer can accept new jobs.
func (p Printer) Online() bool {
	return p.Status == "online"
}

// Status is the server-side task lifecycle state.
type Status string

// Task lifecycle states. The server may grow new ones; every switch over
// Status must carry a default arm.
const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusPrinting   Status = "PRINTING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusCancelled  Status = "CANCELLED"
)

// Terminal reports whether the task has reached a final state.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Color returns the semantic display color for a status. It is total:
// unrecognized values map to "default".
func (s Status) Color() string {
	switch s {
	case StatusPending:
		return "blue"
	case StatusProcessing, StatusPrinting:
		return "orange"
	case StatusCompleted:
		return "green"
	case StatusFailed, StatusCancelled:
		return "red"
	default:
		return "default"
	}
}

/// Text returns the human-readable label for a status. It is total:
// unrecognized values map to "Unknown".
func (s Status) Text() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusProcessing:
		return "Processing"
	case StatusPrinting:
		return "Printing"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// TaskStatus mirrors GET /api/print/task/{id}/status. It echoes the
// submitted print parameters but carries no file or printer name; those
// live only in the local registry.
type TaskStatus struct {
	TaskID     string `json:"taskId"`
	Status     Status `json:"status"`
	Message    string `json:"message"`
	Progress   int    `json:"progress"` // 0-100
	FileType   string `json:"fileType"`
	PrinterID  string `json:"printerId"`
	Copies     int    `json:"copies"`
	PaperSize  string `json:"paperSize"`
	Duplex     string `json:"duplex"`
	ColorMode  string `json:"colorMode"`
	SubmitTime string `json:"submitTime"`
}

// ParsedSubmitTime returns SubmitTime as time.Time when possible.
func (t TaskStatus) ParsedSubmitTime() time.Time {
	return parseTime(t.SubmitTime)
}

// PrintJob mirrors the job records returned by GET /api/print/jobs.
type PrintJob struct {
	ID          string `json:"id"`
	TaskID      string `json:"taskId"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	PrinterName string `json:"printerName"`
	Status      string `json:"status"`
	Copies      int    `json:"copies"`
	PaperSize   string `json:"paperSize"`
	Duplex      string `json:"duplex"`
	ColorMode   string `json:"colorMode"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// QueueStats breaks the queue down by state.
type QueueStats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

// QueueStatus mirrors GET /api/print/queue/status.
type QueueStatus struct {
	QueueSize       int        `json:"queueSize"`
	QueueStats      QueueStats `json:"queueStats"`
	SchedulerStatus string     `json:"schedulerStatus"` // running, paused, stopped
}

// SchedulerRunning reports whether the scheduler is actively draining
// the queue.
func (q QueueStatus) SchedulerRunning() bool {
	return q.SchedulerStatus == "running"
}

// PrintRequest carries everything needed to submit a document.
type PrintRequest struct {
	FilePath  string
	PrinterID string
	Copies    int
	PaperSize string
	Duplex    string // simplex, duplex
	ColorMode string // color, grayscale
}

// SubmitReceipt is the payload of a successful POST /api/print/submit.
type SubmitReceipt struct {
	TaskID    string `json:"taskId"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ValidationResult is the payload of POST /api/upload/validate.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
