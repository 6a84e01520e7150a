package webprint

import (
	"errors"
	"fmt"
)

// codeMessages maps business error codes to the fixed user-facing
// strings. Other layers rely on these exact values; change them only in
// lockstep with the front-end copy deck.
var codeMessages = map[int]string{
	CodeSuccess:           "Operation completed successfully",
	CodeUnsupportedFormat: "Unsupported file format. Please select a PDF, DOC, or DOCX file.",
	CodeFileTooLarge:      "File size exceeds the maximum limit of 50MB.",
	CodeUploadFailed:      "File upload failed. Please try again.",
	CodePrinterNotFound:   "Printer not found. Please check if the printer is available.",
	CodePrinterOffline:    "Printer is currently offline. Please check the printer connection.",
	CodePrinterBusy:       "Printer is busy. Please wait and try again later.",
	CodePrinterError:      "Printer encountered an error. Please check the printer status.",
	CodeInvalidParameters: "Invalid print parameters. Please check your settings.",
	CodeJobCreationFailed: "Failed to create print job. Please try again.",
	CodeTaskNotFound:      "Task does not exist or has expired.",
	CodeServerError:       "Internal server error. Please try again later or contact support.",
}

// statusMessages maps HTTP status codes (responses without a valid
// envelope) to user-facing strings.
var statusMessages = map[int]string{
	400: "Bad request. Please check your input.",
	401: "Unauthorized. Please check your credentials.",
	403: "Access forbidden.",
	404: "Resource not found.",
	408: "Request timeout. Please try again.",
	429: "Too many requests. Please wait and try again.",
	500: "Internal server error. Please try again later.",
	502: "Bad gateway. Server is temporarily unavailable.",
	503: "Service unavailable. Please try again later.",
	504: "Gateway timeout. Please try again.",
}

const networkErrorMessage = "Network connection failed. Please check your internet connection."

// APIError is the single error type raised for any non-success outcome:
// a business error code in the envelope, an HTTP error status without
// an envelope, or a transport failure. Code is 0 for transport-level
// failures.
type APIError struct {
	Code    int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Code == 0 {
		return e.Message
	}
	return fmt.Sprintf("webprint: code %d: %s", e.Code, e.Message)
}

// CodeMessage resolves the user-facing message for a business code:
// fixed table first, then the server-supplied message, then a generic
// fallback naming the code.
func CodeMessage(code int, serverMessage string) string {
	if msg, ok := codeMessages[code]; ok {
		return msg
	}
	if serverMessage != "" {
		return serverMessage
	}
	return fmt.Sprintf("Unknown error occurred (Code: %d)", code)
}

// StatusMessage resolves the user-facing message for an HTTP error
// status without a valid envelope.
func StatusMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return fmt.Sprintf("Request failed with status %d.", status)
}

func businessError(code int, serverMessage string) *APIError {
	return &APIError{
		Code:    code,
		Message: CodeMessage(code, serverMessage),
		Details: serverMessage,
	}
}

func httpStatusError(status int) *APIError {
	return &APIError{
		Code:    0,
		Message: StatusMessage(status),
		Details: fmt.Sprintf("http status %d", status),
	}
}

func transportError(err error) *APIError {
	return &APIError{
		Code:    0,
		Message: networkErrorMessage,
		Details: err.Error(),
	}
}

// UserMessage returns the user-facing message for err: the APIError
// message when err carries one, otherwise err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Message
	}
	return err.Error()
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
