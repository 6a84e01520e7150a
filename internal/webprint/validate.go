package webprint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize is the upload size cap in bytes (50 MiB).
const MaxFileSize = 50 * 1024 * 1024

// extensionMIMETypes maps every accepted extension to its MIME type.
var extensionMIMETypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// SupportedExtensions returns the accepted upload extensions.
func SupportedExtensions() []string {
	return []string{".pdf", ".doc", ".docx"}
}

// MIMETypeFor returns the MIME type for an accepted extension, or ""
// for anything else.
func MIMETypeFor(ext string) string {
	return extensionMIMETypes[strings.ToLower(ext)]
}

// ValidateFile enforces the client-side upload rules before any bytes
// leave the machine: the file must exist, carry an accepted extension,
// and be at most MaxFileSize bytes. Violations surface as *APIError
// with the matching business code so they render exactly like the
// server's own rejections.
func ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat upload file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("upload path %q is a directory", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := extensionMIMETypes[ext]; !ok {
		return businessError(CodeUnsupportedFormat, "")
	}
	if info.Size() > MaxFileSize {
		return businessError(CodeFileTooLarge, "")
	}
	return nil
}
