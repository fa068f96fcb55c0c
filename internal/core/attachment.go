package core

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedFileType is returned when a receipt does not carry an allowed
// image extension.
var ErrUnsupportedFileType = errors.New("unsupported file type: only jpg, jpeg and png are accepted")

// ErrNoStagedFile is returned when a bill is submitted before a receipt was accepted.
var ErrNoStagedFile = errors.New("no receipt selected")

var allowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

type (
	// FileUpload is a file as selected by the user, before staging.
	FileUpload struct {
		Name        string
		ContentType string // declared by the client, informational only
		Data        []byte
	}

	// Attachment is a receipt ready to be stored.
	Attachment struct {
		Key         string
		Email       string
		FileName    string
		ContentType string
		Size        int64
		Data        []byte
	}

	// AttachmentRef is what the store hands back after creating an attachment.
	AttachmentRef struct {
		Key      string `json:"key"`
		FileURL  string `json:"fileUrl"`
		FileName string `json:"fileName"`
	}
)

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSpace(name)), "."))
}

// ValidateFileName applies the receipt allow-list to the file name. The
// declared MIME type plays no part in the decision.
func ValidateFileName(name string) error {
	if _, ok := allowedExtensions[Extension(name)]; !ok {
		return ErrUnsupportedFileType
	}
	return nil
}

// SniffContentType detects the MIME type from the file content. It falls back
// to the declared type when there is no content to look at.
func SniffContentType(f FileUpload) string {
	if len(f.Data) == 0 {
		if f.ContentType != "" {
			return f.ContentType
		}
		return "application/octet-stream"
	}
	return mimetype.Detect(f.Data).String()
}
