// Package http serves the employee pages.
//
// This file implements utilities for reading the bill form and its receipt
// from a multipart request.
package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"billed/internal/core"
)

// ErrUploadTooLarge is returned when the request body exceeds the upload limit.
var ErrUploadTooLarge = errors.New("fichier trop volumineux")

// ParseUploadRequest limits the body to maxBytes and parses it as multipart.
func ParseUploadRequest(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return ErrUploadTooLarge
		}
		return fmt.Errorf("parse multipart form: %w", err)
	}
	return nil
}

// ParseBillForm reads the new bill fields from a parsed form.
func ParseBillForm(r *http.Request) core.BillForm {
	return core.BillForm{
		Type:       sanitizeInput(r.FormValue("type")),
		Name:       sanitizeInput(r.FormValue("name")),
		Date:       sanitizeInput(r.FormValue("date")),
		Amount:     sanitizeInput(r.FormValue("amount")),
		VAT:        sanitizeInput(r.FormValue("vat")),
		Pct:        sanitizeInput(r.FormValue("pct")),
		Commentary: sanitizeInput(r.FormValue("commentary")),
	}
}

// ReadUpload returns the file posted under field. ok is false when the field
// is absent.
func ReadUpload(r *http.Request, field string) (upload core.FileUpload, ok bool, err error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return core.FileUpload{}, false, nil
	}
	if err != nil {
		return core.FileUpload{}, false, fmt.Errorf("read %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return core.FileUpload{}, false, fmt.Errorf("read %s: %w", field, err)
	}
	return core.FileUpload{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	}, true, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
