package http

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	applog "billed/internal/log"
	"billed/internal/store"
)

// handleAttachment serves a stored receipt to its owner.
func (s *Server) handleAttachment(w http.ResponseWriter, r *http.Request) {
	if s.attachments == nil {
		http.NotFound(w, r)
		return
	}

	key := r.PathValue("key")
	a, err := s.attachments.ReadAttachment(r.Context(), key)
	if err != nil {
		var se *store.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to read attachment",
			"key", key,
			applog.FieldError, err)
		http.Error(w, "Erreur 500", http.StatusInternalServerError)
		return
	}

	sess := sessionFrom(r.Context())
	if a.Email != "" && !strings.EqualFold(a.Email, sess.Email) {
		http.NotFound(w, r)
		return
	}

	ct := a.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("Content-Disposition", `inline; filename="`+strings.ReplaceAll(a.FileName, `"`, "")+`"`)
	http.ServeContent(w, r, a.FileName, time.Time{}, bytes.NewReader(a.Data))
}
