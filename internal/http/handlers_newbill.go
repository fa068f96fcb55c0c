package http

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"

	"billed/internal/containers"
	"billed/internal/core"
	applog "billed/internal/log"
	"billed/internal/views"
)

const msgUnsupportedFile = "Seuls les fichiers jpg, jpeg et png sont acceptés."

// pathNavigator remembers where a container asked to go.
type pathNavigator struct{ path string }

func (n *pathNavigator) Navigate(path string) { n.path = path }

func (s *Server) handleNewBillPage(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, http.StatusOK)
	if err := s.views.NewBill(w, views.NewBillPage{}); err != nil {
		s.logRender(r, "newbill.html", err)
	}
}

// handleCheckFile validates the receipt as soon as it is picked.
func (s *Server) handleCheckFile(w http.ResponseWriter, r *http.Request) {
	if err := ParseUploadRequest(w, r, s.maxUpload); err != nil {
		s.writeFileStatus(w, r, http.StatusRequestEntityTooLarge, views.FileStatus{Error: uploadErrorMessage(err)})
		return
	}
	upload, ok, err := ReadUpload(r, "file")
	if err != nil || !ok {
		s.writeFileStatus(w, r, http.StatusUnprocessableEntity, views.FileStatus{Error: "Veuillez choisir un justificatif."})
		return
	}

	c := containers.NewNewBill(sessionFrom(r.Context()), s.store, nil)
	if err := c.HandleChangeFile(r.Context(), upload); err != nil {
		s.writeFileStatus(w, r, http.StatusUnprocessableEntity, views.FileStatus{Name: upload.Name, Error: msgUnsupportedFile})
		return
	}
	s.writeFileStatus(w, r, http.StatusOK, views.FileStatus{Name: upload.Name})
}

func (s *Server) writeFileStatus(w http.ResponseWriter, r *http.Request, status int, fs views.FileStatus) {
	var buf bytes.Buffer
	if err := s.views.FileStatus(&buf, fs); err != nil {
		s.logRender(r, "file_status.html", err)
	}
	resp := NewHTMXResponse().Status(status).BodyHTML(buf.Bytes())
	if fs.Error != "" {
		resp.TriggerErrorNotification(fs.Error)
	}
	resp.Write(w)
}

// handleSubmitBill uploads the receipt and saves the bill. Identical posts
// from the same user that overlap share a single submission.
func (s *Server) handleSubmitBill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentNewBill)

	if err := ParseUploadRequest(w, r, s.maxUpload); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrUploadTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		ErrorResponse(status, uploadErrorMessage(err)).Write(w)
		return
	}

	sess := sessionFrom(ctx)
	form := ParseBillForm(r)
	page := views.NewBillPage{Form: form}

	upload, hasFile, err := ReadUpload(r, "file")
	if err != nil {
		BadRequestError("Justificatif illisible").Write(w)
		return
	}

	nav := &pathNavigator{}
	c := containers.NewNewBill(sess, s.store, nav)

	if hasFile {
		page.File.Name = upload.Name
		if err := c.HandleChangeFile(ctx, upload); err != nil {
			page.File.Error = msgUnsupportedFile
			page.Errors = errorMessages(form.Validate())
			s.renderNewBillErrors(w, r, http.StatusUnprocessableEntity, page)
			return
		}
	}

	v, err, shared := s.submits.Do(submissionKey(sess.Email, form, upload), func() (any, error) {
		return c.HandleSubmit(ctx, form)
	})
	if shared {
		logger.InfoContext(ctx, "Merged concurrent submission", applog.FieldEmail, sess.Email)
	}

	switch {
	case err == nil:
	case errors.Is(err, containers.ErrSubmissionInFlight):
		ConflictError("Une note de frais est déjà en cours d'envoi.").Write(w)
		return
	case isValidationError(err):
		page.Errors = errorMessages(err)
		s.renderNewBillErrors(w, r, http.StatusUnprocessableEntity, page)
		return
	default:
		s.renderError(w, r, http.StatusBadGateway, err)
		return
	}

	bill := v.(core.Bill)
	s.bills.Invalidate(sess.Email)

	target := nav.path
	if target == "" {
		target = containers.RouteBills
	}
	if isHTMX(r) {
		NewHTMXResponse().
			TriggerBillCreated(bill.ID).
			TriggerFormReset().
			TriggerSuccessNotification("Note de frais envoyée").
			Redirect(target).
			Write(w)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// submissionKey identifies a post by its owner, form values and receipt, so
// only repeated clicks on the same bill are merged.
func submissionKey(email string, form core.BillForm, upload core.FileUpload) string {
	f := form.Trimmed()
	h := sha256.New()
	for _, v := range []string{f.Type, f.Name, f.Date, f.Amount, f.VAT, f.Pct, f.Commentary, upload.Name} {
		h.Write([]byte(v))
		h.Write([]byte{0})
	}
	h.Write(upload.Data)
	return normalizeEmail(email) + ":" + hex.EncodeToString(h.Sum(nil))
}

func (s *Server) renderNewBillErrors(w http.ResponseWriter, r *http.Request, status int, page views.NewBillPage) {
	msgs := append([]string(nil), page.Errors...)
	if page.File.Error != "" {
		msgs = append(msgs, page.File.Error)
	}

	var buf bytes.Buffer
	var err error
	if isHTMX(r) {
		err = s.views.FormErrors(&buf, msgs)
	} else {
		err = s.views.NewBill(&buf, page)
	}
	if err != nil {
		s.logRender(r, "newbill.html", err)
	}

	resp := NewHTMXResponse().Status(status).BodyHTML(buf.Bytes())
	if len(msgs) > 0 {
		resp.TriggerErrorNotification(msgs[0])
	}
	resp.Write(w)
}

var validationErrors = []error{
	core.ErrMissingDate,
	core.ErrMissingAmount,
	core.ErrMissingPct,
	core.ErrInvalidDate,
	core.ErrInvalidAmount,
	core.ErrInvalidPct,
	core.ErrInvalidStatus,
	core.ErrEmptyEmail,
	core.ErrNoStagedFile,
	core.ErrUnsupportedFileType,
}

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	var joined interface{ Unwrap() []error }
	return errors.As(err, &joined)
}

// errorMessages flattens joined errors into one message each.
func errorMessages(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, errorMessages(e)...)
		}
		return out
	}
	return []string{err.Error()}
}

func uploadErrorMessage(err error) string {
	if errors.Is(err, ErrUploadTooLarge) {
		return "Le justificatif est trop volumineux."
	}
	return "Formulaire invalide"
}
