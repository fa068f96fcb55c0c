package http

import (
	"errors"
	"net/http"

	"billed/internal/containers"
	"billed/internal/store"
	"billed/internal/views"
)

func (s *Server) handleBills(w http.ResponseWriter, r *http.Request) {
	c := containers.NewBills(sessionFrom(r.Context()), s.bills, nil)

	rows, err := c.List(r.Context())
	if err != nil {
		s.renderError(w, r, listErrorStatus(err), err)
		return
	}

	writeHTML(w, http.StatusOK)
	if err := s.views.Bills(w, views.BillsPage{Rows: rows}); err != nil {
		s.logRender(r, "bills.html", err)
	}
}

// handleBillPreview renders the receipt modal for one of the user's bills.
func (s *Server) handleBillPreview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	c := containers.NewBills(sessionFrom(r.Context()), s.bills, nil)

	rows, err := c.List(r.Context())
	if err != nil {
		s.renderError(w, r, listErrorStatus(err), err)
		return
	}
	for _, row := range rows {
		if row.Bill.ID != id {
			continue
		}
		writeHTML(w, http.StatusOK)
		if err := s.views.Modal(w, c.HandleClickIconEye(row.Bill)); err != nil {
			s.logRender(r, "modal.html", err)
		}
		return
	}
	NotFoundError("Erreur 404: note de frais introuvable").Write(w)
}

// listErrorStatus keeps a store 404 as 404; anything else is a bad gateway.
func listErrorStatus(err error) int {
	var se *store.StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}
