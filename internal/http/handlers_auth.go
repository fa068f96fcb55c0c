package http

import (
	"net/http"

	"billed/internal/containers"
	"billed/internal/core"
	applog "billed/internal/log"
	"billed/internal/views"
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, err := s.sessions.read(r); err == nil && sess.IsEmployee() {
		http.Redirect(w, r, containers.RouteBills, http.StatusSeeOther)
		return
	}
	writeHTML(w, http.StatusOK)
	if err := s.views.Login(w, views.LoginPage{}); err != nil {
		s.logRender(r, "login.html", err)
	}
}

// handleLogin opens an employee session for the posted email.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Formulaire invalide").Write(w)
		return
	}

	sess := core.Session{
		Type:  core.UserType(sanitizeInput(r.PostFormValue("type"))),
		Email: normalizeEmail(r.PostFormValue("email")),
	}
	if sess.Type == "" {
		sess.Type = core.UserEmployee
	}

	var msg string
	switch err := sess.Validate(); {
	case err != nil:
		msg = "Veuillez saisir une adresse email valide."
	case !sess.IsEmployee():
		msg = "Seuls les employés peuvent se connecter ici."
	}
	if msg != "" {
		writeHTML(w, http.StatusUnprocessableEntity)
		if err := s.views.Login(w, views.LoginPage{Email: sess.Email, Error: msg}); err != nil {
			s.logRender(r, "login.html", err)
		}
		return
	}

	if err := s.sessions.set(w, r, sess); err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Employee logged in", applog.FieldEmail, sess.Email)
	http.Redirect(w, r, containers.RouteBills, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.clear(w)
	if isHTMX(r) {
		NewHTMXResponse().Redirect(containers.RouteLogin).Write(w)
		return
	}
	http.Redirect(w, r, containers.RouteLogin, http.StatusSeeOther)
}
