package http

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"billed/internal/containers"
	"billed/internal/core"
)

// SessionCookie holds the connected user as {"type":..., "email":...}.
const SessionCookie = "user"

const sessionMaxAge = 12 * time.Hour

var errBadSession = errors.New("invalid session cookie")

type sessionKey struct{}

// sessionCodec signs the session JSON so the cookie cannot be forged.
type sessionCodec struct {
	key []byte
}

func newSessionCodec(key []byte) (*sessionCodec, error) {
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}
	return &sessionCodec{key: key}, nil
}

func (c *sessionCodec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (c *sessionCodec) encode(s core.Session) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(raw)
	return payload + "." + c.sign(payload), nil
}

func (c *sessionCodec) decode(value string) (core.Session, error) {
	payload, sig, ok := strings.Cut(value, ".")
	if !ok || !hmac.Equal([]byte(sig), []byte(c.sign(payload))) {
		return core.Session{}, errBadSession
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return core.Session{}, errBadSession
	}
	var s core.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return core.Session{}, errBadSession
	}
	if err := s.Validate(); err != nil {
		return core.Session{}, err
	}
	return s, nil
}

func (c *sessionCodec) set(w http.ResponseWriter, r *http.Request, s core.Session) error {
	value, err := c.encode(s)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (c *sessionCodec) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *sessionCodec) read(r *http.Request) (core.Session, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return core.Session{}, err
	}
	return c.decode(cookie.Value)
}

// requireEmployee sends visitors without an employee session back to login.
func (c *sessionCodec) requireEmployee(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := c.read(r)
		if err != nil || !s.IsEmployee() {
			if isHTMX(r) {
				NewHTMXResponse().Redirect(containers.RouteLogin).Write(w)
				return
			}
			http.Redirect(w, r, containers.RouteLogin, http.StatusSeeOther)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
	}
}

// sessionFrom returns the session stored by requireEmployee.
func sessionFrom(ctx context.Context) core.Session {
	s, _ := ctx.Value(sessionKey{}).(core.Session)
	return s
}
