package http

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"billed/internal/cache"
	applog "billed/internal/log"
	"billed/internal/middleware/ratelimit"
	"billed/internal/middleware/security"
	"billed/internal/middleware/trace"
	"billed/internal/store"
	"billed/internal/views"
	appweb "billed/web"
)

// Deps are the collaborators of the web server.
type Deps struct {
	Store       store.BillStore
	Attachments store.AttachmentReader // nil when receipts live elsewhere
	Ready       func(ctx context.Context) error

	Views  *views.Renderer
	Logger *applog.Logger

	MaxUploadBytes int64
	SessionKey     []byte
	RateLimit      ratelimit.Config
	ListCacheTTL   time.Duration
}

type Server struct {
	http.Server

	views       *views.Renderer
	store       store.BillStore
	bills       *cache.BillListCache
	attachments store.AttachmentReader
	ready       func(ctx context.Context) error
	sessions    *sessionCodec
	logger      *applog.Logger
	maxUpload   int64

	// one submission per user at a time
	submits singleflight.Group

	limiter *ratelimit.Limiter
	caches  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("bill store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	renderer := deps.Views
	if renderer == nil {
		var err error
		if renderer, err = views.New(); err != nil {
			return nil, err
		}
	}
	sessions, err := newSessionCodec(deps.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("session key: %w", err)
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 10 << 20
	}
	if deps.ListCacheTTL <= 0 {
		deps.ListCacheTTL = 30 * time.Second
	}

	s := &Server{
		views:       renderer,
		store:       deps.Store,
		bills:       cache.NewBillListCache(deps.Store, 500, deps.ListCacheTTL),
		attachments: deps.Attachments,
		ready:       deps.Ready,
		sessions:    sessions,
		logger:      logger.WithComponent(applog.ComponentHTTP),
		maxUpload:   deps.MaxUploadBytes,
		limiter:     ratelimit.NewLimiter(deps.RateLimit),
		caches:      cache.NewManager(),
	}
	s.caches.Register(s.bills)
	s.caches.StartCleanup(10 * time.Minute)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)

	employee := s.sessions.requireEmployee
	mux.HandleFunc("GET /employee/bills", employee(s.handleBills))
	mux.HandleFunc("GET /employee/bills/{id}/preview", employee(s.handleBillPreview))
	mux.HandleFunc("GET /employee/bill/new", employee(s.handleNewBillPage))
	mux.HandleFunc("POST /employee/bill/file", employee(s.handleCheckFile))
	mux.HandleFunc("POST /employee/bill/new", employee(s.handleSubmitBill))
	mux.HandleFunc("GET "+store.AttachmentPath+"{key}", employee(s.handleAttachment))

	clientIP := security.NewClientIP()
	limitPosts := s.limiter.Middleware(func(r *http.Request) string {
		if r.Method != http.MethodPost {
			return ""
		}
		return clientIP.Extract(r)
	}, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, clientIP.Extract(r),
			applog.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "Trop de requêtes, réessayez dans une minute.").Write(w)
	})

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.logger, clientIP.Extract)

	return tracer.Middleware(headers.Middleware(limitPosts(mux)))
}

// Shutdown stops background routines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// renderError writes the error page, or an error fragment for htmx.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if isHTMX(r) {
		ErrorResponse(status, views.ErrorHeading(err)).Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if rerr := s.views.Error(w, views.NewErrorPage(err)); rerr != nil {
		s.logRender(r, "error.html", rerr)
	}
}

func (s *Server) logRender(r *http.Request, name string, err error) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed",
		applog.FieldError, err,
		"template", name)
}

func writeHTML(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
