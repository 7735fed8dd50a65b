// Package httpapi exposes the two-factor, security and vault services over a
// JSON REST API.
package httpapi

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/lifevault/internal/audit"
	"github.com/dmitrymomot/lifevault/internal/auth"
	"github.com/dmitrymomot/lifevault/internal/twofactor"
	"github.com/dmitrymomot/lifevault/internal/vault"
	"github.com/dmitrymomot/lifevault/pkg/httpserver"
	"github.com/dmitrymomot/lifevault/pkg/logger"
	"github.com/dmitrymomot/lifevault/pkg/qrcode"
	"github.com/dmitrymomot/lifevault/pkg/ratelimiter"
)

// Deps are the collaborators of the API. LoginLimiter and ReadinessChecks are
// optional.
type Deps struct {
	Logger          *slog.Logger
	Tokens          *auth.Issuer
	TwoFactor       *twofactor.Service
	Vault           *vault.Service
	QR              *qrcode.Encoder
	LoginLimiter    ratelimiter.Limiter
	ReadinessChecks []httpserver.Check
}

type api struct {
	log       *slog.Logger
	errs      errorWriter
	tokens    *auth.Issuer
	twoFactor *twofactor.Service
	vault     *vault.Service
	qr        *qrcode.Encoder
}

// NewRouter builds the HTTP handler serving the whole API.
func NewRouter(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = logger.Discard()
	}
	log = log.With(logger.Component("httpapi"))
	qr := d.QR
	if qr == nil {
		qr = qrcode.NewEncoder()
	}
	a := &api{
		log:       log,
		errs:      errorWriter{log: log},
		tokens:    d.Tokens,
		twoFactor: d.TwoFactor,
		vault:     d.Vault,
		qr:        qr,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestMeta)
	r.Use(accessLog(log))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) { a.errs.write(w, r, ErrNotFound) })
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		a.errs.write(w, r, HTTPError{Status: http.StatusMethodNotAllowed, Code: "method_not_allowed"})
	})

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, 2*time.Second, d.ReadinessChecks...))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if d.LoginLimiter != nil {
				r.Use(ratelimiter.Middleware(d.LoginLimiter, clientIP,
					ratelimiter.WithLimitedHandler(a.errs.limited),
					ratelimiter.WithErrorHandler(a.errs.write),
				))
			}
			r.Use(auth.Middleware(d.Tokens, a.errs.write, auth.KindMFA))
			r.Post("/auth/2fa/login", a.loginSecondFactor)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(d.Tokens, a.errs.write, auth.KindAccess))

			r.Route("/security", func(r chi.Router) {
				r.Get("/2fa", a.twoFactorStatus)
				r.Post("/2fa/enable", a.enableTwoFactor)
				r.Post("/2fa/verify", a.verifyTwoFactor)
				r.Post("/2fa/disable", a.disableTwoFactor)
				r.Post("/2fa/backup-codes", a.regenerateBackupCodes)
				r.Get("/summary", a.securitySummary)
				r.Get("/audit-logs", a.auditLogs)
			})

			r.Route("/passwords", func(r chi.Router) {
				r.Get("/", a.listPasswords)
				r.Post("/", a.createPassword)
				r.Get("/generate", a.generatePassword)
				r.Get("/{id}", a.revealPassword)
				r.Put("/{id}", a.updatePassword)
				r.Delete("/{id}", a.deletePassword)
			})
		})
	})

	return r
}

// requestMeta exposes the client address, user agent and request id to the
// security event recorder.
func requestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := audit.WithRequestMeta(r.Context(), audit.RequestMeta{
			IP:        clientIP(r),
			UserAgent: r.UserAgent(),
			RequestID: middleware.GetReqID(r.Context()),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func accessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.InfoContext(r.Context(), "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				logger.Duration(time.Since(start)),
			)
		})
	}
}

// clientIP strips the port from RemoteAddr, which RealIP has already
// rewritten from forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
