package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrymomot/lifevault/internal/auth"
	"github.com/dmitrymomot/lifevault/internal/store"
	"github.com/dmitrymomot/lifevault/internal/twofactor"
	"github.com/dmitrymomot/lifevault/internal/vault"
	"github.com/dmitrymomot/lifevault/pkg/logger"
	"github.com/dmitrymomot/lifevault/pkg/ratelimiter"
	"github.com/dmitrymomot/lifevault/pkg/vaultcrypto"
)

// HTTPError is an error with a fixed status and machine readable code.
type HTTPError struct {
	Status int
	Code   string
}

func (e HTTPError) Error() string { return e.Code }

var (
	ErrBadRequest      = HTTPError{Status: http.StatusBadRequest, Code: "bad_request"}
	ErrNotFound        = HTTPError{Status: http.StatusNotFound, Code: "not_found"}
	ErrTooManyRequests = HTTPError{Status: http.StatusTooManyRequests, Code: "rate_limited"}
)

// ValidationError maps request fields to their failed rules.
type ValidationError map[string][]string

func (e ValidationError) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e))
	for field, msgs := range e {
		if len(msgs) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", field, msgs[0]))
		}
	}
	return "validation error: " + strings.Join(parts, ", ")
}

func (e ValidationError) add(field, msg string) {
	e[field] = append(e[field], msg)
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Ordered: the first match wins. Crypto failures hide their cause.
var errorMappings = []errorMapping{
	{target: twofactor.ErrInvalidCode, status: http.StatusBadRequest, code: "invalid_code"},
	{target: twofactor.ErrCodeRequired, status: http.StatusBadRequest, code: "code_required"},
	{target: twofactor.ErrAlreadyEnabled, status: http.StatusConflict, code: "two_factor_enabled"},
	{target: twofactor.ErrNotEnabled, status: http.StatusConflict, code: "two_factor_not_enabled"},
	{target: twofactor.ErrNotPending, status: http.StatusConflict, code: "two_factor_not_pending"},
	{target: twofactor.ErrConcurrentUpdate, status: http.StatusConflict, code: "concurrent_update"},
	{target: vault.ErrNotFound, status: http.StatusNotFound, code: "not_found"},
	{target: store.ErrNotFound, status: http.StatusNotFound, code: "not_found"},
	{target: vault.ErrServiceNameRequired, status: http.StatusUnprocessableEntity, code: "validation_error"},
	{target: vault.ErrPasswordRequired, status: http.StatusUnprocessableEntity, code: "validation_error"},
	{target: vault.ErrInvalidPasswordLength, status: http.StatusUnprocessableEntity, code: "validation_error"},
	{target: auth.ErrMissingToken, status: http.StatusUnauthorized, code: "unauthorized"},
	{target: auth.ErrInvalidToken, status: http.StatusUnauthorized, code: "unauthorized"},
	{target: auth.ErrWrongTokenKind, status: http.StatusForbidden, code: "forbidden"},
	{target: vaultcrypto.ErrDecryption, status: http.StatusInternalServerError, code: "decryption_failed", message: "stored secret could not be decrypted"},
	{target: vaultcrypto.ErrCrypto, status: http.StatusInternalServerError, code: "crypto_unavailable", message: "encryption is unavailable"},
	{target: store.ErrUnavailable, status: http.StatusServiceUnavailable, code: "service_unavailable"},
	{target: ratelimiter.ErrStoreUnavailable, status: http.StatusServiceUnavailable, code: "service_unavailable"},
}

// errorDetail classifies err into a status and response detail.
func errorDetail(err error) (int, *ErrorDetail) {
	var verr ValidationError
	if errors.As(err, &verr) {
		return http.StatusUnprocessableEntity, &ErrorDetail{
			Code:    "validation_error",
			Message: "request validation failed",
			Details: verr,
		}
	}

	var rl *twofactor.RateLimitError
	if errors.As(err, &rl) {
		return http.StatusTooManyRequests, &ErrorDetail{Code: "rate_limited", Message: twofactor.ErrRateLimited.Error()}
	}

	var herr HTTPError
	if errors.As(err, &herr) {
		return herr.Status, &ErrorDetail{Code: herr.Code, Message: http.StatusText(herr.Status)}
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			msg := m.message
			if msg == "" {
				msg = m.target.Error()
			}
			return m.status, &ErrorDetail{Code: m.code, Message: msg}
		}
	}

	return http.StatusInternalServerError, &ErrorDetail{
		Code:    "internal_error",
		Message: http.StatusText(http.StatusInternalServerError),
	}
}

// errorWriter renders errors in the envelope and logs server-side failures.
type errorWriter struct {
	log *slog.Logger
}

func (ew errorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := errorDetail(err)

	var rl *twofactor.RateLimitError
	if errors.As(err, &rl) {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(rl)))
	}

	if status >= http.StatusInternalServerError {
		ew.log.ErrorContext(r.Context(), "request failed", logger.Error(err), slog.Int("status", status))
	} else {
		ew.log.DebugContext(r.Context(), "request rejected", logger.Error(err), slog.Int("status", status))
	}
	writeJSON(w, status, Envelope{Error: detail})
}

func retryAfterSeconds(rl *twofactor.RateLimitError) int {
	return max(1, int(math.Ceil(rl.RetryAfter.Seconds())))
}

func (ew errorWriter) limited(w http.ResponseWriter, r *http.Request, _ *ratelimiter.Result) {
	// Retry-After is already set by the limiter middleware.
	ew.log.WarnContext(r.Context(), "login attempts throttled by client address")
	writeJSON(w, http.StatusTooManyRequests, Envelope{Error: &ErrorDetail{
		Code:    ErrTooManyRequests.Code,
		Message: twofactor.ErrRateLimited.Error(),
	}})
}
