package auth

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"
)

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// LogUserID is a logger.ContextExtractor adding the authenticated user id.
func LogUserID(ctx context.Context) (slog.Attr, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	return slog.String("user_id", id.UserID.String()), true
}

// ErrorHandler writes the response for a rejected request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Middleware requires a bearer token of one of the accepted kinds and stores
// the Identity in the request context.
func Middleware(issuer *Issuer, onError ErrorHandler, accepted ...Kind) func(http.Handler) http.Handler {
	if len(accepted) == 0 {
		accepted = []Kind{KindAccess}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := issuer.Parse(bearerToken(r))
			if err != nil {
				onError(w, r, err)
				return
			}
			if !slices.Contains(accepted, id.Kind) {
				onError(w, r, ErrWrongTokenKind)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
