package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/guriri-express/dispatch/internal/platform/httpx"
	"github.com/guriri-express/dispatch/internal/shared"
)

// Middleware attaches the resolved caller to the request context.
type Middleware struct {
	Resolver IdentityResolver
	Logger   *slog.Logger
}

// RequireCaller rejects requests without a valid identity. Scoped roles
// without an id are refused here instead of being served unscoped data.
func (m Middleware) RequireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := m.Resolver.Resolve(r)
		if err == nil {
			err = caller.Validate()
		}
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("caller rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
			}
			if errors.Is(err, ErrNoIdentity) {
				err = httpx.ErrUnauthorized
			}
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithCaller(r.Context(), caller)))
	})
}

// RequireRole allows only the listed roles through. It expects RequireCaller
// to run first.
func (m Middleware) RequireRole(roles ...shared.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := shared.CallerFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			for _, role := range roles {
				if caller.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.RespondError(w, shared.ErrAccessDenied)
		})
	}
}
