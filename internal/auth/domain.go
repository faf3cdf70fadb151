// Package auth resolves the caller identity asserted by the upstream gateway.
// Credentials are verified before requests reach this service.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/guriri-express/dispatch/internal/shared"
)

// Gateway headers carrying the verified identity.
const (
	HeaderRole = "X-Caller-Role"
	HeaderID   = "X-Caller-Id"
)

// ErrNoIdentity indicates a request without identity headers.
var ErrNoIdentity = errors.New("auth: no caller identity")

// IdentityResolver extracts the caller from a request.
type IdentityResolver interface {
	Resolve(r *http.Request) (shared.Caller, error)
}

// HeaderResolver reads the identity from trusted gateway headers.
type HeaderResolver struct{}

// Resolve implements IdentityResolver.
func (HeaderResolver) Resolve(r *http.Request) (shared.Caller, error) {
	rawRole := strings.TrimSpace(r.Header.Get(HeaderRole))
	if rawRole == "" {
		return shared.Caller{}, ErrNoIdentity
	}
	role, err := shared.ParseRole(rawRole)
	if err != nil {
		return shared.Caller{}, err
	}
	return shared.Caller{Role: role, ID: strings.TrimSpace(r.Header.Get(HeaderID))}, nil
}
