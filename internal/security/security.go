// Package security provides pluggable authentication schemes and
// authorization requirements for resource operations.
package security

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// ErrUnauthorized is returned when a request carries no credentials that
// satisfy an operation's security requirements.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when a request is authenticated but the
// identity lacks the permission a requirement demands.
var ErrForbidden = errors.New("forbidden")

// Identity is an authenticated principal established by a Scheme.
type Identity struct {
	UserID string
	Role   string
	Attrs  map[string]string
}

type contextKey string

const identityContextKey contextKey = "identity"

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	return id, ok
}

// Requirement authorizes a request based on the identity on its context.
type Requirement interface {
	// Authorize returns nil if the context satisfies the requirement,
	// ErrUnauthorized if no suitable identity is present, or ErrForbidden
	// if the identity is present but insufficient.
	Authorize(ctx context.Context) error

	// Scheme reports the authentication scheme that establishes the
	// identity this requirement examines. May be nil for requirements
	// that inspect ambient context only.
	Scheme() Scheme
}

// Scheme extracts credentials from an HTTP request and establishes an
// identity.
type Scheme interface {
	// Authenticate inspects the request's credentials. It returns
	// (nil, nil) when the request carries no credentials for this scheme,
	// an identity when authentication succeeds, and an error when
	// credentials are present but invalid.
	Authenticate(r *http.Request) (*Identity, error)

	// Challenge returns the WWW-Authenticate header value sent with 401
	// responses.
	Challenge() string
}

// Authenticator verifies a user id and password, returning the resulting
// identity or an error.
type Authenticator func(userID, password string) (*Identity, error)

// BasicScheme implements HTTP Basic authentication over a pluggable
// Authenticator.
type BasicScheme struct {
	realm string
	auth  Authenticator
}

// NewBasicScheme returns a BasicScheme for the given realm.
func NewBasicScheme(realm string, auth Authenticator) *BasicScheme {
	return &BasicScheme{realm: realm, auth: auth}
}

// Authenticate implements Scheme.
func (s *BasicScheme) Authenticate(r *http.Request) (*Identity, error) {
	user, pass, ok := r.BasicAuth()
	if !ok {
		return nil, nil
	}
	id, err := s.auth(user, pass)
	if err != nil {
		return nil, fmt.Errorf("basic auth: %w", ErrUnauthorized)
	}
	if id == nil {
		return nil, fmt.Errorf("basic auth: %w", ErrUnauthorized)
	}
	return id, nil
}

// Challenge implements Scheme.
func (s *BasicScheme) Challenge() string {
	return fmt.Sprintf("Basic realm=%q", s.realm)
}

// Credential is a stored user record for BcryptAuthenticator.
type Credential struct {
	PasswordHash string
	Role         string
}

// BcryptAuthenticator builds an Authenticator from a static user table
// whose passwords are bcrypt hashes.
func BcryptAuthenticator(users map[string]Credential) Authenticator {
	return func(userID, password string) (*Identity, error) {
		cred, ok := users[userID]
		if !ok {
			// Burn a comparison anyway so missing and present users
			// take the same time.
			_ = bcrypt.CompareHashAndPassword(
				[]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B0pZtWzjlWl0TLuP1gsQsadDbDZe"),
				[]byte(password),
			)
			return nil, ErrUnauthorized
		}
		if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
			return nil, ErrUnauthorized
		}
		return &Identity{UserID: userID, Role: cred.Role}, nil
	}
}

// RoleRequirement authorizes identities holding a specific role.
type RoleRequirement struct {
	Role       string
	AuthScheme Scheme
}

// Authorize implements Requirement.
func (r *RoleRequirement) Authorize(ctx context.Context) error {
	id, ok := IdentityFromContext(ctx)
	if !ok || id == nil {
		return ErrUnauthorized
	}
	if id.Role != r.Role {
		return ErrUnauthorized
	}
	return nil
}

// Scheme implements Requirement.
func (r *RoleRequirement) Scheme() Scheme {
	return r.AuthScheme
}
