package security

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// bearerClaims is the claim set carried by tokens issued and accepted by
// BearerScheme.
type bearerClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// BearerScheme implements bearer-token authentication with HMAC-signed
// JWTs. Tokens carry the user id in the subject claim and the role in a
// custom claim.
type BearerScheme struct {
	signingKey []byte
	realm      string
	lifetime   time.Duration
	clockSkew  time.Duration
	timeFunc   func() time.Time // injectable for testing
}

// NewBearerScheme returns a BearerScheme signing and validating tokens
// with the given key. The key must be at least 32 bytes.
func NewBearerScheme(realm string, signingKey []byte, lifetime time.Duration) (*BearerScheme, error) {
	if len(signingKey) < 32 {
		return nil, fmt.Errorf("bearer signing key must be at least 32 bytes")
	}
	return &BearerScheme{
		signingKey: signingKey,
		realm:      realm,
		lifetime:   lifetime,
		clockSkew:  2 * time.Minute,
		timeFunc:   time.Now,
	}, nil
}

// IssueToken creates a signed token for the given identity.
func (s *BearerScheme) IssueToken(id *Identity) (string, error) {
	now := s.timeFunc()
	claims := bearerClaims{
		Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign bearer token: %w", err)
	}
	return signed, nil
}

// Authenticate implements Scheme.
func (s *BearerScheme) Authenticate(r *http.Request) (*Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, nil
	}

	token, err := jwt.ParseWithClaims(
		parts[1],
		&bearerClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(s.timeFunc),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("bearer auth: %w", ErrUnauthorized)
	}
	claims, ok := token.Claims.(*bearerClaims)
	if !ok {
		return nil, fmt.Errorf("bearer auth: %w", ErrUnauthorized)
	}
	return &Identity{UserID: claims.Subject, Role: claims.Role}, nil
}

// Challenge implements Scheme.
func (s *BearerScheme) Challenge() string {
	return fmt.Sprintf("Bearer realm=%q", s.realm)
}
