package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "0123456789abcdef0123456789abcdef"

func newTestBearerScheme(t *testing.T) *BearerScheme {
	t.Helper()
	scheme, err := NewBearerScheme("api", []byte(testSigningKey), time.Hour)
	require.NoError(t, err)
	return scheme
}

func TestNewBearerSchemeRejectsShortKey(t *testing.T) {
	_, err := NewBearerScheme("api", []byte("short"), time.Hour)
	assert.Error(t, err)
}

func TestBearerRoundTrip(t *testing.T) {
	scheme := newTestBearerScheme(t)

	token, err := scheme.IssueToken(&Identity{UserID: "u1", Role: "admin"})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	id, err := scheme.Authenticate(r)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, "admin", id.Role)
}

func TestBearerNoCredentials(t *testing.T) {
	scheme := newTestBearerScheme(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	id, err := scheme.Authenticate(r)
	assert.NoError(t, err)
	assert.Nil(t, id)

	// A Basic header is not bearer credentials.
	r.SetBasicAuth("u", "p")
	id, err = scheme.Authenticate(r)
	assert.NoError(t, err)
	assert.Nil(t, id)
}

func TestBearerInvalidToken(t *testing.T) {
	scheme := newTestBearerScheme(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer not-a-token")
	_, err := scheme.Authenticate(r)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestBearerWrongKey(t *testing.T) {
	scheme := newTestBearerScheme(t)
	other, err := NewBearerScheme("api", []byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	require.NoError(t, err)

	token, err := other.IssueToken(&Identity{UserID: "u1", Role: "admin"})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	_, err = scheme.Authenticate(r)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestBearerExpiredToken(t *testing.T) {
	scheme := newTestBearerScheme(t)

	// Issue in the past, beyond lifetime plus clock skew.
	past := time.Now().Add(-3 * time.Hour)
	scheme.timeFunc = func() time.Time { return past }
	token, err := scheme.IssueToken(&Identity{UserID: "u1", Role: "admin"})
	require.NoError(t, err)

	scheme.timeFunc = time.Now
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	_, err = scheme.Authenticate(r)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestBearerChallenge(t *testing.T) {
	scheme := newTestBearerScheme(t)
	assert.Equal(t, `Bearer realm="api"`, scheme.Challenge())
}
