package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"root": {"password_hash": "$2a$04$abcdefghijklmnopqrstuv", "role": "admin"}}`), 0o600))

	users, err := loadCredentials(path)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users["root"].Role)
}

func TestLoadCredentialsEmptyPath(t *testing.T) {
	users, err := loadCredentials("")
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestLoadCredentialsMissingFile(t *testing.T) {
	_, err := loadCredentials(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadCredentialsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := loadCredentials(path)
	assert.Error(t, err)
}
