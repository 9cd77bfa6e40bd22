package service

import (
	"github.com/allisson/go-pwdhash"

	cryptoDomain "github.com/epiccms/cardvault/internal/crypto/domain"
	apperrors "github.com/epiccms/cardvault/internal/errors"
)

// AdminVerifier checks the admin password against its Argon2id hash.
// The hash is supplied through configuration; the plain password never is.
type AdminVerifier struct {
	hasher       *pwdhash.PasswordHasher
	passwordHash string
}

// NewAdminVerifier creates a verifier for the configured password hash.
func NewAdminVerifier(passwordHash string) (*AdminVerifier, error) {
	if passwordHash == "" {
		return nil, apperrors.Wrap(cryptoDomain.ErrConfigurationInvalid, "admin password hash is not set")
	}

	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		return nil, err
	}

	return &AdminVerifier{
		hasher:       hasher,
		passwordHash: passwordHash,
	}, nil
}

// Verify performs a constant-time comparison of password against the hash.
func (v *AdminVerifier) Verify(password string) bool {
	ok, err := v.hasher.Verify([]byte(password), v.passwordHash)
	if err != nil {
		return false
	}
	return ok
}

// HashAdminPassword hashes a plain admin password for use in configuration.
func HashAdminPassword(password string) (string, error) {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		return "", err
	}
	return hasher.Hash([]byte(password))
}
