package domain

import (
	"github.com/epiccms/cardvault/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// to provide context for cryptographic failures. All errors are mapped to
// appropriate HTTP status codes by the error handling layer.
//
// Anti-oracle requirement: ErrAuthenticationFailed, ErrDecryptionFailed and
// ErrIntegrityFailure must never be distinguishable by an API caller. The
// distinct values exist for internal logging and tests only; the HTTP boundary
// collapses all three into a single uniform rejection.
var (
	// ErrAuthenticationFailed indicates the encryption session could not be resolved.
	//
	// Returned when a session id is unknown, expired, or already invalidated.
	// The three cases are deliberately indistinguishable: the key store exposes
	// only "absent", never the reason.
	ErrAuthenticationFailed = errors.Wrap(errors.ErrUnauthorized, "invalid or expired session")

	// ErrDecryptionFailed indicates a decryption operation failed.
	//
	// This error can occur due to:
	//   - Wrong decryption key used
	//   - Malformed or truncated ciphertext
	//   - RSA-OAEP padding failure
	//
	// For security reasons, the specific cause is not disclosed to prevent
	// information leakage that could aid attackers.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrIntegrityFailure indicates an AEAD authentication tag check failed.
	//
	// The ciphertext has been tampered with, or the wrong key or nonce was
	// used. No plaintext is ever returned alongside this error.
	ErrIntegrityFailure = errors.Wrap(errors.ErrInvalidInput, "integrity check failed")

	// ErrDeserializationFailed indicates decrypted plaintext does not match the
	// expected structured shape.
	//
	// Unlike the crypto failures above, this error leaks no cryptographic
	// information and may be reported to the caller with detail.
	ErrDeserializationFailed = errors.Wrap(errors.ErrInvalidInput, "payload deserialization failed")

	// ErrConfigurationInvalid indicates externally supplied key material or
	// crypto configuration is unusable. Raised at startup, never per-request.
	ErrConfigurationInvalid = errors.New("invalid crypto configuration")

	// ErrInvalidKeySize indicates a symmetric key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")
)
