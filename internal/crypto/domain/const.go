package domain

// Algorithm identifies an AEAD algorithm for symmetric encryption.
type Algorithm string

const (
	// AESGCM is AES-256 in Galois/Counter Mode.
	AESGCM Algorithm = "aes-gcm"
	// ChaCha20 is ChaCha20-Poly1305.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// Cryptographic size parameters. These are fixed by the wire protocol and the
// client implementations; changing them breaks envelope compatibility.
const (
	// RSAKeySize is the RSA modulus size in bits for session key pairs.
	RSAKeySize = 2048

	// AESKeySize is the symmetric key size in bytes (AES-256).
	AESKeySize = 32

	// NonceSize is the AEAD nonce size in bytes (96 bits).
	NonceSize = 12

	// TagSize is the AEAD authentication tag size in bytes (128 bits).
	TagSize = 16
)
