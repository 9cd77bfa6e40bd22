// Package domain defines the wire objects of the hybrid encryption protocol.
package domain

import (
	"encoding/base64"
	"encoding/json"
	"time"

	cryptoDomain "github.com/epiccms/cardvault/internal/crypto/domain"
)

// KeyEncoding declares how the client encoded the AES key before wrapping it.
type KeyEncoding string

const (
	// KeyEncodingRaw means the wrapped payload is the 32 raw key bytes.
	KeyEncodingRaw KeyEncoding = "raw"
	// KeyEncodingBase64 means the client base64-encoded the key first, so the
	// unwrapped bytes need one more decode.
	KeyEncodingBase64 KeyEncoding = "base64"
)

// Envelope is the JSON wire object carried in both directions of an encrypted
// exchange.
//
// EncryptedData is base64(12-byte IV ‖ AES-256-GCM ciphertext ‖ 16-byte tag).
// EncryptedKey is base64(RSA-OAEP-SHA256 wrapped AES-256 key).
// KeyEncoding is optional; when absent the key encoding is inferred
// structurally (see NormalizeSessionKey).
type Envelope struct {
	SessionID     string      `json:"sessionId"`
	EncryptedData string      `json:"encryptedData"`
	EncryptedKey  string      `json:"encryptedKey"`
	KeyEncoding   KeyEncoding `json:"keyEncoding,omitempty"`
	PayloadType   string      `json:"payloadType,omitempty"`
}

// IsComplete reports whether all required envelope fields are present.
func (e *Envelope) IsComplete() bool {
	return e.SessionID != "" && e.EncryptedData != "" && e.EncryptedKey != ""
}

// ParseEnvelope attempts to read body as a complete Envelope.
//
// The second return value is false when the body is not envelope-shaped
// (invalid JSON, or any required field missing). Callers use this to pass
// unencrypted bodies through unchanged.
func ParseEnvelope(body []byte) (*Envelope, bool) {
	var e Envelope
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, false
	}
	if !e.IsComplete() {
		return nil, false
	}
	return &e, true
}

// PublicKeyGrant is the public-key issuance response: a session id, its SPKI
// public key, and the window during which the session can be consumed.
type PublicKeyGrant struct {
	SessionID  string    `json:"sessionId"`
	PublicKey  string    `json:"publicKey"`
	Timestamp  time.Time `json:"timestamp"`
	TTLSeconds int       `json:"ttlSeconds"`
}

// EncodeSealed serializes an AEAD result to the wire layout: the nonce
// prepended to the ciphertext (tag included), base64-encoded.
func EncodeSealed(nonce, ciphertext []byte) string {
	blob := make([]byte, 0, len(nonce)+len(ciphertext))
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)
	return base64.StdEncoding.EncodeToString(blob)
}

// DecodeSealed splits an encryptedData field back into nonce and ciphertext.
//
// Invalid base64 and blobs too short to hold a nonce plus tag both return the
// generic ErrDecryptionFailed; the caller learns nothing about which check
// tripped.
func DecodeSealed(encoded string) (nonce, ciphertext []byte, err error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, nil, cryptoDomain.ErrDecryptionFailed
	}
	if len(blob) < cryptoDomain.NonceSize+cryptoDomain.TagSize {
		return nil, nil, cryptoDomain.ErrDecryptionFailed
	}
	return blob[:cryptoDomain.NonceSize], blob[cryptoDomain.NonceSize:], nil
}

// NormalizeSessionKey resolves the unwrapped AES key bytes according to the
// declared encoding.
//
// When the envelope carries no keyEncoding field, the historical structural
// heuristic applies: an unwrapped payload that is exactly the base64 form of a
// 32-byte key (44 bytes, valid padding) is decoded once more. The explicit
// field always wins over the heuristic.
func NormalizeSessionKey(unwrapped []byte, encoding KeyEncoding) ([]byte, error) {
	switch encoding {
	case KeyEncodingRaw:
		return unwrapped, nil
	case KeyEncodingBase64:
		key, err := base64.StdEncoding.DecodeString(string(unwrapped))
		if err != nil {
			return nil, cryptoDomain.ErrDecryptionFailed
		}
		return key, nil
	}

	// No declared encoding: fall back to the structural check.
	if len(unwrapped) == base64.StdEncoding.EncodedLen(cryptoDomain.AESKeySize) {
		if key, err := base64.StdEncoding.DecodeString(string(unwrapped)); err == nil && len(key) == cryptoDomain.AESKeySize {
			return key, nil
		}
	}
	return unwrapped, nil
}
