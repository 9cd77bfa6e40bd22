// Package usecase implements the hybrid encryption business logic: session
// issuance and the envelope decrypt/encrypt pipeline.
package usecase

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"log/slog"

	cryptoDomain "github.com/epiccms/cardvault/internal/crypto/domain"
	cryptoService "github.com/epiccms/cardvault/internal/crypto/service"
	payloadDomain "github.com/epiccms/cardvault/internal/payload/domain"
)

// AsymmetricCipher defines the key-wrapping operations the codec depends on.
type AsymmetricCipher interface {
	EncodePublicKey(pub *rsa.PublicKey) (string, error)
	Decrypt(ciphertext []byte, priv *rsa.PrivateKey) ([]byte, error)
}

// AEADManager creates AEAD cipher instances for unwrapped session keys.
type AEADManager interface {
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (cryptoService.AEAD, error)
}

// Codec implements PayloadCodec on top of the session key store and the
// crypto services.
type Codec struct {
	keyStore    SessionKeyStore
	asymmetric  AsymmetricCipher
	aeadManager AEADManager
	logger      *slog.Logger
}

// NewCodec creates a payload codec.
func NewCodec(
	keyStore SessionKeyStore,
	asymmetric AsymmetricCipher,
	aeadManager AEADManager,
	logger *slog.Logger,
) *Codec {
	return &Codec{
		keyStore:    keyStore,
		asymmetric:  asymmetric,
		aeadManager: aeadManager,
		logger:      logger,
	}
}

// IssuePublicKey creates a fresh session and returns its public-key grant.
func (cd *Codec) IssuePublicKey(ctx context.Context) (*payloadDomain.PublicKeyGrant, error) {
	session, err := cd.keyStore.Generate()
	if err != nil {
		return nil, err
	}

	publicKey, err := cd.asymmetric.EncodePublicKey(session.PublicKey)
	if err != nil {
		// The session is unusable without its public key; reclaim it.
		cd.keyStore.Invalidate(session.ID)
		return nil, err
	}

	if cd.logger != nil {
		cd.logger.Info("issued encryption session",
			slog.String("session_id", session.ID),
			slog.Duration("ttl", session.TTL),
		)
	}

	return &payloadDomain.PublicKeyGrant{
		SessionID:  session.ID,
		PublicKey:  publicKey,
		Timestamp:  session.IssuedAt,
		TTLSeconds: int(session.TTL.Seconds()),
	}, nil
}

// ActiveSessionCount reports how many sessions are currently issued.
func (cd *Codec) ActiveSessionCount(ctx context.Context) int {
	return cd.keyStore.ActiveCount()
}

// InvalidateSession consumes a session. Idempotent.
func (cd *Codec) InvalidateSession(ctx context.Context, sessionID string) {
	cd.keyStore.Invalidate(sessionID)
}

// HybridDecrypt resolves the envelope's session, unwraps the AES key and
// decrypts the body.
//
// The session is resolved before any ciphertext is touched. The unwrapped key
// is zeroed before returning on every path.
func (cd *Codec) HybridDecrypt(ctx context.Context, envelope *payloadDomain.Envelope) ([]byte, error) {
	privateKey, err := cd.keyStore.LookupPrivateKey(envelope.SessionID)
	if err != nil {
		return nil, err
	}

	key, err := cd.unwrapSessionKey(envelope.EncryptedKey, envelope.KeyEncoding, privateKey)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)

	nonce, ciphertext, err := payloadDomain.DecodeSealed(envelope.EncryptedData)
	if err != nil {
		return nil, err
	}

	aead, err := cd.aeadManager.CreateCipher(key, cryptoDomain.AESGCM)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	plaintext, err := aead.Decrypt(ciphertext, nonce, nil)
	if err != nil {
		return nil, cryptoDomain.ErrIntegrityFailure
	}

	if !json.Valid(plaintext) {
		return nil, cryptoDomain.ErrDeserializationFailed
	}
	return plaintext, nil
}

// HybridEncrypt seals plaintext into a response envelope for the session that
// produced the inbound request.
//
// The AES key is re-derived by unwrapping encryptedKey again; no new key is
// generated, so the client can decrypt with the key it already holds.
func (cd *Codec) HybridEncrypt(
	ctx context.Context,
	plaintext []byte,
	sessionID string,
	encryptedKey string,
	keyEncoding payloadDomain.KeyEncoding,
) (*payloadDomain.Envelope, error) {
	privateKey, err := cd.keyStore.LookupPrivateKey(sessionID)
	if err != nil {
		return nil, err
	}

	key, err := cd.unwrapSessionKey(encryptedKey, keyEncoding, privateKey)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)

	aead, err := cd.aeadManager.CreateCipher(key, cryptoDomain.AESGCM)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	ciphertext, nonce, err := aead.Encrypt(plaintext, nil)
	if err != nil {
		return nil, err
	}

	return &payloadDomain.Envelope{
		SessionID:     sessionID,
		EncryptedData: payloadDomain.EncodeSealed(nonce, ciphertext),
		EncryptedKey:  encryptedKey,
		KeyEncoding:   keyEncoding,
	}, nil
}

// unwrapSessionKey decodes, unwraps and normalizes the AES key carried in an
// envelope's encryptedKey field.
func (cd *Codec) unwrapSessionKey(
	encryptedKey string,
	encoding payloadDomain.KeyEncoding,
	privateKey *rsa.PrivateKey,
) ([]byte, error) {
	wrapped, err := base64.StdEncoding.DecodeString(encryptedKey)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	unwrapped, err := cd.asymmetric.Decrypt(wrapped, privateKey)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	key, err := payloadDomain.NormalizeSessionKey(unwrapped, encoding)
	if err != nil {
		return nil, err
	}
	if len(key) != cryptoDomain.AESKeySize {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return key, nil
}
