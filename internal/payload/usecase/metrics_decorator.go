package usecase

import (
	"context"
	"time"

	"github.com/epiccms/cardvault/internal/metrics"
	payloadDomain "github.com/epiccms/cardvault/internal/payload/domain"
)

// payloadCodecWithMetrics decorates PayloadCodec with metrics instrumentation.
type payloadCodecWithMetrics struct {
	next    PayloadCodec
	metrics metrics.BusinessMetrics
}

// NewPayloadCodecWithMetrics wraps a PayloadCodec with metrics recording.
func NewPayloadCodecWithMetrics(codec PayloadCodec, m metrics.BusinessMetrics) PayloadCodec {
	return &payloadCodecWithMetrics{
		next:    codec,
		metrics: m,
	}
}

// IssuePublicKey records metrics for session issuance.
func (p *payloadCodecWithMetrics) IssuePublicKey(ctx context.Context) (*payloadDomain.PublicKeyGrant, error) {
	start := time.Now()
	grant, err := p.next.IssuePublicKey(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "payload", "public_key_issue", status)
	p.metrics.RecordDuration(ctx, "payload", "public_key_issue", time.Since(start), status)

	return grant, err
}

// ActiveSessionCount passes through without instrumentation.
func (p *payloadCodecWithMetrics) ActiveSessionCount(ctx context.Context) int {
	return p.next.ActiveSessionCount(ctx)
}

// InvalidateSession records metrics for session invalidation.
func (p *payloadCodecWithMetrics) InvalidateSession(ctx context.Context, sessionID string) {
	p.next.InvalidateSession(ctx, sessionID)
	p.metrics.RecordOperation(ctx, "payload", "session_invalidate", "success")
}

// HybridDecrypt records metrics for envelope decryption.
func (p *payloadCodecWithMetrics) HybridDecrypt(ctx context.Context, envelope *payloadDomain.Envelope) ([]byte, error) {
	start := time.Now()
	plaintext, err := p.next.HybridDecrypt(ctx, envelope)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "payload", "hybrid_decrypt", status)
	p.metrics.RecordDuration(ctx, "payload", "hybrid_decrypt", time.Since(start), status)

	return plaintext, err
}

// HybridEncrypt records metrics for envelope encryption.
func (p *payloadCodecWithMetrics) HybridEncrypt(
	ctx context.Context,
	plaintext []byte,
	sessionID string,
	encryptedKey string,
	keyEncoding payloadDomain.KeyEncoding,
) (*payloadDomain.Envelope, error) {
	start := time.Now()
	envelope, err := p.next.HybridEncrypt(ctx, plaintext, sessionID, encryptedKey, keyEncoding)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "payload", "hybrid_encrypt", status)
	p.metrics.RecordDuration(ctx, "payload", "hybrid_encrypt", time.Since(start), status)

	return envelope, err
}
