package usecase

import (
	"context"
	"time"

	"github.com/epiccms/cardvault/internal/metrics"
)

// cardUseCaseWithMetrics decorates CardUseCase with metrics instrumentation.
type cardUseCaseWithMetrics struct {
	next    CardUseCase
	metrics metrics.BusinessMetrics
}

// NewCardUseCaseWithMetrics wraps a CardUseCase with metrics recording.
func NewCardUseCaseWithMetrics(useCase CardUseCase, m metrics.BusinessMetrics) CardUseCase {
	return &cardUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// EncryptForStorage records metrics for storage encryption operations.
func (c *cardUseCaseWithMetrics) EncryptForStorage(ctx context.Context, cardNumber string) (string, error) {
	start := time.Now()
	encrypted, err := c.next.EncryptForStorage(ctx, cardNumber)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "card", "storage_encrypt", status)
	c.metrics.RecordDuration(ctx, "card", "storage_encrypt", time.Since(start), status)

	return encrypted, err
}

// DecryptFromStorage records metrics for storage decryption operations.
func (c *cardUseCaseWithMetrics) DecryptFromStorage(ctx context.Context, encrypted string, adminPassword string) (string, error) {
	start := time.Now()
	cardNumber, err := c.next.DecryptFromStorage(ctx, encrypted, adminPassword)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "card", "storage_decrypt", status)
	c.metrics.RecordDuration(ctx, "card", "storage_decrypt", time.Since(start), status)

	return cardNumber, err
}

// MaskForDisplay records metrics for display masking operations.
func (c *cardUseCaseWithMetrics) MaskForDisplay(ctx context.Context, cardNumber string) (string, string, error) {
	start := time.Now()
	token, oneTimeKey, err := c.next.MaskForDisplay(ctx, cardNumber)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "card", "display_mask", status)
	c.metrics.RecordDuration(ctx, "card", "display_mask", time.Since(start), status)

	return token, oneTimeKey, err
}

// RevealFromDisplay records metrics for display reveal operations.
func (c *cardUseCaseWithMetrics) RevealFromDisplay(ctx context.Context, token string, oneTimeKey string) (string, error) {
	start := time.Now()
	cardNumber, err := c.next.RevealFromDisplay(ctx, token, oneTimeKey)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "card", "display_reveal", status)
	c.metrics.RecordDuration(ctx, "card", "display_reveal", time.Since(start), status)

	return cardNumber, err
}
