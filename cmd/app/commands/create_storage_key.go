package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	cryptoDomain "github.com/epiccms/cardvault/internal/crypto/domain"
	cryptoService "github.com/epiccms/cardvault/internal/crypto/service"
)

// RunCreateStorageKey generates a cryptographically secure 32-byte installation
// key for deterministic card number storage encryption. Key material is zeroed
// from memory after encoding.
//
// When kmsProvider and kmsKeyURI are both set, the key is wrapped with KMS and
// only the ciphertext is printed. Otherwise the key is printed base64-encoded
// for direct use via CARD_STORAGE_KEY.
//
// Output format (plaintext mode):
//   - CARD_STORAGE_KEY="<base64-encoded-key>"
//
// Output format (KMS mode):
//   - KMS_PROVIDER="<provider>"
//   - KMS_KEY_URI="<uri>"
//   - CARD_STORAGE_KEY_CIPHERTEXT="<base64-encoded-kms-ciphertext>"
//
// Security: Never use the localsecrets provider in production. Use cloud KMS
// providers (gcpkms, awskms, azurekeyvault).
func RunCreateStorageKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	w io.Writer,
	kmsProvider string,
	kmsKeyURI string,
) error {
	if (kmsProvider == "") != (kmsKeyURI == "") {
		return fmt.Errorf("--kms-provider and --kms-key-uri must be set together")
	}

	// Generate a cryptographically secure 32-byte storage key
	storageKey := make([]byte, 32)
	if _, err := rand.Read(storageKey); err != nil {
		return fmt.Errorf("failed to generate storage key: %w", err)
	}
	defer cryptoDomain.Zero(storageKey)

	if kmsProvider == "" {
		fmt.Fprintln(w, "# Card Storage Key Configuration")
		fmt.Fprintln(w, "# Copy this environment variable to your .env file or secrets manager")
		fmt.Fprintln(w, "# WARNING: the key is printed in plaintext; prefer KMS mode in production")
		fmt.Fprintln(w)
		fmt.Fprintf(w, "CARD_STORAGE_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(storageKey))
		return nil
	}

	keeperInterface, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeperInterface.Close(); closeErr != nil {
			fmt.Fprintf(w, "Warning: failed to close KMS keeper: %v\n", closeErr)
		}
	}()

	// Type assert to get Encrypt method (needed for wrapping)
	keeper, ok := keeperInterface.(interface {
		Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	})
	if !ok {
		return fmt.Errorf("KMS keeper does not support encryption")
	}

	ciphertext, err := keeper.Encrypt(ctx, storageKey)
	if err != nil {
		return fmt.Errorf("failed to wrap storage key with KMS: %w", err)
	}

	fmt.Fprintln(w, "# Card Storage Key Configuration (KMS Mode)")
	fmt.Fprintln(w, "# Copy these environment variables to your .env file or secrets manager")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "KMS_PROVIDER=\"%s\"\n", kmsProvider)
	fmt.Fprintf(w, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	fmt.Fprintf(w, "CARD_STORAGE_KEY_CIPHERTEXT=\"%s\"\n", base64.StdEncoding.EncodeToString(ciphertext))

	return nil
}
