package app

import (
	"context"
	"encoding/base64"
	"fmt"

	cardHTTP "github.com/epiccms/cardvault/internal/card/http"
	cardService "github.com/epiccms/cardvault/internal/card/service"
	cardUseCase "github.com/epiccms/cardvault/internal/card/usecase"
	cryptoDomain "github.com/epiccms/cardvault/internal/crypto/domain"
)

// StorageCodec returns the deterministic card number storage codec.
func (c *Container) StorageCodec() (*cardService.StorageCodec, error) {
	var err error
	c.storageCodecInit.Do(func() {
		c.storageCodec, err = c.initStorageCodec()
		if err != nil {
			c.initErrors["storageCodec"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["storageCodec"]; exists {
		return nil, storedErr
	}
	return c.storageCodec, nil
}

// DisplayCodec returns the display token codec.
func (c *Container) DisplayCodec() *cardService.DisplayCodec {
	c.displayCodecInit.Do(func() {
		c.displayCodec = c.initDisplayCodec()
	})
	return c.displayCodec
}

// AdminVerifier returns the admin password verifier.
func (c *Container) AdminVerifier() (*cardService.AdminVerifier, error) {
	var err error
	c.adminVerifierInit.Do(func() {
		c.adminVerifier, err = c.initAdminVerifier()
		if err != nil {
			c.initErrors["adminVerifier"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["adminVerifier"]; exists {
		return nil, storedErr
	}
	return c.adminVerifier, nil
}

// CardUseCase returns the card number use case, instrumented with business
// metrics when metrics are enabled.
func (c *Container) CardUseCase() (cardUseCase.CardUseCase, error) {
	var err error
	c.cardUseCaseInit.Do(func() {
		c.cardUseCase, err = c.initCardUseCase()
		if err != nil {
			c.initErrors["cardUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cardUseCase"]; exists {
		return nil, storedErr
	}
	return c.cardUseCase, nil
}

// CardHandler returns the HTTP handler for card number endpoints.
func (c *Container) CardHandler() (*cardHTTP.CardHandler, error) {
	var err error
	c.cardHandlerInit.Do(func() {
		c.cardHandler, err = c.initCardHandler()
		if err != nil {
			c.initErrors["cardHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cardHandler"]; exists {
		return nil, storedErr
	}
	return c.cardHandler, nil
}

// initStorageCodec creates the storage codec from the configured installation key.
func (c *Container) initStorageCodec() (*cardService.StorageCodec, error) {
	key, err := c.loadCardStorageKey()
	if err != nil {
		return nil, fmt.Errorf("failed to load card storage key: %w", err)
	}
	defer cryptoDomain.Zero(key)

	codec, err := cardService.NewStorageCodec(c.AEADManager(), key, cryptoDomain.Algorithm(c.config.CardStorageAlgorithm))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage codec: %w", err)
	}
	return codec, nil
}

// loadCardStorageKey resolves the 32-byte storage key from configuration.
//
// When CARD_STORAGE_KEY_CIPHERTEXT is set the key is unwrapped through the
// configured KMS keeper; otherwise CARD_STORAGE_KEY is decoded directly.
func (c *Container) loadCardStorageKey() ([]byte, error) {
	if c.config.CardStorageKeyCiphertext != "" {
		if c.config.KMSKeyURI == "" {
			return nil, fmt.Errorf("CARD_STORAGE_KEY_CIPHERTEXT is set but KMS_KEY_URI is empty")
		}

		ciphertext, err := base64.StdEncoding.DecodeString(c.config.CardStorageKeyCiphertext)
		if err != nil {
			return nil, fmt.Errorf("failed to decode card storage key ciphertext: %w", err)
		}

		ctx := context.Background()
		keeper, err := c.KMSService().OpenKeeper(ctx, c.config.KMSKeyURI)
		if err != nil {
			return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
		}
		defer func() {
			_ = keeper.Close()
		}()

		key, err := keeper.Decrypt(ctx, ciphertext)
		if err != nil {
			return nil, fmt.Errorf("failed to unwrap card storage key: %w", err)
		}
		return key, nil
	}

	if c.config.CardStorageKey == "" {
		return nil, fmt.Errorf("CARD_STORAGE_KEY is not set")
	}

	key, err := base64.StdEncoding.DecodeString(c.config.CardStorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode card storage key: %w", err)
	}
	return key, nil
}

// initDisplayCodec creates the display token codec.
func (c *Container) initDisplayCodec() *cardService.DisplayCodec {
	return cardService.NewDisplayCodec()
}

// initAdminVerifier creates the admin password verifier.
func (c *Container) initAdminVerifier() (*cardService.AdminVerifier, error) {
	verifier, err := cardService.NewAdminVerifier(c.config.AdminPasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin verifier: %w", err)
	}
	return verifier, nil
}

// initCardUseCase creates the card use case with all its dependencies.
func (c *Container) initCardUseCase() (cardUseCase.CardUseCase, error) {
	storageCodec, err := c.StorageCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get storage codec for card use case: %w", err)
	}

	adminVerifier, err := c.AdminVerifier()
	if err != nil {
		return nil, fmt.Errorf("failed to get admin verifier for card use case: %w", err)
	}

	useCase := cardUseCase.NewCardUseCase(storageCodec, c.DisplayCodec(), adminVerifier, c.Logger())

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for card use case: %w", err)
	}

	return cardUseCase.NewCardUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initCardHandler creates the card number HTTP handler.
func (c *Container) initCardHandler() (*cardHTTP.CardHandler, error) {
	useCase, err := c.CardUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get card use case for card handler: %w", err)
	}

	return cardHTTP.NewCardHandler(useCase, c.Logger()), nil
}
