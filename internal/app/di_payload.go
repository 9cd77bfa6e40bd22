package app

import (
	"fmt"

	"github.com/epiccms/cardvault/internal/keystore"
	payloadHTTP "github.com/epiccms/cardvault/internal/payload/http"
	payloadUseCase "github.com/epiccms/cardvault/internal/payload/usecase"
)

// KeyStore returns the ephemeral encryption session key store.
//
// The store only holds sessions in memory; the caller is responsible for
// running its sweeper via KeyStore().Run(ctx) alongside the HTTP server.
func (c *Container) KeyStore() *keystore.Store {
	c.keyStoreInit.Do(func() {
		c.keyStore = c.initKeyStore()
	})
	return c.keyStore
}

// PayloadCodec returns the hybrid payload codec, instrumented with business
// metrics when metrics are enabled.
func (c *Container) PayloadCodec() (payloadUseCase.PayloadCodec, error) {
	var err error
	c.payloadCodecInit.Do(func() {
		c.payloadCodec, err = c.initPayloadCodec()
		if err != nil {
			c.initErrors["payloadCodec"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["payloadCodec"]; exists {
		return nil, storedErr
	}
	return c.payloadCodec, nil
}

// EncryptionHandler returns the HTTP handler for encryption session endpoints.
func (c *Container) EncryptionHandler() (*payloadHTTP.EncryptionHandler, error) {
	var err error
	c.encryptionHandlerInit.Do(func() {
		c.encryptionHandler, err = c.initEncryptionHandler()
		if err != nil {
			c.initErrors["encryptionHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["encryptionHandler"]; exists {
		return nil, storedErr
	}
	return c.encryptionHandler, nil
}

// initKeyStore creates the session key store.
func (c *Container) initKeyStore() *keystore.Store {
	return keystore.NewStore(
		c.AsymmetricCipher(),
		c.config.SessionTTL,
		c.config.SessionSweepInterval,
		c.Logger(),
	)
}

// initPayloadCodec creates the payload codec with all its dependencies.
func (c *Container) initPayloadCodec() (payloadUseCase.PayloadCodec, error) {
	codec := payloadUseCase.NewCodec(
		c.KeyStore(),
		c.AsymmetricCipher(),
		c.AEADManager(),
		c.Logger(),
	)

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for payload codec: %w", err)
	}

	return payloadUseCase.NewPayloadCodecWithMetrics(codec, businessMetrics), nil
}

// initEncryptionHandler creates the encryption session HTTP handler.
func (c *Container) initEncryptionHandler() (*payloadHTTP.EncryptionHandler, error) {
	payloadCodec, err := c.PayloadCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get payload codec for encryption handler: %w", err)
	}

	return payloadHTTP.NewEncryptionHandler(payloadCodec, c.Logger()), nil
}
