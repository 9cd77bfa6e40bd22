package app

import (
	cryptoService "github.com/epiccms/cardvault/internal/crypto/service"
)

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = c.initAEADManager()
	})
	return c.aeadManager
}

// AsymmetricCipher returns the RSA-OAEP cipher used for session key wrapping.
func (c *Container) AsymmetricCipher() cryptoService.AsymmetricCipher {
	c.asymmetricCipherInit.Do(func() {
		c.asymmetricCipher = c.initAsymmetricCipher()
	})
	return c.asymmetricCipher
}

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = c.initKMSService()
	})
	return c.kmsService
}

// initAEADManager creates the AEAD manager service.
func (c *Container) initAEADManager() cryptoService.AEADManager {
	return cryptoService.NewAEADManager()
}

// initAsymmetricCipher creates the RSA-OAEP cipher.
func (c *Container) initAsymmetricCipher() cryptoService.AsymmetricCipher {
	return cryptoService.NewRSAOAEPCipher()
}

// initKMSService creates the KMS service for unwrapping the card storage key.
func (c *Container) initKMSService() cryptoService.KMSService {
	return cryptoService.NewKMSService()
}
