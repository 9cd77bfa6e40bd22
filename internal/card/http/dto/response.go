package dto

// StorageEncryptResponse contains the stable storage ciphertext.
type StorageEncryptResponse struct {
	Encrypted string `json:"encrypted"`
}

// StorageDecryptResponse contains the recovered card number.
// SECURITY: The CardNumber field contains sensitive data and should be transmitted over HTTPS.
type StorageDecryptResponse struct {
	CardNumber string `json:"cardNumber"`
}

// MaskResponse contains a display token and its one-time key.
// The key is never stored server-side; losing it makes the token unreadable.
type MaskResponse struct {
	Token      string `json:"token"`
	OneTimeKey string `json:"oneTimeKey"`
}

// RevealResponse contains the card number reconstructed from a display token.
type RevealResponse struct {
	CardNumber string `json:"cardNumber"`
}
