// Package domain defines card number constants and errors for storage
// encryption and display masking.
package domain

// Card number layout constants for display masking.
const (
	// MinCardNumberLength is the shortest card number the codecs accept.
	// Anything shorter cannot keep 6 + 4 characters in clear.
	MinCardNumberLength = 10

	// MaskPrefixLength is the number of leading characters kept in clear (the BIN).
	MaskPrefixLength = 6

	// MaskSuffixLength is the number of trailing characters kept in clear.
	MaskSuffixLength = 4
)
