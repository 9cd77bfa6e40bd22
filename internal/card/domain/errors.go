package domain

import (
	"github.com/epiccms/cardvault/internal/errors"
)

// Card domain error definitions.
var (
	// ErrCardNumberTooShort indicates a card number shorter than MinCardNumberLength.
	ErrCardNumberTooShort = errors.Wrap(errors.ErrInvalidInput, "card number must be at least 10 characters")

	// ErrInvalidDisplayToken indicates a display token that does not follow the
	// clear-prefix + base64 + clear-suffix layout.
	ErrInvalidDisplayToken = errors.Wrap(errors.ErrInvalidInput, "invalid display token")

	// ErrAdminPasswordInvalid indicates the admin password check failed.
	ErrAdminPasswordInvalid = errors.Wrap(errors.ErrForbidden, "invalid admin password")
)
