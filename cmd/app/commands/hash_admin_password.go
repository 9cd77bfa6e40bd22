package commands

import (
	"fmt"
	"io"

	cardService "github.com/epiccms/cardvault/internal/card/service"
)

// RunHashAdminPassword hashes the admin password with Argon2id and prints the
// encoded hash for use via ADMIN_PASSWORD_HASH.
func RunHashAdminPassword(w io.Writer, password string) error {
	if password == "" {
		return fmt.Errorf("--password is required")
	}

	hash, err := cardService.HashAdminPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	fmt.Fprintln(w, "# Admin Password Configuration")
	fmt.Fprintln(w, "# Copy this environment variable to your .env file or secrets manager")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "ADMIN_PASSWORD_HASH=\"%s\"\n", hash)

	return nil
}
