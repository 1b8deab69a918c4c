package shared

import "errors"

// CSRF and token vault failures.
var (
	ErrCSRFTokenMissing  = errors.New("csrf token missing")
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
	ErrVaultSealed       = errors.New("vault: cannot open sealed value")
)
