// Package auth implements operator login and session tokens.
package auth

import "context"

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping the credential check (password, SSO, ...)
// without changing the service layer code.
type Authenticator interface {
	// Authenticate verifies the credential for the student ID. The first
	// successful call for an unknown student enrols the credential; enrolled
	// reports whether that happened.
	Authenticate(ctx context.Context, studentID, credential string) (enrolled bool, err error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
