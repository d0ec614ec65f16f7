package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/roomledger/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid student ID or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrMissingStudentID   = errors.New("student ID is required")
)

// CredentialStorage defines the interface for credential persistence.
// GetCredential returns storage.ErrNotFound for students that never logged in.
type CredentialStorage interface {
	GetCredential(ctx context.Context, studentID string) (string, error)
	CreateCredential(ctx context.Context, studentID, passwordHash string) error
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage CredentialStorage
	cost    int
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage CredentialStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
		cost:    bcrypt.DefaultCost,
	}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Authenticate checks the password of a student. A student without a stored
// credential is enrolled with the given password.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, studentID, credential string) (bool, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return false, ErrMissingStudentID
	}

	hash, err := a.storage.GetCredential(ctx, studentID)
	if errors.Is(err, storage.ErrNotFound) {
		return true, a.enrol(ctx, studentID, credential)
	}
	if err != nil {
		return false, fmt.Errorf("failed to get credential: %w", err)
	}

	// Compare password hash
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(credential)); err != nil {
		return false, ErrInvalidCredentials
	}
	return false, nil
}

func (a *PasswordAuthenticator) enrol(ctx context.Context, studentID, credential string) error {
	// Validate password strength
	if err := a.ValidateCredential(credential); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.storage.CreateCredential(ctx, studentID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to enrol credential: %w", err)
	}
	return nil
}

var _ Authenticator = (*PasswordAuthenticator)(nil)
