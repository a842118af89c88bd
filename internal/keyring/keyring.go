package keyring

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/illarion/pinvault/internal/access"
	"github.com/illarion/pinvault/internal/crypto"
)

const serviceName = "pinvault"

// Error codes reported through access.BiometricResult
const (
	CodeNotEnrolled = "not_enrolled"
	CodeRejected    = "rejected"
)

// SavePIN stores a PIN in the OS keyring
func SavePIN(vaultID string, pin string) error {
	return keyring.Set(serviceName, vaultID, pin)
}

// GetPIN retrieves a PIN from the OS keyring
func GetPIN(vaultID string) (string, error) {
	return keyring.Get(serviceName, vaultID)
}

// DeletePIN removes a PIN from the OS keyring
func DeletePIN(vaultID string) error {
	return keyring.Delete(serviceName, vaultID)
}

// HasPIN checks if a PIN is stored in the keyring
func HasPIN(vaultID string) bool {
	_, err := keyring.Get(serviceName, vaultID)
	return err == nil
}

// Authenticator stands in for a platform biometric prompt on desktops:
// a PIN previously saved in the OS keyring is checked against Verify.
type Authenticator struct {
	VaultID string
	Verify  func(pin []byte) bool
}

// Authenticate implements access.Biometric
func (a *Authenticator) Authenticate(ctx context.Context, _ string) (access.BiometricResult, error) {
	if err := ctx.Err(); err != nil {
		return access.BiometricResult{}, err
	}

	stored, err := GetPIN(a.VaultID)
	if errors.Is(err, keyring.ErrNotFound) {
		return access.BiometricResult{ErrorCode: CodeNotEnrolled}, nil
	}
	if err != nil {
		return access.BiometricResult{}, fmt.Errorf("failed to read keyring: %w", err)
	}

	pin := []byte(stored)
	defer crypto.ClearBytes(pin)

	if a.Verify == nil || !a.Verify(pin) {
		return access.BiometricResult{ErrorCode: CodeRejected}, nil
	}
	return access.BiometricResult{Success: true}, nil
}
