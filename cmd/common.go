package cmd

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/illarion/pinvault/internal/access"
	"github.com/illarion/pinvault/internal/crypto"
	"github.com/illarion/pinvault/internal/security"
	"github.com/illarion/pinvault/internal/vault"
)

// ReadPIN reads a PIN from the terminal without echoing
func ReadPIN(prompt string) ([]byte, error) {
	fmt.Print(prompt)

	pin, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after PIN

	if err != nil {
		return nil, fmt.Errorf("failed to read pin: %w", err)
	}
	return pin, nil
}

// ReadPINConfirm reads a PIN twice and ensures they match
func ReadPINConfirm(prompt string) ([]byte, error) {
	pin1, err := ReadPIN(prompt)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(pin1)

	pin2, err := ReadPIN("Confirm PIN: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(pin2)

	if !crypto.ConstantTimeCompare(pin1, pin2) {
		return nil, fmt.Errorf("PINs do not match")
	}

	result := make([]byte, len(pin1))
	copy(result, pin1)
	return result, nil
}

// HandleError prints err and exits
func HandleError(err error) {
	printError(err)
	os.Exit(1)
}

func printError(err error) {
	var moveErr *vault.MoveError
	var partial *vault.PartialFailureError

	switch {
	case errors.Is(err, vault.ErrEmptyName):
		fmt.Fprintf(os.Stderr, "Error: Please enter folder name\n")
	case errors.Is(err, vault.ErrAlreadyExists):
		fmt.Fprintf(os.Stderr, "Error: Folder already exists\n")
	case errors.Is(err, access.ErrWrongPIN):
		fmt.Fprintf(os.Stderr, "Error: wrong PIN\n")
	case errors.Is(err, access.ErrInvalidPIN):
		fmt.Fprintf(os.Stderr, "Error: PIN must be exactly %d digits\n", access.CodeLength)
	case errors.Is(err, access.ErrNotProvisioned):
		fmt.Fprintf(os.Stderr, "Error: no PIN set\n")
		fmt.Fprintf(os.Stderr, "Run 'pinvault unlock' to set one\n")
	case errors.Is(err, access.ErrBiometricUnavailable):
		fmt.Fprintf(os.Stderr, "Error: biometric unlock is not available\n")
		fmt.Fprintf(os.Stderr, "Use 'pinvault settings --biometric on' and 'pinvault keyring save'\n")
	case errors.Is(err, security.ErrPathEscapes), errors.Is(err, security.ErrAbsolutePath):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Paths must be inside the vault\n")
	case errors.As(err, &moveErr):
		fmt.Fprintf(os.Stderr, "Error: %s\n", moveErr)
		if errors.Is(err, vault.ErrDestinationConflict) {
			fmt.Fprintf(os.Stderr, "Rename or remove some files in the destination and retry\n")
		}
	case errors.As(err, &partial):
		fmt.Fprintf(os.Stderr, "Error: %s\n", partial)
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// formatSize formats a file size in human-readable form
func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d B", size)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}
