package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/pinvault/internal/access"
	"github.com/illarion/pinvault/internal/crypto"
	"github.com/illarion/pinvault/internal/keyring"
)

// KeyringSave saves the PIN to the OS keyring for biometric-style unlock
func KeyringSave() {
	a := MustOpenApp()
	defer a.Close()

	if a.Access.State() == access.Unprovisioned {
		a.Close()
		HandleError(access.ErrNotProvisioned)
	}

	pin, err := ReadPIN("Enter PIN: ")
	if err != nil {
		a.Close()
		HandleError(err)
	}
	defer crypto.ClearBytes(pin)

	if !a.Access.VerifyPIN(pin) {
		a.Close()
		HandleError(access.ErrWrongPIN)
	}

	if err := keyring.SavePIN(a.VaultID, string(pin)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save to keyring: %s\n", err)
		a.Close()
		os.Exit(1)
	}

	fmt.Println("PIN saved to keyring")
	if on, _ := a.Store.Biometric(); !on {
		fmt.Println("Enable it with 'pinvault settings --biometric on'")
	}
}

// KeyringDelete removes the PIN from the OS keyring
func KeyringDelete() {
	a := MustOpenApp()
	defer a.Close()

	if err := keyring.DeletePIN(a.VaultID); err != nil {
		fmt.Println("No PIN stored in keyring")
		return
	}
	fmt.Println("PIN removed from keyring")
}

// KeyringStatus checks if a PIN is stored in the keyring
func KeyringStatus() {
	a := MustOpenApp()
	defer a.Close()

	if keyring.HasPIN(a.VaultID) {
		fmt.Println("PIN: stored in keyring")
	} else {
		fmt.Println("PIN: not stored")
	}
}
