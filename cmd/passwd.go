package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/illarion/pinvault/internal/crypto"
	"github.com/illarion/pinvault/internal/keyring"
)

// Passwd changes the vault PIN
func Passwd(_ context.Context) {
	a := MustOpenApp()
	defer a.Close()

	current, err := ReadPIN("Current PIN: ")
	if err != nil {
		a.Close()
		HandleError(err)
	}
	defer crypto.ClearBytes(current)

	next, err := ReadPINConfirm("New PIN: ")
	if err != nil {
		a.Close()
		HandleError(err)
	}
	defer crypto.ClearBytes(next)

	if err := a.Access.ChangePIN(string(current), string(next)); err != nil {
		a.Close()
		HandleError(err)
	}
	fmt.Println("PIN changed")

	if keyring.HasPIN(a.VaultID) {
		if err := keyring.SavePIN(a.VaultID, string(next)); err != nil {
			a.Log.Warn("failed to update keyring", zap.Error(err))
			fmt.Println("Warning: keyring still holds the old PIN; run 'pinvault keyring save'")
		} else {
			fmt.Println("Keyring updated")
		}
	}

	if err := compactStore(a); err != nil {
		a.Log.Warn("failed to compact settings", zap.Error(err))
	}
}
