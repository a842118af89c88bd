package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/pinvault/internal/access"
)

// Unlock unlocks the vault, setting a PIN first if none exists
func Unlock(ctx context.Context) {
	a := MustOpenApp()
	defer a.Close()

	provisioning := a.Access.State() == access.Unprovisioned
	if err := a.RequireUnlocked(ctx); err != nil {
		a.Close()
		HandleError(err)
	}

	if provisioning {
		fmt.Println("PIN set")
	}
	fmt.Printf("Vault unlocked: %s\n", a.Vault.Root())
}
