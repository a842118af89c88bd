package cmd

import (
	"context"
	"fmt"
)

// MakeFolder creates a folder in the vault
func MakeFolder(ctx context.Context, name, parent string) {
	withUnlockedApp(ctx, func(a *App) error {
		return makeFolder(a, name, parent)
	})
}

func makeFolder(a *App, name, parent string) error {
	path, err := a.Vault.CreateFolder(parent, name)
	if err != nil {
		return err
	}
	fmt.Printf("Created %s\n", path)
	return nil
}
