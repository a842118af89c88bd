package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/pinvault/internal/access"
	"github.com/illarion/pinvault/internal/keyring"
)

// SettingsUpdate holds the settings to change; empty fields are kept
type SettingsUpdate struct {
	LockAfter string
	Biometric string
	DarkTheme string
	Backup    string
}

// Settings applies update and prints the current settings
func Settings(ctx context.Context, update SettingsUpdate) {
	withUnlockedApp(ctx, func(a *App) error {
		if update.LockAfter != "" {
			d, err := access.ParseLockDuration(update.LockAfter)
			if err != nil {
				return err
			}
			if err := a.Access.SetLockDuration(d); err != nil {
				return err
			}
		}

		toggles := []struct {
			value string
			set   func(bool) error
		}{
			{update.Biometric, a.Store.SetBiometric},
			{update.DarkTheme, a.Store.SetDarkTheme},
			{update.Backup, a.Store.SetBackup},
		}
		for _, t := range toggles {
			if t.value == "" {
				continue
			}
			on, err := parseOnOff(t.value)
			if err != nil {
				return err
			}
			if err := t.set(on); err != nil {
				return err
			}
		}

		return printSettings(a)
	})
}

func printSettings(a *App) error {
	d, err := a.Access.LockDuration()
	if err != nil {
		return err
	}
	biometric, err := a.Store.Biometric()
	if err != nil {
		return err
	}
	dark, err := a.Store.DarkTheme()
	if err != nil {
		return err
	}
	backup, err := a.Store.Backup()
	if err != nil {
		return err
	}

	fmt.Printf("Vault:       %s\n", a.Vault.Root())
	fmt.Printf("Export to:   %s\n", a.Vault.ExportDir())
	fmt.Printf("Lock after:  %s\n", d)
	fmt.Printf("Biometric:   %s\n", onOff(biometric))
	fmt.Printf("Dark theme:  %s\n", onOff(dark))
	fmt.Printf("Backup:      %s\n", onOff(backup))
	fmt.Printf("PIN set:     %s\n", onOff(a.Access.State() != access.Unprovisioned))
	fmt.Printf("Keyring:     %s\n", onOff(keyring.HasPIN(a.VaultID)))
	if modified, err := a.Store.GetModified(); err == nil {
		fmt.Printf("Changed:     %s\n", modified.Local().Format(timeLayout))
	}
	return nil
}
