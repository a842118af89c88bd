package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/pinvault/internal/selection"
)

// Remove deletes entries from the vault. With all set, every entry of
// folder is removed.
func Remove(ctx context.Context, paths []string, all bool, folder string) {
	withUnlockedApp(ctx, func(a *App) error {
		return removeEntries(a, paths, all, folder)
	})
}

func removeEntries(a *App, paths []string, all bool, folder string) error {
	sel := selection.New()
	if all {
		ids, err := folderIDs(a, folder, false)
		if err != nil {
			return err
		}
		sel = sel.SelectAll(ids)
	} else {
		sel = selectPaths(paths)
	}

	if sel.Len() == 0 {
		fmt.Println("Nothing selected")
		return nil
	}

	n, err := a.Vault.DeleteEntries(sel.IDs())
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d entries\n", n)
	return nil
}

// folderIDs lists the paths in folder, optionally files only
func folderIDs(a *App, folder string, filesOnly bool) ([]string, error) {
	entries, err := a.Vault.ListFolder(folder)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if filesOnly && e.IsDir {
			continue
		}
		ids = append(ids, e.Path)
	}
	return ids, nil
}

// selectPaths selects each path once
func selectPaths(paths []string) selection.Selection {
	sel := selection.New()
	for _, p := range paths {
		if !sel.Contains(p) {
			sel = sel.LongPress(p)
		}
	}
	return sel
}
