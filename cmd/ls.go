package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/illarion/pinvault/internal/media"
	"github.com/illarion/pinvault/internal/vault"
)

const timeLayout = "2006-01-02 15:04"

// List prints the entries of a vault folder
func List(ctx context.Context, folder string, foldersOnly bool) {
	withUnlockedApp(ctx, func(a *App) error {
		return listFolder(a, folder, foldersOnly)
	})
}

func listFolder(a *App, folder string, foldersOnly bool) error {
	var entries []vault.Entry
	var err error
	if foldersOnly {
		entries, err = a.Vault.ListFolders("")
	} else {
		entries, err = a.Vault.ListFolder(folder)
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("Empty")
		return nil
	}
	printEntries(a.Vault.Root(), entries)
	return nil
}

func printEntries(root string, entries []vault.Entry) {
	var files, dirs int
	var total int64

	for _, e := range entries {
		rel, err := filepath.Rel(root, e.Path)
		if err != nil {
			rel = e.Path
		}

		if e.IsDir {
			dirs++
			fmt.Printf("  %-8s %s/\n", media.KindFolder, rel)
			continue
		}

		files++
		size := ""
		if e.Size != nil {
			total += *e.Size
			size = formatSize(*e.Size)
		}

		when := ""
		switch {
		case e.TakenAt != nil:
			when = e.TakenAt.Format(timeLayout)
		case e.CreatedAt != nil:
			when = e.CreatedAt.Format(timeLayout)
		case e.ModifiedAt != nil:
			when = e.ModifiedAt.Format(timeLayout)
		}

		fmt.Printf("  %-8s %s (%s, %s)\n", e.Kind, rel, size, when)
	}

	fmt.Println()
	fmt.Printf("%d folders, %d files, %s\n", dirs, files, formatSize(total))
}
