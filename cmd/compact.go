package cmd

import (
	"context"
	"fmt"
	"os"
)

// Compact compacts the settings database to reclaim unused space
func Compact(_ context.Context) {
	a := MustOpenApp()
	defer a.Close()

	if err := compactStore(a); err != nil {
		a.Close()
		HandleError(err)
	}
}

func compactStore(a *App) error {
	info, err := os.Stat(a.Store.Path())
	if err != nil {
		return err
	}
	sizeBefore := info.Size()

	if err := a.Store.Compact(); err != nil {
		return err
	}

	info, err = os.Stat(a.Store.Path())
	if err != nil {
		return err
	}
	fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(info.Size()))
	return nil
}
