package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/illarion/pinvault/internal/selection"
	"github.com/illarion/pinvault/internal/vault"
)

// Move moves files into a vault folder. With from set, every file in that
// folder is moved except the names in except.
func Move(ctx context.Context, dest, from string, except, paths []string) {
	withUnlockedApp(ctx, func(a *App) error {
		return moveFiles(ctx, a, dest, from, except, paths)
	})
}

func moveFiles(ctx context.Context, a *App, dest, from string, except, paths []string) error {
	sel, err := pickFiles(a, from, except, paths)
	if err != nil {
		return err
	}
	if sel.Len() == 0 {
		fmt.Println("Nothing selected")
		return nil
	}

	job := vault.NewMoveJob(sel.IDs(), dest)
	bar := newProgressBar(job.Total, "Moving files")
	for p, err := range a.Vault.MoveSeq(ctx, job) {
		if err != nil {
			_ = bar.Exit()
			return err
		}
		_ = bar.Set(p.Completed)
	}
	_ = bar.Finish()

	fmt.Printf("Moved %d files to %s\n", job.Completed, dest)
	return nil
}

// Export moves files out of the vault into the export directory
func Export(ctx context.Context, from string, except, paths []string) {
	withUnlockedApp(ctx, func(a *App) error {
		return exportFiles(ctx, a, from, except, paths)
	})
}

func exportFiles(ctx context.Context, a *App, from string, except, paths []string) error {
	sel, err := pickFiles(a, from, except, paths)
	if err != nil {
		return err
	}
	if sel.Len() == 0 {
		fmt.Println("Nothing selected")
		return nil
	}

	res, err := runWithBar(sel.Len(), "Exporting", func(onProgress func(vault.Progress)) (vault.MoveResult, error) {
		return a.Vault.ExportBatch(ctx, sel.IDs(), onProgress)
	})
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d files to %s\n", res.Completed, a.Vault.ExportDir())
	return nil
}

// ImportAudio moves audio files into the Audios folder of the vault
func ImportAudio(ctx context.Context, paths []string) {
	withUnlockedApp(ctx, func(a *App) error {
		sel := selectPaths(absPaths(paths))
		if sel.Len() == 0 {
			fmt.Println("Nothing selected")
			return nil
		}

		res, err := runWithBar(sel.Len(), "Importing audio", func(onProgress func(vault.Progress)) (vault.MoveResult, error) {
			return a.Vault.ImportAudio(ctx, sel.IDs(), onProgress)
		})
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d files to %s\n", res.Completed, vault.AudioFolder)
		return nil
	})
}

// pickFiles builds the selection for a batch: the explicit paths, or all
// files of from minus the excluded names.
func pickFiles(a *App, from string, except, paths []string) (selection.Selection, error) {
	if from == "" {
		return selectPaths(paths), nil
	}

	ids, err := folderIDs(a, from, true)
	if err != nil {
		return selection.Selection{}, err
	}
	sel := selection.New().SelectAll(ids)

	skip := make(map[string]bool, len(except))
	for _, name := range except {
		skip[name] = true
	}
	for _, id := range ids {
		if skip[filepath.Base(id)] {
			sel = sel.Toggle(id)
		}
	}
	return sel, nil
}

// absPaths resolves paths given on the command line against the working
// directory; vault paths are resolved by the vault itself.
func absPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, p)
	}
	return out
}

func runWithBar(total int, desc string, fn func(func(vault.Progress)) (vault.MoveResult, error)) (vault.MoveResult, error) {
	bar := newProgressBar(total, desc)
	res, err := fn(func(p vault.Progress) {
		_ = bar.Set(p.Completed)
	})
	if err != nil {
		_ = bar.Exit()
		return res, err
	}
	_ = bar.Finish()
	return res, nil
}

func newProgressBar(total int, desc string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetVisibility(term.IsTerminal(int(os.Stderr.Fd()))),
		progressbar.OptionFullWidth(),
	)
}
