package cmd

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/illarion/pinvault/internal/assets"
	"github.com/illarion/pinvault/internal/media"
	"github.com/illarion/pinvault/internal/vault"
)

var errPageFailed = errors.New("failed to load a page of the source directory")

// Import moves media from srcDir (or its album sub-directory) into the
// vault folder dest. The pending list is kept in the settings store so an
// interrupted import can be resumed.
func Import(ctx context.Context, dest, srcDir, album string, kinds []media.Kind, resume bool) {
	withUnlockedApp(ctx, func(a *App) error {
		var pending []string
		var err error

		if resume {
			pending, err = a.Store.FilePickUp()
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Println("Nothing to resume")
				return nil
			}
		} else {
			if srcDir == "" {
				return fmt.Errorf("source directory required")
			}
			pending, err = collectAssets(ctx, a, srcDir, album, kinds)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Println("No matching files")
				return nil
			}
			if err := a.Store.SetFilePickUp(pending); err != nil {
				return err
			}
		}

		if _, err := a.Vault.CreateFolder(".", dest); err != nil && !errors.Is(err, vault.ErrAlreadyExists) {
			return err
		}

		job := vault.NewMoveJob(pending, dest)
		res, err := runWithBar(job.Total, "Importing", func(onProgress func(vault.Progress)) (vault.MoveResult, error) {
			return a.Vault.MoveBatch(ctx, job, onProgress)
		})
		if err != nil {
			if perr := a.Store.SetFilePickUp(pending[res.Completed:]); perr != nil {
				a.Log.Warn("failed to save pending files", zap.Error(perr))
			}
			fmt.Printf("Imported %d of %d files. Run 'pinvault import --resume --to %s' to continue.\n",
				res.Completed, res.Total, dest)
			return err
		}

		if err := a.Store.ClearFilePickUp(); err != nil {
			return err
		}
		fmt.Printf("Imported %d files to %s\n", res.Completed, dest)
		return nil
	})
}

// collectAssets pages through srcDir and returns the file paths found
func collectAssets(ctx context.Context, a *App, srcDir, album string, kinds []media.Kind) ([]string, error) {
	src := assets.NewSource(assets.NewDirProvider(srcDir, kinds...),
		assets.WithPageSize(a.Config.PageSize),
		assets.WithLogger(a.Log.Named("assets")),
		assets.WithMetrics(a.Metrics),
	)

	var uris []string
	page := src.Load(ctx, album)
	for {
		if len(page.Items) == 0 && page.Cursor.HasNextPage {
			return nil, errPageFailed
		}
		for _, item := range page.Items {
			uris = append(uris, item.URI)
		}
		if !page.Cursor.HasNextPage {
			return uris, nil
		}
		page = src.LoadNext(ctx)
	}
}

// ParseKinds parses a comma-separated list of media kinds
func ParseKinds(list []string) ([]media.Kind, error) {
	kinds := make([]media.Kind, 0, len(list))
	for _, s := range list {
		k := media.Kind(s)
		switch k {
		case media.KindImage, media.KindVideo, media.KindAudio, media.KindDocument, media.KindOther:
			kinds = append(kinds, k)
		default:
			return nil, fmt.Errorf("unknown kind %q", s)
		}
	}
	return kinds, nil
}
