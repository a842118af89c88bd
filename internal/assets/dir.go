package assets

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/illarion/pinvault/internal/media"
)

// DirProvider lists regular files of a directory. The filter names a
// sub-directory (an album); the empty filter is the directory itself.
type DirProvider struct {
	Root string
	// Kinds restricts the listing when non-empty
	Kinds []media.Kind
}

// NewDirProvider creates a provider over root, optionally limited to kinds
func NewDirProvider(root string, kinds ...media.Kind) *DirProvider {
	return &DirProvider{Root: root, Kinds: kinds}
}

// ListPage implements Provider. The cursor encodes the last returned name.
func (p *DirProvider) ListPage(ctx context.Context, filter, cursor string, limit int) (PageResult, error) {
	if limit <= 0 {
		return PageResult{}, fmt.Errorf("invalid page size %d", limit)
	}

	dir := p.Root
	if filter != "" {
		if !filepath.IsLocal(filter) {
			return PageResult{}, fmt.Errorf("invalid album %q", filter)
		}
		dir = filepath.Join(p.Root, filter)
	}

	after, err := decodeCursor(cursor)
	if err != nil {
		return PageResult{}, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return PageResult{}, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	// os.ReadDir is sorted by name
	start := sort.Search(len(entries), func(i int) bool {
		return entries[i].Name() > after
	})
	if cursor == "" {
		start = 0
	}

	var res PageResult
	for i := start; i < len(entries); i++ {
		if err := ctx.Err(); err != nil {
			return PageResult{}, err
		}

		e := entries[i]
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}

		path := filepath.Join(dir, e.Name())
		kind, _, err := media.SniffFile(path)
		if err != nil {
			return PageResult{}, err
		}
		if len(p.Kinds) > 0 && !slices.Contains(p.Kinds, kind) {
			continue
		}

		if len(res.Items) == limit {
			res.HasMore = true
			break
		}

		res.Items = append(res.Items, AssetRef{
			ID:   filepath.ToSlash(filepath.Join(filter, e.Name())),
			URI:  path,
			Kind: kind,
		})
	}

	if n := len(res.Items); n > 0 && res.HasMore {
		res.NextCursor = encodeCursor(filepath.Base(res.Items[n-1].URI))
	}
	return res, nil
}

func encodeCursor(name string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(name))
}

func decodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("invalid cursor: %w", err)
	}
	return string(b), nil
}
