package vault

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/illarion/pinvault/internal/media"
	"github.com/illarion/pinvault/internal/security"
)

var pngData = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func newManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	root := filepath.Join(t.TempDir(), "Vault")
	opts = append([]Option{
		WithLogger(zaptest.NewLogger(t)),
		WithExportDir(filepath.Join(t.TempDir(), "Pictures", "Vault")),
	}, opts...)

	m, err := New(root, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := m.EnsureRoot(); err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func TestEnsureRoot(t *testing.T) {
	m := newManager(t)

	info, err := os.Stat(m.Root())
	if err != nil {
		t.Fatalf("Root not created: %v", err)
	}
	if !info.IsDir() || info.Mode().Perm() != 0700 {
		t.Errorf("Expected private directory, got %v", info.Mode())
	}

	if err := m.EnsureRoot(); err != nil {
		t.Fatalf("Second EnsureRoot failed: %v", err)
	}

	// A root removed from under the manager comes back
	if err := os.RemoveAll(m.Root()); err != nil {
		t.Fatalf("Failed to remove root: %v", err)
	}
	if _, err := m.CreateFolder(".", "Photos"); err != nil {
		t.Fatalf("CreateFolder after root removal failed: %v", err)
	}
	if !exists(filepath.Join(m.Root(), "Photos")) {
		t.Error("Folder should exist in recreated root")
	}
}

func TestCreateFolder(t *testing.T) {
	m := newManager(t)

	path, err := m.CreateFolder(m.Root(), "Photos")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	if path != filepath.Join(m.Root(), "Photos") {
		t.Errorf("Unexpected path %s", path)
	}

	if _, err := m.CreateFolder(path, "2024"); err != nil {
		t.Fatalf("Nested CreateFolder failed: %v", err)
	}

	tests := []struct {
		name    string
		parent  string
		folder  string
		wantErr error
	}{
		{"empty", ".", "", ErrEmptyName},
		{"blank", ".", "   ", ErrEmptyName},
		{"duplicate", ".", "Photos", ErrAlreadyExists},
		{"nested duplicate", "Photos", "2024", ErrAlreadyExists},
		{"separator", ".", "a/b", security.ErrInvalidName},
		{"dotdot", ".", "..", security.ErrInvalidName},
		{"parent outside", filepath.Dir(m.Root()), "x", security.ErrPathEscapes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.CreateFolder(tt.parent, tt.folder)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if exists(filepath.Join(filepath.Dir(m.Root()), "x")) {
		t.Error("Folder was created outside the vault")
	}
}

func TestListFolder(t *testing.T) {
	m := newManager(t)

	if _, err := m.CreateFolder(".", "b-folder"); err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	writeFile(t, filepath.Join(m.Root(), "a.png"), pngData)
	writeFile(t, filepath.Join(m.Root(), "c.txt"), []byte("notes"))
	writeFile(t, filepath.Join(m.Root(), tempPrefix+"123.tmp"), []byte("partial"))

	entries, err := m.ListFolder(".")
	if err != nil {
		t.Fatalf("ListFolder failed: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d: %+v", len(entries), entries)
	}

	img, dir, txt := entries[0], entries[1], entries[2]
	if img.Name != "a.png" || img.IsDir || img.Kind != media.KindImage || img.MIME != "image/png" {
		t.Errorf("Unexpected image entry %+v", img)
	}
	if img.Size == nil || *img.Size != int64(len(pngData)) {
		t.Errorf("Unexpected image size %v", img.Size)
	}
	if img.Path != filepath.Join(m.Root(), "a.png") {
		t.Errorf("Expected absolute path, got %s", img.Path)
	}
	if dir.Name != "b-folder" || !dir.IsDir || dir.Size != nil || dir.Kind != media.KindFolder {
		t.Errorf("Unexpected folder entry %+v", dir)
	}
	if txt.Name != "c.txt" || txt.ModifiedAt == nil {
		t.Errorf("Unexpected text entry %+v", txt)
	}

	again, err := m.ListFolder(m.Root())
	if err != nil {
		t.Fatalf("Second ListFolder failed: %v", err)
	}
	if len(again) != len(entries) {
		t.Fatalf("Listing changed without a mutation: %d vs %d", len(again), len(entries))
	}
	for i := range again {
		if again[i].Path != entries[i].Path || *again[i].ModifiedAt != *entries[i].ModifiedAt {
			t.Errorf("Entry %d differs between listings", i)
		}
	}

	if _, err := m.ListFolder("missing"); !errors.Is(err, ErrIO) {
		t.Errorf("Expected ErrIO for a missing folder, got %v", err)
	}
	if _, err := m.ListFolder("../"); !errors.Is(err, security.ErrPathEscapes) {
		t.Errorf("Expected ErrPathEscapes, got %v", err)
	}
}

func TestListFolders(t *testing.T) {
	m := newManager(t)

	for _, name := range []string{"Docs", "Photos", "Audios"} {
		if _, err := m.CreateFolder(".", name); err != nil {
			t.Fatalf("CreateFolder failed: %v", err)
		}
	}
	writeFile(t, filepath.Join(m.Root(), "loose.txt"), []byte("x"))

	folders, err := m.ListFolders(filepath.Join(m.Root(), "Photos"))
	if err != nil {
		t.Fatalf("ListFolders failed: %v", err)
	}

	var names []string
	for _, f := range folders {
		names = append(names, f.Name)
	}
	if len(names) != 2 || names[0] != "Audios" || names[1] != "Docs" {
		t.Errorf("Expected [Audios Docs], got %v", names)
	}
}

func TestDeleteEntries(t *testing.T) {
	m := newManager(t)

	writeFile(t, filepath.Join(m.Root(), "a.txt"), []byte("a"))
	writeFile(t, filepath.Join(m.Root(), "Photos", "nested", "b.png"), pngData)

	n, err := m.DeleteEntries([]string{
		filepath.Join(m.Root(), "a.txt"),
		filepath.Join(m.Root(), "Photos"),
		filepath.Join(m.Root(), "already-gone.txt"),
	})
	if err != nil {
		t.Fatalf("DeleteEntries failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 deleted (missing counts), got %d", n)
	}

	entries, err := m.ListFolder(".")
	if err != nil {
		t.Fatalf("ListFolder failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty vault, got %+v", entries)
	}
}

func TestDeleteEntriesPartialFailure(t *testing.T) {
	m := newManager(t)

	outside := filepath.Join(t.TempDir(), "keep.txt")
	writeFile(t, outside, []byte("not yours"))
	writeFile(t, filepath.Join(m.Root(), "a.txt"), []byte("a"))
	writeFile(t, filepath.Join(m.Root(), "c.txt"), []byte("c"))

	n, err := m.DeleteEntries([]string{
		filepath.Join(m.Root(), "a.txt"),
		outside,
		filepath.Join(m.Root(), "c.txt"),
	})

	var pf *PartialFailureError
	if !errors.As(err, &pf) {
		t.Fatalf("Expected PartialFailureError, got %v", err)
	}
	if n != 1 || pf.Deleted != 1 || pf.Path != outside {
		t.Errorf("Unexpected partial failure: n=%d %+v", n, pf)
	}
	if exists(filepath.Join(m.Root(), "a.txt")) {
		t.Error("a.txt should be deleted")
	}
	if !exists(outside) {
		t.Error("File outside the vault must not be deleted")
	}
	if !exists(filepath.Join(m.Root(), "c.txt")) {
		t.Error("c.txt should be untouched after the failure")
	}

	if _, err := m.DeleteEntries([]string{m.Root()}); err == nil {
		t.Error("Deleting the vault root should fail")
	}
}
