package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/illarion/pinvault/internal/media"
	"github.com/illarion/pinvault/internal/metrics"
	"github.com/illarion/pinvault/internal/security"
)

// AudioFolder is where imported audio lands
const AudioFolder = "Audios"

// tempPrefix marks in-progress cross-device copies; listings skip them
const tempPrefix = ".pinvault-"

// Entry is one file or folder as seen by the last listing
type Entry struct {
	Path       string
	Name       string
	IsDir      bool
	Size       *int64
	ModifiedAt *time.Time

	Kind      media.Kind
	MIME      string
	CreatedAt *time.Time
	TakenAt   *time.Time
}

// Manager owns the vault root
type Manager struct {
	rootPath  string
	exportDir string
	log       *zap.Logger
	metrics   *metrics.Metrics
	locks     *keyedMutex

	// rename is os.Rename outside of tests
	rename func(oldpath, newpath string) error

	mu sync.Mutex
	pv *security.PathValidator
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithMetrics sets the metrics sink
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithExportDir sets where ExportBatch moves files
func WithExportDir(dir string) Option {
	return func(m *Manager) { m.exportDir = dir }
}

// New creates a manager for the vault at root. The directory is created
// by EnsureRoot or lazily by the first operation.
func New(root string, opts ...Option) (*Manager, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	m := &Manager{
		rootPath: abs,
		log:      zap.NewNop(),
		locks:    newKeyedMutex(),
		rename:   os.Rename,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.exportDir != "" {
		if m.exportDir, err = filepath.Abs(m.exportDir); err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
	}
	return m, nil
}

// Root returns the absolute vault root
func (m *Manager) Root() string {
	return m.rootPath
}

// ExportDir returns the absolute export directory, empty if unset
func (m *Manager) ExportDir() string {
	return m.exportDir
}

// Close releases the root handle
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pv == nil {
		return nil
	}
	err := m.pv.Close()
	m.pv = nil
	return err
}

// EnsureRoot creates the vault root if it is missing. A root that was
// removed from under an open manager is recreated and reopened.
func (m *Manager) EnsureRoot() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.ensureRoot()
	return err
}

func (m *Manager) ensureRoot() (*security.PathValidator, error) {
	_, statErr := os.Stat(m.rootPath)
	if m.pv != nil && statErr == nil {
		return m.pv, nil
	}

	if err := os.MkdirAll(m.rootPath, 0700); err != nil {
		return nil, fmt.Errorf("failed to create vault root: %w", ioError(err))
	}
	if m.pv != nil {
		m.pv.Close()
		m.pv = nil
	}

	pv, err := security.New(m.rootPath)
	if err != nil {
		return nil, ioError(err)
	}
	m.pv = pv
	if statErr != nil {
		m.log.Info("created vault root", zap.String("root", m.rootPath))
	}
	return pv, nil
}

func (m *Manager) validator() (*security.PathValidator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureRoot()
}

// CreateFolder creates name inside parent, which is an absolute path in
// the vault or a path relative to the root. It returns the new folder's
// absolute path.
func (m *Manager) CreateFolder(parent, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if err := security.ValidateName(name); err != nil {
		return "", err
	}

	pv, err := m.validator()
	if err != nil {
		return "", err
	}

	rel, err := pv.Resolve(parent)
	if err != nil {
		return "", err
	}
	target := path.Join(rel, name)

	if err := pv.MkdirInRoot(target, 0700); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", ErrAlreadyExists
		}
		return "", fmt.Errorf("failed to create folder %s: %w", name, ioError(err))
	}

	m.metrics.RecordFolderCreated()
	m.log.Info("created folder", zap.String("folder", target))
	return pv.Abs(target), nil
}

// ListFolder reads the entries of a vault folder, sorted by name.
func (m *Manager) ListFolder(p string) ([]Entry, error) {
	pv, err := m.validator()
	if err != nil {
		return nil, err
	}

	rel, err := pv.Resolve(p)
	if err != nil {
		return nil, err
	}

	dirEntries, err := pv.ReadDirInRoot(rel)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", rel, ioError(err))
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if strings.HasPrefix(de.Name(), tempPrefix) {
			continue
		}

		info, err := de.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", de.Name(), ioError(err))
		}

		entries = append(entries, m.entry(pv.Abs(path.Join(rel, de.Name())), info))
	}
	return entries, nil
}

func (m *Manager) entry(abs string, info fs.FileInfo) Entry {
	mod := info.ModTime()
	e := Entry{
		Path:       abs,
		Name:       info.Name(),
		IsDir:      info.IsDir(),
		ModifiedAt: &mod,
	}

	if e.IsDir {
		e.Kind = media.KindFolder
		return e
	}

	size := info.Size()
	e.Size = &size
	e.Kind = media.KindOther

	if !info.Mode().IsRegular() {
		return e
	}
	mi, err := media.Inspect(abs)
	if err != nil {
		m.log.Debug("failed to inspect entry", zap.String("path", abs), zap.Error(err))
		return e
	}
	e.Kind, e.MIME, e.CreatedAt, e.TakenAt = mi.Kind, mi.MIME, mi.CreatedAt, mi.TakenAt
	return e
}

// ListFolders returns the folders directly under the root, leaving out
// excluding (typically the folder the user is moving from).
func (m *Manager) ListFolders(excluding string) ([]Entry, error) {
	all, err := m.ListFolder(".")
	if err != nil {
		return nil, err
	}

	var skip string
	if excluding != "" {
		pv, err := m.validator()
		if err != nil {
			return nil, err
		}
		if rel, err := pv.Resolve(excluding); err == nil {
			skip = pv.Abs(rel)
		}
	}

	folders := make([]Entry, 0, len(all))
	for _, e := range all {
		if e.IsDir && e.Path != skip {
			folders = append(folders, e)
		}
	}
	return folders, nil
}

// DeleteEntries removes each path, recursively for folders. A path that no
// longer exists counts as deleted. The first other failure stops the batch
// with a *PartialFailureError.
func (m *Manager) DeleteEntries(paths []string) (int, error) {
	pv, err := m.validator()
	if err != nil {
		return 0, err
	}

	deleted := 0
	defer func() {
		m.metrics.RecordDeleted(deleted)
	}()

	for _, p := range paths {
		rel, err := pv.Resolve(p)
		if err != nil {
			return deleted, &PartialFailureError{Deleted: deleted, Path: p, Err: err}
		}
		if rel == "." {
			return deleted, &PartialFailureError{Deleted: deleted, Path: p, Err: errors.New("refusing to delete the vault root")}
		}

		if _, err := pv.LstatInRoot(rel); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				deleted++
				continue
			}
			return deleted, &PartialFailureError{Deleted: deleted, Path: p, Err: ioError(err)}
		}

		if err := pv.RemoveAllInRoot(rel); err != nil {
			return deleted, &PartialFailureError{Deleted: deleted, Path: p, Err: ioError(err)}
		}
		deleted++
		m.log.Debug("deleted entry", zap.String("path", rel))
	}

	m.log.Info("deleted entries", zap.Int("count", deleted))
	return deleted, nil
}
