package assets

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/illarion/pinvault/internal/media"
	"github.com/illarion/pinvault/internal/metrics"
)

const (
	DefaultPageSize = 50
	GridPageSize    = 100
)

// AssetRef identifies one item offered by a provider
type AssetRef struct {
	ID   string
	URI  string
	Kind media.Kind
}

// PageResult is one page as returned by a Provider
type PageResult struct {
	Items      []AssetRef
	NextCursor string
	HasMore    bool
}

// Provider lists assets a page at a time. cursor is empty for the first page.
type Provider interface {
	ListPage(ctx context.Context, filter, cursor string, limit int) (PageResult, error)
}

// PageCursor is the position of a Source within its filter
type PageCursor struct {
	Token       string
	HasNextPage bool
}

// Page is what a Source hands to its caller
type Page struct {
	Items  []AssetRef
	Cursor PageCursor
}

// Source pages through a Provider for one filter at a time
type Source struct {
	provider Provider
	limit    int
	log      *zap.Logger
	metrics  *metrics.Metrics

	mu       sync.Mutex
	filter   string
	cursor   PageCursor
	gen      uint64
	inFlight bool
}

// Option configures a Source
type Option func(*Source)

// WithPageSize sets the page size. Non-positive values are ignored.
func WithPageSize(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(s *Source) { s.log = log }
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Source) { s.metrics = m }
}

// NewSource creates a Source. Nothing is loaded until Load.
func NewSource(p Provider, opts ...Option) *Source {
	s := &Source{
		provider: p,
		limit:    DefaultPageSize,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PageSize returns the fixed page size
func (s *Source) PageSize() int {
	return s.limit
}

// Filter returns the active filter
func (s *Source) Filter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Cursor returns the current cursor
func (s *Source) Cursor() PageCursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Load switches to filter, discards the old cursor and fetches page one.
// A fetch still running for the previous filter is ignored when it returns.
func (s *Source) Load(ctx context.Context, filter string) Page {
	s.mu.Lock()
	s.gen++
	s.filter = filter
	s.cursor = PageCursor{HasNextPage: true}
	s.inFlight = true
	gen := s.gen
	s.mu.Unlock()

	return s.fetch(ctx, gen, filter, "")
}

// LoadNext fetches the page after the cursor. It returns an empty page and
// the unchanged cursor when there is no next page or a fetch is already
// running.
func (s *Source) LoadNext(ctx context.Context) Page {
	s.mu.Lock()
	if !s.cursor.HasNextPage || s.inFlight {
		cur := s.cursor
		s.mu.Unlock()
		return Page{Cursor: cur}
	}
	s.inFlight = true
	gen, filter, token := s.gen, s.filter, s.cursor.Token
	s.mu.Unlock()

	return s.fetch(ctx, gen, filter, token)
}

func (s *Source) fetch(ctx context.Context, gen uint64, filter, token string) Page {
	res, err := s.provider.ListPage(ctx, filter, token, s.limit)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		s.log.Debug("discarding page for stale filter", zap.String("filter", filter))
		s.metrics.RecordPage("stale")
		return Page{Cursor: s.cursor}
	}
	s.inFlight = false

	if err != nil {
		s.log.Warn("failed to load page",
			zap.String("filter", filter),
			zap.String("cursor", token),
			zap.Error(err),
		)
		s.metrics.RecordPage("error")
		return Page{Cursor: s.cursor}
	}

	s.cursor = PageCursor{Token: res.NextCursor, HasNextPage: res.HasMore}
	s.metrics.RecordPage("ok")
	return Page{Items: res.Items, Cursor: s.cursor}
}
