package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/pageturn/storefront/internal/domain"
	"github.com/pageturn/storefront/internal/logger"
)

// ErrClosed is returned by operations on a closed index.
var ErrClosed = errors.New("search: index closed")

// BookSource lists the books that should be searchable.
type BookSource interface {
	ActiveBooks(ctx context.Context) ([]domain.Book, error)
}

// ChangeWatcher delivers a signal after each catalog change.
type ChangeWatcher interface {
	Watch(ctx context.Context) <-chan struct{}
}

// Index wraps an in-memory Bleve index built from a BookSource.
//
// Thread safety: all public methods are safe for concurrent use. Searches
// run against whichever index was current when they started; a rebuild
// swaps in a complete new index.
type Index struct {
	source BookSource
	logger *slog.Logger

	mu     sync.RWMutex
	index  bleve.Index
	closed bool

	// rebuildMu keeps two rebuilds from racing to swap.
	rebuildMu sync.Mutex

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Options configures the search index.
type Options struct {
	Logger *slog.Logger // uses discard if nil
}

// New creates an empty index over source. Call Rebuild or Start to fill it.
func New(source BookSource, opts Options) (*Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Index{
		source: source,
		logger: logger.OrDiscard(opts.Logger),
		index:  index,
	}, nil
}

// Rebuild reads the active books and replaces the index with a fresh one.
func (s *Index) Rebuild(ctx context.Context) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	books, err := s.source.ActiveBooks(ctx)
	if err != nil {
		return fmt.Errorf("list active books: %w", err)
	}

	next, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	batch := next.NewBatch()
	for _, b := range books {
		if err := batch.Index(b.ID, NewBookDocument(b).ToMap()); err != nil {
			_ = next.Close()
			return fmt.Errorf("batch index %s: %w", b.ID, err)
		}
	}
	if err := next.Batch(batch); err != nil {
		_ = next.Close()
		return fmt.Errorf("commit batch: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = next.Close()
		return ErrClosed
	}
	prev := s.index
	s.index = next
	s.mu.Unlock()

	if err := prev.Close(); err != nil {
		s.logger.Warn("failed to close previous search index", "error", err)
	}
	s.logger.Debug("rebuilt search index", "documents", len(books))
	return nil
}

// Start fills the index and keeps it current by rebuilding after every
// change signal from watcher. It returns the error of the first rebuild;
// later failures are logged and the previous index stays in service.
func (s *Index) Start(ctx context.Context, watcher ChangeWatcher) error {
	ctx, cancel := context.WithCancel(ctx)

	// Subscribe before the first read so no change slips between them.
	changes := watcher.Watch(ctx)
	if err := s.Rebuild(ctx); err != nil {
		cancel()
		return err
	}

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for range changes {
			if err := s.Rebuild(ctx); err != nil {
				if ctx.Err() != nil || errors.Is(err, ErrClosed) {
					return
				}
				s.logger.Error("search index rebuild failed", "error", err)
			}
		}
	}()
	return nil
}

// DocumentCount returns the number of indexed books.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return s.index.DocCount()
}

// Close stops the rebuild loop and releases the index.
func (s *Index) Close() error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.index.Close()
}
