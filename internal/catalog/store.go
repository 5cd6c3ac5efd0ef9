// Package catalog is the persisted book, category and order repository.
//
// The store keeps no snapshot in memory: every read goes to the storage
// medium and every write replaces the whole persisted snapshot, then publishes
// a change signal so other consumers re-read. Two writers racing across
// processes resolve as last writer wins.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pageturn/storefront/internal/domain"
	domainerrors "github.com/pageturn/storefront/internal/errors"
	"github.com/pageturn/storefront/internal/id"
	"github.com/pageturn/storefront/internal/kv"
	"github.com/pageturn/storefront/internal/logger"
	"github.com/pageturn/storefront/internal/validation"
)

// DefaultKey is the storage key of the catalog snapshot.
const DefaultKey = "catalog"

// CategoryPolicy decides where categories come from on load.
type CategoryPolicy string

const (
	// CategoriesFromSeed replaces persisted categories with the compiled-in
	// list on every load. Books and orders still persist.
	CategoriesFromSeed CategoryPolicy = "seed"
	// CategoriesPersisted keeps whatever categories were last saved.
	CategoriesPersisted CategoryPolicy = "persist"
)

// Valid reports whether p is a known policy.
func (p CategoryPolicy) Valid() bool {
	return p == CategoriesFromSeed || p == CategoriesPersisted
}

// ChangePublisher receives a signal after every successful write.
type ChangePublisher interface {
	Publish()
}

// NoopPublisher discards change signals.
type NoopPublisher struct{}

// Publish implements ChangePublisher as a no-op.
func (NoopPublisher) Publish() {}

// errMalformed marks a persisted blob that decoded but has the wrong shape.
var errMalformed = errors.New("catalog snapshot has no books array")

// Options configures a Store.
type Options struct {
	Key            string
	CategoryPolicy CategoryPolicy
	// Seed builds the default snapshot. Defaults to DefaultSnapshot.
	Seed   func() *domain.Snapshot
	Now    func() time.Time
	Logger *slog.Logger
}

// Store is the catalog repository.
type Store struct {
	storage   kv.Storage
	publisher ChangePublisher
	validator *validation.Validator
	logger    *slog.Logger

	key    string
	policy CategoryPolicy
	seed   func() *domain.Snapshot
	now    func() time.Time

	// mu serialises read-modify-write cycles issued through this Store.
	mu sync.Mutex
}

// New creates a catalog store over storage. A nil publisher disables change signals.
func New(storage kv.Storage, publisher ChangePublisher, opts Options) *Store {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if !opts.CategoryPolicy.Valid() {
		opts.CategoryPolicy = CategoriesFromSeed
	}
	if opts.Seed == nil {
		opts.Seed = DefaultSnapshot
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Store{
		storage:   storage,
		publisher: publisher,
		validator: validation.New(),
		logger:    logger.OrDiscard(opts.Logger),
		key:       opts.Key,
		policy:    opts.CategoryPolicy,
		seed:      opts.Seed,
		now:       opts.Now,
	}
}

// Load returns the current snapshot. The caller owns the returned value.
//
// A missing snapshot is seeded and persisted. A corrupted one is logged and
// replaced by the seed in the returned value only; the blob is overwritten by
// the next save. Storage read failures are returned.
func (s *Store) Load(ctx context.Context) (*domain.Snapshot, error) {
	data, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		snap := s.seed()
		if err := s.persist(ctx, snap); err != nil {
			return nil, err
		}
		s.logger.Info("catalog seeded",
			slog.String("key", s.key),
			slog.Int("books", len(snap.Books)),
			slog.Int("categories", len(snap.Categories)))
		return snap, nil
	}
	if err != nil {
		return nil, domainerrors.Storage(err, "read catalog")
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		s.logger.Warn("catalog snapshot unreadable, falling back to seed",
			slog.String("key", s.key),
			slog.Int("bytes", len(data)),
			slog.String("error", err.Error()))
		return s.seed(), nil
	}

	if s.policy == CategoriesFromSeed {
		snap.Categories = s.seed().Categories
	}
	return snap, nil
}

// Save persists snap as the complete new state and publishes a change.
func (s *Store) Save(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return domainerrors.Validation("snapshot is required")
	}
	s.mu.Lock()
	err := s.persist(ctx, snap.Clone())
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publisher.Publish()
	return nil
}

// Update runs fn on a private copy of the current snapshot and persists the
// result. If fn returns an error nothing is written. The change signal is
// published after the write lock is released, so listeners may call back
// into the store.
func (s *Store) Update(ctx context.Context, fn func(*domain.Snapshot) error) (*domain.Snapshot, error) {
	snap, err := s.update(ctx, fn)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish()
	return snap, nil
}

func (s *Store) update(ctx context.Context, fn func(*domain.Snapshot) error) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	work := current.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, work); err != nil {
		return nil, err
	}
	return work, nil
}

// Reset replaces the persisted catalog with the seed.
func (s *Store) Reset(ctx context.Context) error {
	return s.Save(ctx, s.seed())
}

func (s *Store) persist(ctx context.Context, snap *domain.Snapshot) error {
	snap.Normalize()
	data, err := json.Marshal(snap)
	if err != nil {
		return domainerrors.Wrapf(err, domainerrors.CodeInternal, "encode catalog %s", s.key)
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		return domainerrors.Storage(err, "persist catalog")
	}
	s.logger.Debug("catalog saved", slog.String("key", s.key), slog.Int("bytes", len(data)))
	return nil
}

func decodeSnapshot(data []byte) (*domain.Snapshot, error) {
	var shape struct {
		Books      *[]domain.Book    `json:"books"`
		Categories []domain.Category `json:"categories"`
		Orders     []domain.Order    `json:"orders"`
		Retired    []string          `json:"retiredBookIds"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if shape.Books == nil {
		return nil, errMalformed
	}
	snap := &domain.Snapshot{
		Books:      *shape.Books,
		Categories: shape.Categories,
		Orders:     shape.Orders,

		RetiredBookIDs: shape.Retired,
	}
	snap.Normalize()
	return snap, nil
}

// Book returns the book with bookID.
func (s *Store) Book(ctx context.Context, bookID string) (*domain.Book, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	idx := snap.BookIndex(bookID)
	if idx < 0 {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}
	book := snap.Books[idx]
	return &book, nil
}

// ActiveBooks returns the books visible on the storefront, in catalog order.
func (s *Store) ActiveBooks(ctx context.Context) ([]domain.Book, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]domain.Book, 0, len(snap.Books))
	for _, b := range snap.Books {
		if b.IsActive {
			active = append(active, b)
		}
	}
	return active, nil
}

// CreateBook validates book and prepends it to the catalog. An empty id is
// replaced with a fresh one. An id that is in the catalog, or that belonged
// to a deleted book, is rejected.
func (s *Store) CreateBook(ctx context.Context, book domain.Book) (*domain.Book, error) {
	if book.ID == "" {
		bookID, err := id.Generate("bk")
		if err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate book id")
		}
		book.ID = bookID
	}
	if err := s.validator.Validate(book); err != nil {
		return nil, err
	}

	_, err := s.Update(ctx, func(snap *domain.Snapshot) error {
		if snap.BookIndex(book.ID) >= 0 {
			return domainerrors.AlreadyExistsf("book %s already exists", book.ID)
		}
		if snap.BookIDRetired(book.ID) {
			return domainerrors.AlreadyExistsf("book id %s belonged to a deleted book", book.ID)
		}
		snap.Books = append([]domain.Book{book}, snap.Books...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("book created", slog.String("book_id", book.ID), slog.String("title", book.Title))
	return &book, nil
}

// UpdateBook replaces the stored book that has book.ID.
func (s *Store) UpdateBook(ctx context.Context, book domain.Book) error {
	if err := s.validator.Validate(book); err != nil {
		return err
	}
	_, err := s.Update(ctx, func(snap *domain.Snapshot) error {
		idx := snap.BookIndex(book.ID)
		if idx < 0 {
			return domainerrors.NotFoundf("book %s not found", book.ID)
		}
		snap.Books[idx] = book
		return nil
	})
	return err
}

// PatchBook overwrites the fields set in patch and returns the updated book.
func (s *Store) PatchBook(ctx context.Context, bookID string, patch domain.BookPatch) (*domain.Book, error) {
	var updated domain.Book
	_, err := s.Update(ctx, func(snap *domain.Snapshot) error {
		idx := snap.BookIndex(bookID)
		if idx < 0 {
			return domainerrors.NotFoundf("book %s not found", bookID)
		}
		updated = patch.Apply(snap.Books[idx])
		if err := s.validator.Validate(updated); err != nil {
			return err
		}
		snap.Books[idx] = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteBook removes the book with bookID and retires its id.
func (s *Store) DeleteBook(ctx context.Context, bookID string) error {
	_, err := s.Update(ctx, func(snap *domain.Snapshot) error {
		idx := snap.BookIndex(bookID)
		if idx < 0 {
			return domainerrors.NotFoundf("book %s not found", bookID)
		}
		snap.Books = append(snap.Books[:idx], snap.Books[idx+1:]...)
		snap.RetireBookID(bookID)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("book deleted", slog.String("book_id", bookID))
	return nil
}
