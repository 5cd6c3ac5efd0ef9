package catalog

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/pageturn/storefront/internal/domain"
	domainerrors "github.com/pageturn/storefront/internal/errors"
)

var (
	// Matches any non-alphanumeric character.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches multiple hyphens.
	multipleHyphens = regexp.MustCompile(`-+`)
)

// CategoryID derives the id of a category from its display name.
// "Science Fiction" -> "cat-science-fiction".
// "Mystery & Thriller" -> "cat-mystery-thriller".
// "Poésie" -> "cat-poesie".
func CategoryID(name string) string {
	// Decompose accented characters.
	s := norm.NFKD.String(name)

	// Remove non-ASCII characters.
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return ""
	}
	return "cat-" + s
}

// AddCategory adds a category named name. Categories only survive a reload
// under CategoriesPersisted, so the call is refused under the seed policy.
func (s *Store) AddCategory(ctx context.Context, name string) (*domain.Category, error) {
	if s.policy != CategoriesPersisted {
		return nil, domainerrors.Conflictf("categories come from the seed and cannot be changed")
	}
	catID := CategoryID(name)
	if catID == "" {
		return nil, domainerrors.Validationf("category name %q has no usable characters", name)
	}

	category := domain.Category{ID: catID, Name: strings.TrimSpace(name)}
	_, err := s.Update(ctx, func(snap *domain.Snapshot) error {
		for _, c := range snap.Categories {
			if c.ID == catID {
				return domainerrors.AlreadyExistsf("category %s already exists", catID)
			}
		}
		snap.Categories = append(snap.Categories, category)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// RemoveCategory deletes the category with catID. Books keep their category
// reference; the storefront shows them uncategorised.
func (s *Store) RemoveCategory(ctx context.Context, catID string) error {
	if s.policy != CategoriesPersisted {
		return domainerrors.Conflictf("categories come from the seed and cannot be changed")
	}
	_, err := s.Update(ctx, func(snap *domain.Snapshot) error {
		for i, c := range snap.Categories {
			if c.ID == catID {
				snap.Categories = append(snap.Categories[:i], snap.Categories[i+1:]...)
				return nil
			}
		}
		return domainerrors.NotFoundf("category %s not found", catID)
	})
	return err
}
