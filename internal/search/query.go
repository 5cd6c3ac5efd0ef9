package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// DefaultLimit caps results when Query.Limit is zero.
const DefaultLimit = 20

// Query describes a storefront search.
type Query struct {
	Text     string // free text over title, author and description
	Category string // exact category id; empty means all
	Limit    int
}

// Result is the outcome of a search.
type Result struct {
	Query string `json:"query"`
	Total uint64 `json:"total"`
	Hits  []Hit  `json:"hits"`
}

// Hit is one matching book.
type Hit struct {
	ID       string  `json:"id"`
	Score    float64 `json:"score"`
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Category string  `json:"category"`
}

// Search runs q against the current index.
func (s *Index) Search(ctx context.Context, q Query) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(q), limit, 0, false)
	// Relevance first, id to keep ties stable.
	req.SortBy([]string{"-_score", "_id"})
	req.Fields = []string{"category", "display_title", "display_author"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query: q.Text,
		Total: res.Total,
		Hits:  make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["display_title"].(string); ok {
			hit.Title = v
		}
		if v, ok := h.Fields["display_author"].(string); ok {
			hit.Author = v
		}
		if v, ok := h.Fields["category"].(string); ok {
			hit.Category = v
		}
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}

// buildQuery constructs the Bleve query for q.
func buildQuery(q Query) query.Query {
	var queries []query.Query

	text := Fold(strings.TrimSpace(q.Text))
	if text != "" {
		titleMatch := bleve.NewMatchQuery(text)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)

		authorMatch := bleve.NewMatchQuery(text)
		authorMatch.SetField("author")
		authorMatch.SetBoost(2.0)

		descMatch := bleve.NewMatchQuery(text)
		descMatch.SetField("description")

		textQueries := []query.Query{titleMatch, authorMatch, descMatch}

		// Typo tolerance and prefix matching only make sense for one word.
		if !strings.ContainsAny(text, " \t") {
			fuzzy := bleve.NewFuzzyQuery(text)
			fuzzy.SetFuzziness(1)
			fuzzy.SetField("title")
			fuzzy.SetBoost(0.8)
			textQueries = append(textQueries, fuzzy)

			if len(text) >= 2 {
				prefix := bleve.NewPrefixQuery(text)
				prefix.SetField("title")
				prefix.SetBoost(0.5)
				textQueries = append(textQueries, prefix)
			}
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if q.Category != "" {
		cq := bleve.NewTermQuery(q.Category)
		cq.SetField("category")
		queries = append(queries, cq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}
