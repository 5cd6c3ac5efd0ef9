// Package main provides the storefront command. It opens the configured
// storage, prints a catalog and cart summary, and optionally searches the
// storefront listing.
//
// Usage:
//
//	go run ./cmd/storefront
//	go run ./cmd/storefront -q "garcia marquez"
//	go run ./cmd/storefront -storage sqlite -category cat-scifi
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/samber/do/v2"

	"github.com/pageturn/storefront/internal/cart"
	"github.com/pageturn/storefront/internal/catalog"
	"github.com/pageturn/storefront/internal/config"
	"github.com/pageturn/storefront/internal/di"
	"github.com/pageturn/storefront/internal/di/providers"
	"github.com/pageturn/storefront/internal/logger"
	"github.com/pageturn/storefront/internal/search"
)

func main() {
	fs := flag.NewFlagSet("storefront", flag.ExitOnError)
	query := fs.String("q", "", "Search the storefront listing")
	category := fs.String("category", "", "Restrict search to a category id")
	limit := fs.Int("limit", search.DefaultLimit, "Maximum search results")

	cfg, err := config.LoadConfig(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Create DI container
	injector := di.NewContainer(cfg, os.Stderr)

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap storefront: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)

	code := 0
	if err := run(injector, *query, *category, *limit); err != nil {
		log.Error("Command failed", "error", err)
		code = 1
	}

	// The DI container handles shutdown order automatically
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}
	os.Exit(code)
}

func run(injector do.Injector, query, category string, limit int) error {
	ctx := context.Background()

	store := do.MustInvoke[*catalog.Store](injector)
	c := do.MustInvoke[*cart.Cart](injector)

	snap, err := store.Load(ctx)
	if err != nil {
		return err
	}
	active := 0
	for _, b := range snap.Books {
		if b.IsActive {
			active++
		}
	}

	fmt.Println("=== Storefront ===")
	fmt.Printf("Books:      %d (%d active)\n", len(snap.Books), active)
	fmt.Printf("Categories: %d\n", len(snap.Categories))
	fmt.Printf("Orders:     %d\n", len(snap.Orders))
	fmt.Printf("Cart:       %d lines, %d items, total %s\n", c.Len(), c.ItemCount(), c.Total().StringFixed(2))

	if query == "" && category == "" {
		return nil
	}

	index, err := do.Invoke[*providers.SearchIndexHandle](injector)
	if err != nil {
		return err
	}
	res, err := index.Search(ctx, search.Query{Text: query, Category: category, Limit: limit})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("=== Search %q: %d hits ===\n", query, res.Total)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tCATEGORY\tSCORE")
	for _, h := range res.Hits {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.3f\n", h.ID, h.Title, h.Author, h.Category, h.Score)
	}
	return w.Flush()
}
