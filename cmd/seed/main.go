// Package main provides a tool to reset the persisted storefront to the
// compiled-in catalog.
//
// Every book, category and order is replaced by the seed and the cart is
// emptied. Storage is selected with the usual configuration flags and
// environment variables.
//
// Usage:
//
//	go run ./cmd/seed
//	go run ./cmd/seed -storage sqlite -storage-path ./data --keep-cart
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/pageturn/storefront/internal/cart"
	"github.com/pageturn/storefront/internal/catalog"
	"github.com/pageturn/storefront/internal/config"
	"github.com/pageturn/storefront/internal/di"
	"github.com/pageturn/storefront/internal/logger"
)

func main() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	keepCart := fs.Bool("keep-cart", false, "Leave the cart as it is")

	cfg, err := config.LoadConfig(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	injector := di.NewContainer(cfg, os.Stderr)
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap storefront: %v\n", err)
		os.Exit(1)
	}
	log := do.MustInvoke[*logger.Logger](injector)

	code := 0
	if err := seed(injector, *keepCart); err != nil {
		log.Error("Seed failed", "error", err)
		code = 1
	}

	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}
	os.Exit(code)
}

func seed(injector do.Injector, keepCart bool) error {
	ctx := context.Background()

	store := do.MustInvoke[*catalog.Store](injector)
	if err := store.Reset(ctx); err != nil {
		return fmt.Errorf("reset catalog: %w", err)
	}
	snap, err := store.Load(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Catalog reset: %d books, %d categories\n", len(snap.Books), len(snap.Categories))

	if keepCart {
		return nil
	}
	if err := do.MustInvoke[*cart.Cart](injector).Clear(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	fmt.Println("Cart cleared")
	return nil
}
