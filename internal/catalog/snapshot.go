package catalog

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/bookstandapp/bookstand-web/internal/domain"
)

// Snapshot is an immutable point-in-time copy of the four collections needed
// to render a store inventory page. The slices are never mutated after fetch.
type Snapshot struct {
	Stores    []domain.Store
	Inventory []domain.InventoryItem
	Books     []domain.Book
	Authors   []domain.Author
}

// FetchSnapshot issues the four collection fetches concurrently and fails
// fast: the first error cancels the remaining requests and no partial
// snapshot is returned.
func (c *Client) FetchSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Stores, err = c.ListStores(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Inventory, err = c.ListInventory(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Books, err = c.ListBooks(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Authors, err = c.ListAuthors(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// FindStore returns the store with the given id, or false when absent.
func (s Snapshot) FindStore(id int64) (domain.Store, bool) {
	for _, store := range s.Stores {
		if store.ID == id {
			return store, true
		}
	}
	return domain.Store{}, false
}
