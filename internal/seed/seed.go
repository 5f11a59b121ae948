// Package seed assembles the catalog fixture document out of per-collection
// JSON files. The catalog API serves one keyed document (authors, books,
// stores, inventory, users); this package combines and sanity-checks the
// source files that feed it.
package seed

import (
	"encoding/json/v2"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"

	"github.com/bookstandapp/bookstand-web/internal/domain"
)

// Source filenames read from the data directory.
const (
	AuthorsFile   = "authors.json"
	BooksFile     = "books.json"
	StoresFile    = "stores.json"
	InventoryFile = "inventory.json"
	UsersFile     = "users.json"
)

// Dataset is the combined catalog document, keyed the way the catalog API
// serves its collections.
type Dataset struct {
	Authors   []domain.Author        `json:"authors"`
	Books     []domain.Book          `json:"books"`
	Stores    []domain.Store         `json:"stores"`
	Inventory []domain.InventoryItem `json:"inventory"`
	Users     []domain.User          `json:"users"`
}

// LoadDir reads the per-collection files from dir. A missing file yields an
// empty collection rather than an error, so partial datasets still combine.
func LoadDir(dir string) (Dataset, error) {
	var ds Dataset

	if err := loadCollection(filepath.Join(dir, AuthorsFile), &ds.Authors); err != nil {
		return Dataset{}, err
	}
	if err := loadCollection(filepath.Join(dir, BooksFile), &ds.Books); err != nil {
		return Dataset{}, err
	}
	if err := loadCollection(filepath.Join(dir, StoresFile), &ds.Stores); err != nil {
		return Dataset{}, err
	}
	if err := loadCollection(filepath.Join(dir, InventoryFile), &ds.Inventory); err != nil {
		return Dataset{}, err
	}
	if err := loadCollection(filepath.Join(dir, UsersFile), &ds.Users); err != nil {
		return Dataset{}, err
	}

	return ds, nil
}

// loadCollection reads one JSON array file into dst. Missing files are fine.
func loadCollection[T any](path string, dst *[]T) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		*dst = []T{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Lint reports referential gaps in the dataset: books pointing at missing
// authors and inventory pointing at missing books or stores. Gaps are not
// errors; the storefront renders placeholders for them. Lint exists so a
// dataset author can tell the deliberate gaps from the accidental ones.
func Lint(ds Dataset) []string {
	var findings []string

	for _, book := range ds.Books {
		_, found := lo.Find(ds.Authors, func(a domain.Author) bool {
			return a.ID == book.AuthorID
		})
		if !found {
			findings = append(findings,
				fmt.Sprintf("book %d (%q) references missing author %d", book.ID, book.Name, book.AuthorID))
		}
	}

	for _, item := range ds.Inventory {
		if _, found := lo.Find(ds.Books, func(b domain.Book) bool { return b.ID == item.BookID }); !found {
			findings = append(findings,
				fmt.Sprintf("inventory %d references missing book %d", item.ID, item.BookID))
		}
		if _, found := lo.Find(ds.Stores, func(s domain.Store) bool { return s.ID == item.StoreID }); !found {
			findings = append(findings,
				fmt.Sprintf("inventory %d references missing store %d", item.ID, item.StoreID))
		}
	}

	return findings
}

// WriteFile writes the combined document to path with deterministic key
// order, so regenerating an unchanged dataset produces an identical file.
func WriteFile(ds Dataset, path string) error {
	data, err := json.Marshal(ds, json.Deterministic(true))
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
