// Package merge builds denormalized display rows out of independently
// fetched catalog collections.
//
// Every function here is pure and total: it takes immutable snapshots and
// returns a derived sequence, so the join logic is testable without any
// network layer. Referential gaps (an inventory item pointing at a missing
// book, a book pointing at a missing author) are substituted with placeholder
// display values rather than reported as errors.
package merge

import (
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/bookstandapp/bookstand-web/internal/domain"
)

// Placeholder display values for referential gaps.
const (
	UnknownName   = "Unknown"
	MissingBookID = "N/A"
)

// StoreRow is one row of a store's inventory table.
type StoreRow struct {
	ID        int64   `json:"id"`
	BookID    string  `json:"bookId"`
	Name      string  `json:"name"`
	PageCount int     `json:"page_count"`
	Author    string  `json:"author"`
	Price     float64 `json:"price"`
}

// StoreRows joins inventory, books, and authors into one row per inventory
// item belonging to the given store. Lookups take the first match; missing
// references fall back to placeholders.
func StoreRows(inventory []domain.InventoryItem, books []domain.Book, authors []domain.Author, storeID int64) []StoreRow {
	items := lo.Filter(inventory, func(item domain.InventoryItem, _ int) bool {
		return item.StoreID == storeID
	})

	return lo.Map(items, func(item domain.InventoryItem, _ int) StoreRow {
		row := StoreRow{
			ID:     item.ID,
			BookID: MissingBookID,
			Name:   UnknownName,
			Author: UnknownName,
			Price:  item.Price,
		}

		book, found := lo.Find(books, func(b domain.Book) bool {
			return b.ID == item.BookID
		})
		if !found {
			return row
		}

		row.BookID = strconv.FormatInt(book.ID, 10)
		row.Name = book.Name
		row.PageCount = book.PageCount

		author, _ := lo.Find(authors, func(a domain.Author) bool {
			return a.ID == book.AuthorID
		})
		row.Author = author.DisplayName()

		return row
	})
}

// FilterRows returns the rows whose name, author, or book id contains the
// query as a case-sensitive substring. An empty query keeps every row.
func FilterRows(rows []StoreRow, query string) []StoreRow {
	if query == "" {
		return rows
	}
	return lo.Filter(rows, func(row StoreRow, _ int) bool {
		return strings.Contains(row.Name, query) ||
			strings.Contains(row.Author, query) ||
			strings.Contains(row.BookID, query)
	})
}

// Sort directions and columns accepted by SortRows.
const (
	DirAsc  = "asc"
	DirDesc = "desc"
)

// SortRows returns a sorted copy of rows. Unknown columns leave the order
// untouched; any direction other than "desc" sorts ascending. The sort is
// stable so equal keys keep their snapshot order.
func SortRows(rows []StoreRow, column, dir string) []StoreRow {
	less := lessFunc(column)
	if less == nil {
		return rows
	}

	sorted := make([]StoreRow, len(rows))
	copy(sorted, rows)

	sort.SliceStable(sorted, func(i, j int) bool {
		if dir == DirDesc {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted
}

func lessFunc(column string) func(a, b StoreRow) bool {
	switch column {
	case "bookId":
		return func(a, b StoreRow) bool { return a.BookID < b.BookID }
	case "name":
		return func(a, b StoreRow) bool { return a.Name < b.Name }
	case "page_count":
		return func(a, b StoreRow) bool { return a.PageCount < b.PageCount }
	case "author":
		return func(a, b StoreRow) bool { return a.Author < b.Author }
	case "price":
		return func(a, b StoreRow) bool { return a.Price < b.Price }
	default:
		return nil
	}
}

// Candidates returns the books not yet present in the store's inventory,
// i.e. the selectable set for the add-to-inventory flow.
func Candidates(books []domain.Book, inventory []domain.InventoryItem, storeID int64) []domain.Book {
	existing := make(map[int64]struct{})
	for _, item := range inventory {
		if item.StoreID == storeID {
			existing[item.BookID] = struct{}{}
		}
	}

	return lo.Filter(books, func(b domain.Book, _ int) bool {
		_, taken := existing[b.ID]
		return !taken
	})
}

// DefaultTypeaheadLimit caps how many matches the add-to-inventory dropdown shows.
const DefaultTypeaheadLimit = 10

// Typeahead is a capped view over a filtered candidate set.
type Typeahead struct {
	Books []domain.Book `json:"books"`
	Total int           `json:"total"`
	More  bool          `json:"more"`
}

// TypeaheadView filters candidates by a case-sensitive substring match on
// the book name or decimal id, then caps the result at limit rows. More is
// set exactly when matches were cut off. A limit <= 0 uses the default.
func TypeaheadView(candidates []domain.Book, query string, limit int) Typeahead {
	if limit <= 0 {
		limit = DefaultTypeaheadLimit
	}

	matches := candidates
	if query != "" {
		matches = lo.Filter(candidates, func(b domain.Book, _ int) bool {
			return strings.Contains(b.Name, query) ||
				strings.Contains(strconv.FormatInt(b.ID, 10), query)
		})
	}

	view := Typeahead{Total: len(matches)}
	if len(matches) > limit {
		view.Books = matches[:limit]
		view.More = true
	} else {
		view.Books = matches
	}
	return view
}
