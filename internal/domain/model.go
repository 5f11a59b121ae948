// Package domain contains the core entities served by the remote catalog API.
package domain

import "fmt"

// Author is a book author record.
type Author struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName returns "<first> <last>", or "Unknown" when either half is missing.
func (a Author) DisplayName() string {
	if a.FirstName == "" || a.LastName == "" {
		return "Unknown"
	}
	return fmt.Sprintf("%s %s", a.FirstName, a.LastName)
}

// Book is a catalog book record.
type Book struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	PageCount int    `json:"page_count"`
	AuthorID  int64  `json:"author_id"`
}

// Store is a bookstore location.
type Store struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// InventoryItem links a book to a store at a price.
type InventoryItem struct {
	ID      int64   `json:"id"`
	StoreID int64   `json:"store_id"`
	BookID  int64   `json:"book_id"`
	Price   float64 `json:"price"`
}

// User is an account record as stored by the remote catalog. The catalog
// keeps passwords in the clear; the password never leaves the login flow.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Name     string `json:"name"`
}
