package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bookstandapp/bookstand-web/internal/domain"
	"github.com/bookstandapp/bookstand-web/internal/errors"
	"github.com/bookstandapp/bookstand-web/internal/merge"
)

// loginPageData feeds login.tmpl.
type loginPageData struct {
	Username string
	Error    string
}

// handleLoginPage renders the sign-in form. Signed-in visitors go straight
// to the store list.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sessionFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/stores", http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, "login.tmpl", loginPageData{})
}

// handleLogin checks the submitted credentials against the catalog's user
// collection and issues a session cookie on the first match.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, "login.tmpl", loginPageData{
			Error: "Could not read the sign-in form.",
		})
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		s.render(w, http.StatusBadRequest, "login.tmpl", loginPageData{
			Username: username,
			Error:    "Username and password are required.",
		})
		return
	}

	users, err := s.catalog.FindUsers(r.Context(), username, password)
	if err != nil {
		s.logger.Error("Failed to check credentials", "error", err, "username", username)
		s.render(w, errorStatus(err), "login.tmpl", loginPageData{
			Username: username,
			Error:    "The account service is unavailable right now. Try again in a moment.",
		})
		return
	}

	if len(users) == 0 {
		s.render(w, http.StatusUnauthorized, "login.tmpl", loginPageData{
			Username: username,
			Error:    "Invalid username or password.",
		})
		return
	}

	token, err := s.sessions.Issue(users[0])
	if err != nil {
		s.logger.Error("Failed to issue session", "error", err, "user_id", users[0].ID)
		s.render(w, http.StatusInternalServerError, "login.tmpl", loginPageData{
			Username: username,
			Error:    "Could not start a session. Try again.",
		})
		return
	}

	s.sessions.SetCookie(w, token)
	http.Redirect(w, r, "/stores", http.StatusSeeOther)
}

// handleLogout clears the session cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleHome sends the root path to the store list.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/stores", http.StatusSeeOther)
}

// storesPageData feeds stores.tmpl.
type storesPageData struct {
	Stores   []domain.Store
	UserName string
}

// handleStores renders the landing page listing every store.
func (s *Server) handleStores(w http.ResponseWriter, r *http.Request) {
	claims := sessionFromContext(r.Context())

	stores, err := s.catalog.ListStores(r.Context())
	if err != nil {
		s.logger.Error("Failed to list stores", "error", err)
		s.renderErrorPage(w, r, errorStatus(err), "Stores unavailable",
			"The catalog could not be reached. Try again in a moment.")
		return
	}

	s.render(w, http.StatusOK, "stores.tmpl", storesPageData{
		Stores:   stores,
		UserName: claims.Name,
	})
}

// storePageData feeds store.tmpl. The sort link helpers live on the struct so
// the template can build toggling column headers.
type storePageData struct {
	Store    domain.Store
	Rows     []merge.StoreRow
	Query    string
	Sort     string
	Dir      string
	UserName string
}

// SortLink builds the href for a column header: clicking an active ascending
// column flips it to descending, anything else sorts ascending.
func (d storePageData) SortLink(column string) string {
	dir := merge.DirAsc
	if d.Sort == column && d.Dir == merge.DirAsc {
		dir = merge.DirDesc
	}

	query := url.Values{}
	query.Set("sort", column)
	query.Set("dir", dir)
	if d.Query != "" {
		query.Set("q", d.Query)
	}
	return "?" + query.Encode()
}

// SortCaret marks the active sort column.
func (d storePageData) SortCaret(column string) string {
	if d.Sort != column {
		return ""
	}
	if d.Dir == merge.DirDesc {
		return " ▼"
	}
	return " ▲"
}

// handleStorePage renders a store's inventory: one snapshot of the four
// catalog collections, joined, filtered, and sorted per the query string.
func (s *Server) handleStorePage(w http.ResponseWriter, r *http.Request) {
	claims := sessionFromContext(r.Context())

	storeID, err := strconv.ParseInt(chi.URLParam(r, "storeID"), 10, 64)
	if err != nil {
		s.renderErrorPage(w, r, http.StatusNotFound, "Store not found",
			"That store ID is not valid.")
		return
	}

	snapshot, err := s.catalog.FetchSnapshot(r.Context())
	if err != nil {
		s.logger.Error("Failed to fetch catalog snapshot", "error", err, "store_id", storeID)
		s.renderErrorPage(w, r, errorStatus(err), "Store unavailable",
			"The catalog could not be reached. Try again in a moment.")
		return
	}

	store, found := snapshot.FindStore(storeID)
	if !found {
		s.renderErrorPage(w, r, http.StatusNotFound, "Store not found",
			"No store with that ID exists.")
		return
	}

	query := r.URL.Query().Get("q")
	sortColumn := r.URL.Query().Get("sort")
	sortDir := r.URL.Query().Get("dir")

	rows := merge.StoreRows(snapshot.Inventory, snapshot.Books, snapshot.Authors, storeID)
	rows = merge.FilterRows(rows, query)
	rows = merge.SortRows(rows, sortColumn, sortDir)

	s.render(w, http.StatusOK, "store.tmpl", storePageData{
		Store:    store,
		Rows:     rows,
		Query:    query,
		Sort:     sortColumn,
		Dir:      sortDir,
		UserName: claims.Name,
	})
}

// errorStatus maps a catalog error to the HTTP status a page should carry.
func errorStatus(err error) int {
	var domainErr *errors.Error
	if errors.As(err, &domainErr) {
		return domainErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}
