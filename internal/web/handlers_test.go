package web

import (
	"crypto/rand"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookstandapp/bookstand-web/internal/catalog"
	"github.com/bookstandapp/bookstand-web/internal/domain"
	"github.com/bookstandapp/bookstand-web/internal/session"
	"github.com/bookstandapp/bookstand-web/internal/sse"
)

// fakeCatalog is an httptest-backed stand-in for the remote catalog API.
// It records every request so tests can assert on upstream traffic.
type fakeCatalog struct {
	mu       sync.Mutex
	requests []string // "METHOD /path"

	authors   []domain.Author
	books     []domain.Book
	stores    []domain.Store
	inventory []domain.InventoryItem
	users     []domain.User

	failCollections bool
	failMutations   bool
	server          *httptest.Server
}

func newFakeCatalog(t *testing.T) *fakeCatalog {
	t.Helper()

	f := &fakeCatalog{
		authors: []domain.Author{
			{ID: 1, FirstName: "Ursula", LastName: "Le Guin"},
			{ID: 2, FirstName: "Banksy"},
		},
		books: []domain.Book{
			{ID: 1, Name: "A Wizard of Earthsea", PageCount: 183, AuthorID: 1},
			{ID: 2, Name: "The Dispossessed", PageCount: 341, AuthorID: 1},
			{ID: 3, Name: "Wall and Piece", PageCount: 240, AuthorID: 2},
		},
		stores: []domain.Store{
			{ID: 1, Name: "Downtown Books"},
			{ID: 2, Name: "Harbor Reads"},
		},
		inventory: []domain.InventoryItem{
			{ID: 10, StoreID: 1, BookID: 1, Price: 12.50},
			{ID: 11, StoreID: 1, BookID: 99, Price: 5.00},
			{ID: 12, StoreID: 2, BookID: 2, Price: 18.00},
		},
		users: []domain.User{
			{ID: 4, Username: "alice", Password: "s3cret", Name: "Alice"},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", f.handle)
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	return f
}

func (f *fakeCatalog) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
}

func (f *fakeCatalog) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeCatalog) countMatching(prefix string) int {
	count := 0
	for _, req := range f.recorded() {
		if strings.HasPrefix(req, prefix) {
			count++
		}
	}
	return count
}

func (f *fakeCatalog) handle(w http.ResponseWriter, r *http.Request) {
	f.record(r)

	if f.failCollections && r.Method == http.MethodGet {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	if f.failMutations && r.Method != http.MethodGet {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}

	writeJSON := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.MarshalWrite(w, v)
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/authors":
		writeJSON(http.StatusOK, f.authors)
	case r.Method == http.MethodGet && r.URL.Path == "/books":
		writeJSON(http.StatusOK, f.books)
	case r.Method == http.MethodGet && r.URL.Path == "/stores":
		writeJSON(http.StatusOK, f.stores)
	case r.Method == http.MethodGet && r.URL.Path == "/inventory":
		writeJSON(http.StatusOK, f.inventory)
	case r.Method == http.MethodGet && r.URL.Path == "/users":
		matched := []domain.User{}
		for _, u := range f.users {
			if u.Username == r.URL.Query().Get("username") && u.Password == r.URL.Query().Get("password") {
				matched = append(matched, u)
			}
		}
		writeJSON(http.StatusOK, matched)
	case r.Method == http.MethodPost && r.URL.Path == "/inventory":
		var params catalog.CreateInventoryParams
		if err := json.UnmarshalRead(r.Body, &params); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		created := domain.InventoryItem{ID: 100, StoreID: params.StoreID, BookID: params.BookID, Price: params.Price}
		writeJSON(http.StatusCreated, created)
	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/inventory/"):
		var body struct {
			Price float64 `json:"price"`
		}
		if err := json.UnmarshalRead(r.Body, &body); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		writeJSON(http.StatusOK, domain.InventoryItem{ID: 10, StoreID: 1, BookID: 1, Price: body.Price})
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/inventory/"):
		writeJSON(http.StatusOK, map[string]any{})
	default:
		http.NotFound(w, r)
	}
}

// recordingEmitter captures emitted events instead of broadcasting them.
type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (e *recordingEmitter) Emit(event sse.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *recordingEmitter) recorded() []sse.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sse.Event(nil), e.events...)
}

type testEnv struct {
	server  *Server
	catalog *fakeCatalog
	emitter *recordingEmitter
	session *session.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fake := newFakeCatalog(t)
	client, err := catalog.New(catalog.Options{BaseURL: fake.server.URL}, logger)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	key := make([]byte, 32)
	_, err = rand.Read(key)
	require.NoError(t, err)
	sessions, err := session.NewManager(key, time.Hour, false)
	require.NoError(t, err)

	emitter := &recordingEmitter{}
	manager := sse.NewManager(logger)
	stream := sse.NewHandler(manager, logger)

	srv, err := NewServer(client, sessions, emitter, stream, logger)
	require.NoError(t, err)

	return &testEnv{server: srv, catalog: fake, emitter: emitter, session: sessions}
}

// signedIn attaches a valid session cookie to the request.
func (env *testEnv) signedIn(t *testing.T, r *http.Request) *http.Request {
	t.Helper()
	token, err := env.session.Issue(domain.User{ID: 4, Username: "alice", Name: "Alice"})
	require.NoError(t, err)
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	return r
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestLogin_SetsCookieAndRedirects(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"username": {"alice"}, "password": {"s3cret"}}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/stores", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	var found bool
	for _, c := range cookies {
		if c.Name == session.CookieName && c.Value != "" {
			found = true
			// The cookie must verify back to the signed-in user.
			claims, err := env.session.Verify(c.Value)
			require.NoError(t, err)
			assert.Equal(t, "alice", claims.Username)
		}
	}
	assert.True(t, found, "expected a session cookie")
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"username": {"alice"}, "password": {"wrong"}}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")

	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			assert.Empty(t, c.Value)
		}
	}
}

func TestLogin_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username=alice"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	// No credential check went upstream.
	assert.Zero(t, env.catalog.countMatching("GET /users"))
}

func TestStorePage_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stores/1", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestStorePage_RendersMergedRows(t *testing.T) {
	env := newTestEnv(t)

	r := env.signedIn(t, httptest.NewRequest(http.MethodGet, "/stores/1", nil))
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Contains(t, body, "Downtown Books")
	assert.Contains(t, body, "A Wizard of Earthsea")
	assert.Contains(t, body, "Ursula Le Guin")
	// The dangling inventory item (book 99) renders placeholders.
	assert.Contains(t, body, "N/A")
	assert.Contains(t, body, "Unknown")
	// Another store's inventory stays out.
	assert.NotContains(t, body, "The Dispossessed")
}

func TestStorePage_FilterIsCaseSensitive(t *testing.T) {
	env := newTestEnv(t)

	r := env.signedIn(t, httptest.NewRequest(http.MethodGet, "/stores/1?q=wizard", nil))
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "A Wizard of Earthsea")
}

func TestStorePage_UnknownStore(t *testing.T) {
	env := newTestEnv(t)

	r := env.signedIn(t, httptest.NewRequest(http.MethodGet, "/stores/999", nil))
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStorePage_UpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	env.catalog.failCollections = true

	r := env.signedIn(t, httptest.NewRequest(http.MethodGet, "/stores/1", nil))
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCandidates_ExcludesStoreInventory(t *testing.T) {
	env := newTestEnv(t)

	r := env.signedIn(t, httptest.NewRequest(http.MethodGet, "/api/stores/1/candidates", nil))
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			Books []domain.Book `json:"books"`
			Total int           `json:"total"`
			More  bool          `json:"more"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))

	assert.True(t, envelope.Success)
	// Book 1 is already in store 1's inventory; books 2 and 3 are not.
	assert.Equal(t, 2, envelope.Data.Total)
	assert.False(t, envelope.Data.More)
	for _, b := range envelope.Data.Books {
		assert.NotEqual(t, int64(1), b.ID)
	}
}

func TestCreateInventory_InvalidPriceNeverReachesCatalog(t *testing.T) {
	env := newTestEnv(t)

	body := `{"store_id": 1, "book_id": 2, "price": -5}`
	r := env.signedIn(t, httptest.NewRequest(http.MethodPost, "/api/inventory", strings.NewReader(body)))
	r.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, env.catalog.countMatching("POST /inventory"))
	assert.Empty(t, env.emitter.recorded())
}

func TestCreateInventory_Success(t *testing.T) {
	env := newTestEnv(t)

	body := `{"store_id": 1, "book_id": 2, "price": 9.99}`
	r := env.signedIn(t, httptest.NewRequest(http.MethodPost, "/api/inventory", strings.NewReader(body)))
	r.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, env.catalog.countMatching("POST /inventory"))

	events := env.emitter.recorded()
	require.Len(t, events, 1)
	assert.Equal(t, sse.EventInventoryCreated, events[0].Type)
}

func TestUpdateInventory_InvalidPriceNeverReachesCatalog(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{`{"price": -1}`, `{"price": "abc"}`, `{}`} {
		r := env.signedIn(t, httptest.NewRequest(http.MethodPatch, "/api/inventory/10", strings.NewReader(body)))
		r.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		env.server.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}

	assert.Zero(t, env.catalog.countMatching("PATCH"))
	assert.Empty(t, env.emitter.recorded())
}

func TestUpdateInventory_Success(t *testing.T) {
	env := newTestEnv(t)

	r := env.signedIn(t, httptest.NewRequest(http.MethodPatch, "/api/inventory/10", strings.NewReader(`{"price": 20}`)))
	r.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.catalog.countMatching("PATCH /inventory/10"))

	events := env.emitter.recorded()
	require.Len(t, events, 1)
	assert.Equal(t, sse.EventInventoryUpdated, events[0].Type)
}

func TestDeleteInventory_OneCallNoRefetch(t *testing.T) {
	env := newTestEnv(t)

	r := env.signedIn(t, httptest.NewRequest(http.MethodDelete, "/api/inventory/10?store_id=1", nil))
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)

	// Exactly one upstream call: the delete itself, no collection re-fetch.
	requests := env.catalog.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, "DELETE /inventory/10", requests[0])

	events := env.emitter.recorded()
	require.Len(t, events, 1)
	assert.Equal(t, sse.EventInventoryDeleted, events[0].Type)
}

func TestDeleteInventory_UpstreamFailureRelayed(t *testing.T) {
	env := newTestEnv(t)
	env.catalog.failMutations = true

	r := env.signedIn(t, httptest.NewRequest(http.MethodDelete, "/api/inventory/10?store_id=1", nil))
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	// No event goes out for a failed mutation.
	assert.Empty(t, env.emitter.recorded())
}

func TestAPI_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/stores/1/candidates"},
		{http.MethodPost, "/api/inventory"},
		{http.MethodPatch, "/api/inventory/10"},
		{http.MethodDelete, "/api/inventory/10"},
	}

	for _, tc := range tests {
		w := httptest.NewRecorder()
		env.server.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestAPI_RejectsTamperedCookie(t *testing.T) {
	env := newTestEnv(t)

	r := httptest.NewRequest(http.MethodDelete, "/api/inventory/10", nil)
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: "v4.local.garbage"})

	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, env.catalog.countMatching("DELETE"))
}
