package seed

import (
	"encoding/json/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, AuthorsFile, `[{"id": 1, "first_name": "Ursula", "last_name": "Le Guin"}]`)
	writeFixture(t, dir, BooksFile, `[{"id": 1, "name": "A Wizard of Earthsea", "page_count": 183, "author_id": 1}]`)
	writeFixture(t, dir, StoresFile, `[{"id": 1, "name": "Downtown Books"}]`)
	writeFixture(t, dir, InventoryFile, `[{"id": 10, "store_id": 1, "book_id": 1, "price": 12.5}]`)

	ds, err := LoadDir(dir)
	require.NoError(t, err)

	require.Len(t, ds.Authors, 1)
	assert.Equal(t, "Ursula", ds.Authors[0].FirstName)
	require.Len(t, ds.Books, 1)
	assert.Equal(t, 183, ds.Books[0].PageCount)
	require.Len(t, ds.Inventory, 1)
	assert.Equal(t, 12.5, ds.Inventory[0].Price)

	// users.json is absent; the collection comes back empty, not nil.
	assert.NotNil(t, ds.Users)
	assert.Empty(t, ds.Users)
}

func TestLoadDir_BadJSON(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, BooksFile, `{not json`)

	_, err := LoadDir(dir)
	assert.Error(t, err)
}

func TestLint_ReportsDanglingReferences(t *testing.T) {
	ds := Dataset{}
	require.NoError(t, json.Unmarshal([]byte(`{
		"authors": [{"id": 1, "first_name": "Ursula", "last_name": "Le Guin"}],
		"books": [
			{"id": 1, "name": "A Wizard of Earthsea", "author_id": 1},
			{"id": 2, "name": "Orphan", "author_id": 42}
		],
		"stores": [{"id": 1, "name": "Downtown Books"}],
		"inventory": [
			{"id": 10, "store_id": 1, "book_id": 1, "price": 12.5},
			{"id": 11, "store_id": 1, "book_id": 99, "price": 5},
			{"id": 12, "store_id": 7, "book_id": 1, "price": 8}
		],
		"users": []
	}`), &ds))

	findings := Lint(ds)
	require.Len(t, findings, 3)
	assert.Contains(t, findings[0], "missing author 42")
	assert.Contains(t, findings[1], "missing book 99")
	assert.Contains(t, findings[2], "missing store 7")
}

func TestLint_CleanDataset(t *testing.T) {
	ds := Dataset{}
	assert.Empty(t, Lint(ds))
}

func TestWriteFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := Dataset{}
	require.NoError(t, json.Unmarshal([]byte(`{
		"authors": [{"id": 1, "first_name": "Ursula", "last_name": "Le Guin"}],
		"books": [{"id": 1, "name": "A Wizard of Earthsea", "author_id": 1}],
		"stores": [{"id": 1, "name": "Downtown Books"}],
		"inventory": [{"id": 10, "store_id": 1, "book_id": 1, "price": 12.5}],
		"users": [{"id": 4, "username": "alice", "password": "s3cret", "name": "Alice"}]
	}`), &src))

	out := filepath.Join(dir, "db.json")
	require.NoError(t, WriteFile(src, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var got Dataset
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, src.Authors, got.Authors)
	assert.Equal(t, src.Books, got.Books)
	assert.Equal(t, src.Inventory, got.Inventory)
	assert.Equal(t, src.Users, got.Users)
}
