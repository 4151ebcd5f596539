package index

import "github.com/starford/ansuz/internal/models"

// FieldQuery selects notes by metadata content. Empty Value matches any
// value of the key; empty Kind matches both stores.
type FieldQuery struct {
	Key   string
	Value string
	Kind  string
}

// KeyCount is one entry of the vault-wide key inventory.
type KeyCount struct {
	Key   string `json:"key"`
	Notes int    `json:"notes"`
}

// SearchResult is one full-text hit over indexed metadata fields.
type SearchResult struct {
	Path  string `json:"path"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NoteIndex defines the metadata index operations. Consumers should depend
// on this interface rather than the concrete *DB type to facilitate testing
// with mocks.
type NoteIndex interface {
	UpsertNote(info models.NoteInfo, fields []models.Field) error
	DeleteNote(path string) error
	GetChecksum(path string) (string, error)
	GetFields(path string) ([]models.Field, error)
	ListNotes(limit, offset int) ([]models.NoteInfo, int, error)
	QueryPaths(q FieldQuery) ([]string, error)
	ListKeys(kind string) ([]KeyCount, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
