package index

import "github.com/starford/notekit/internal/models"

// NoteIndex defines the interface for note indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type NoteIndex interface {
	UpsertNote(n models.Note) error
	DeleteNote(path string) error
	GetChecksum(path string) (string, error)
	GetNote(id string) (*models.Note, error)
	AllNotes() ([]models.Note, error)
	ListNotes(q ListQuery) ([]models.Note, int, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
