package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/notekit/internal/apperr"
	"github.com/starford/notekit/internal/models"
)

const noteColumns = `path, id, title, folder, tags, content, checksum, servings, created_at, modified_at`

// Sort keys accepted by ListNotes.
const (
	SortModified = "modified"
	SortCreated  = "created"
	SortTitle    = "title"
	SortPath     = "path"
)

// ListQuery filters and paginates ListNotes. Zero Limit means no limit.
type ListQuery struct {
	Limit  int
	Offset int
	Tag    string
	Folder string
	Sort   string
}

// UpsertNote inserts or replaces the note stored at n.Path.
func (db *DB) UpsertNote(n models.Note) error {
	if n.Path == "" || n.ID == "" {
		return fmt.Errorf("index: upsert note: %w: path and id are required", apperr.ErrInvalidInput)
	}
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	var servings sql.NullFloat64
	if n.Servings != nil {
		servings = sql.NullFloat64{Float64: *n.Servings, Valid: true}
	}

	_, err := db.conn.Exec(`
		INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			id          = excluded.id,
			title       = excluded.title,
			folder      = excluded.folder,
			tags        = excluded.tags,
			content     = excluded.content,
			checksum    = excluded.checksum,
			servings    = excluded.servings,
			created_at  = excluded.created_at,
			modified_at = excluded.modified_at
	`, n.Path, n.ID, n.Title, n.Folder, string(tagsJSON), n.Content, n.Checksum, servings,
		n.Created.UTC(), n.Modified.UTC())
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}
	return nil
}

// DeleteNote removes the note stored at path.
func (db *DB) DeleteNote(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM notes WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete note: %w", err)
	}
	return nil
}

// GetChecksum returns the stored checksum for a note, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// GetNote returns the note with the given id or apperr.ErrNotFound.
func (db *DB) GetNote(id string) (*models.Note, error) {
	row := db.conn.QueryRow(`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get note: %w", err)
	}
	return &n, nil
}

// AllNotes returns every note ordered by path. This ordering is the
// collection order seen by search and graph building.
func (db *DB) AllNotes() ([]models.Note, error) {
	notes, _, err := db.ListNotes(ListQuery{Sort: SortPath})
	return notes, err
}

// ListNotes returns a filtered page of notes and the total number matching
// the filter.
func (db *DB) ListNotes(q ListQuery) ([]models.Note, int, error) {
	var (
		where []string
		args  []any
	)
	if q.Tag != "" {
		where = append(where, `EXISTS (SELECT 1 FROM json_each(notes.tags) WHERE lower(json_each.value) = lower(?))`)
		args = append(args, q.Tag)
	}
	if q.Folder != "" {
		where = append(where, `lower(folder) = lower(?)`)
		args = append(args, q.Folder)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count notes: %w", err)
	}

	stmt := `SELECT ` + noteColumns + ` FROM notes` + clause + ` ORDER BY ` + orderBy(q.Sort)
	pageArgs := append([]any{}, args...)
	if q.Limit > 0 {
		stmt += ` LIMIT ? OFFSET ?`
		pageArgs = append(pageArgs, q.Limit, max(q.Offset, 0))
	}

	rows, err := db.conn.Query(stmt, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list notes: %w", err)
	}
	defer rows.Close()

	out := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("index: scan note: %w", err)
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

func orderBy(sort string) string {
	switch sort {
	case SortTitle:
		return "title COLLATE NOCASE ASC, path ASC"
	case SortPath:
		return "path ASC"
	case SortCreated:
		return "created_at DESC, path ASC"
	default:
		return "modified_at DESC, path ASC"
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (models.Note, error) {
	var (
		n        models.Note
		tagsJSON string
		servings sql.NullFloat64
		created  time.Time
		modified time.Time
	)
	if err := s.Scan(&n.Path, &n.ID, &n.Title, &n.Folder, &tagsJSON, &n.Content, &n.Checksum,
		&servings, &created, &modified); err != nil {
		return models.Note{}, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil || n.Tags == nil {
		n.Tags = []string{}
	}
	if servings.Valid {
		v := servings.Float64
		n.Servings = &v
	}
	n.Created = created.UTC()
	n.Modified = modified.UTC()
	return n, nil
}
