package index

import (
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/notekit/internal/checksum"
	"github.com/starford/notekit/internal/models"
	"github.com/starford/notekit/internal/parser"
	"github.com/starford/notekit/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := db.UpsertNote(NoteFromFile(m.Path, data, m.UpdatedAt)); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteNote(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// NoteFromFile builds the indexed form of the vault file at rel.
//
// Frontmatter wins where present. Otherwise the id is the path without its
// .md extension, the folder is the parent directory, the title is the file
// stem and both timestamps are modTime.
func NoteFromFile(rel string, data []byte, modTime time.Time) models.Note {
	rel = filepath.ToSlash(rel)
	res, _ := parser.Parse(data)

	n := models.Note{
		ID:       res.ID,
		Path:     rel,
		Title:    res.Title,
		Content:  res.Body,
		Folder:   res.Folder,
		Tags:     res.Tags,
		Created:  res.Created,
		Modified: res.Modified,
		Servings: res.Servings,
		Checksum: checksum.Sum(data),
	}
	stem := strings.TrimSuffix(rel, ".md")
	if n.ID == "" {
		n.ID = stem
	}
	if n.Title == "" {
		n.Title = path.Base(stem)
	}
	if n.Folder == "" {
		if dir := path.Dir(rel); dir != "." {
			n.Folder = dir
		}
	}
	if n.Modified.IsZero() {
		n.Modified = modTime
	}
	if n.Created.IsZero() {
		n.Created = n.Modified
	}
	if n.Modified.Before(n.Created) {
		n.Modified = n.Created
	}
	return n
}

// indexPath reads rel from the store and upserts it, using the file's mtime
// as the fallback timestamp. It reports false when the index already holds
// the same content.
func indexPath(db *DB, store storage.Provider, rel string) (bool, error) {
	data, err := store.Read(rel)
	if err != nil {
		return false, err
	}
	if cs, err := db.GetChecksum(rel); err == nil && cs == checksum.Sum(data) {
		return false, nil
	}
	modTime := time.Now()
	if info, err := os.Stat(filepath.Join(store.Root(), filepath.FromSlash(rel))); err == nil {
		modTime = info.ModTime()
	}
	return true, db.UpsertNote(NoteFromFile(rel, data, modTime))
}
