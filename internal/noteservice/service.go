// Package noteservice coordinates the vault store, the SQLite index and the
// search/graph/analytics core.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/notekit/internal/analytics"
	"github.com/starford/notekit/internal/apperr"
	"github.com/starford/notekit/internal/checksum"
	"github.com/starford/notekit/internal/graph"
	"github.com/starford/notekit/internal/index"
	"github.com/starford/notekit/internal/links"
	"github.com/starford/notekit/internal/models"
	"github.com/starford/notekit/internal/parser"
	"github.com/starford/notekit/internal/query"
	"github.com/starford/notekit/internal/search"
	"github.com/starford/notekit/internal/storage"
)

// Event kinds passed to a Notifier.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Notifier is told about note mutations made through the service.
type Notifier func(kind, path string)

// NoteDetail is a note together with its link neighbourhood.
type NoteDetail struct {
	models.Note
	Outbound  []string              `json:"outbound"`
	Backlinks []graph.BacklinkEntry `json:"backlinks"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	ID       string    `json:"id"`
	Path     string    `json:"path"`
	Title    string    `json:"title"`
	Folder   string    `json:"folder"`
	Checksum string    `json:"checksum"`
	Tags     []string  `json:"tags"`
	Modified time.Time `json:"modified"`
}

// NoteInput carries the editable fields of a note.
type NoteInput struct {
	Title   string
	Content string
	Folder  string
	Tags    []string
}

// NoteLinks describes the links written in a note and the note ids they
// resolve to.
type NoteLinks struct {
	Links   []links.Descriptor `json:"links"`
	Targets []string           `json:"targets"`
}

// Service coordinates storage and index operations.
type Service struct {
	store        storage.Provider
	db           index.NoteIndex
	logger       *slog.Logger
	opts         search.Options
	suggestLimit int
	notify       Notifier
	now          func() time.Time

	mu      sync.RWMutex
	memoKey uint64
	memo    *graph.Result
}

// Option configures a Service.
type Option func(*Service)

// WithSearchOptions sets the defaults used when a search request leaves a
// field at its zero value.
func WithSearchOptions(opts search.Options) Option {
	return func(s *Service) { s.opts = opts }
}

// WithSuggestLimit sets the default number of suggestions.
func WithSuggestLimit(n int) Option {
	return func(s *Service) { s.suggestLimit = n }
}

// WithNotifier registers a callback for mutations made through the service.
func WithNotifier(fn Notifier) Option {
	return func(s *Service) { s.notify = fn }
}

// WithClock overrides the clock used for timestamps and analytics.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new note service.
func NewService(store storage.Provider, db index.NoteIndex, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:        store,
		db:           db,
		logger:       logger,
		opts:         search.DefaultOptions(),
		suggestLimit: search.DefaultSuggestLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListNotes returns a filtered page of notes.
func (s *Service) ListNotes(_ context.Context, q index.ListQuery) ([]NoteListItem, int, error) {
	notes, total, err := s.db.ListNotes(q)
	if err != nil {
		return nil, 0, err
	}
	items := make([]NoteListItem, len(notes))
	for i, n := range notes {
		items[i] = NoteListItem{
			ID:       n.ID,
			Path:     n.Path,
			Title:    n.Title,
			Folder:   n.Folder,
			Checksum: n.Checksum,
			Tags:     nonNilSlice(n.Tags),
			Modified: n.Modified,
		}
	}
	return items, total, nil
}

// GetNote returns the note with the given id plus its outbound links and
// backlinks.
func (s *Service) GetNote(_ context.Context, id string) (*NoteDetail, error) {
	n, err := s.db.GetNote(id)
	if err != nil {
		return nil, err
	}
	notes, err := s.db.AllNotes()
	if err != nil {
		return nil, err
	}
	g := s.graphFor(notes)
	return &NoteDetail{
		Note:      *n,
		Outbound:  graph.Outbound(*n, notes),
		Backlinks: nonNilSlice(g.Backlinks[n.ID]),
	}, nil
}

// CreateNote writes a new note under folder/<slug>.md and indexes it.
func (s *Service) CreateNote(ctx context.Context, in NoteInput) (*NoteDetail, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("noteservice: create: %w: title is required", apperr.ErrInvalidInput)
	}
	folder := strings.Trim(path.Clean("/"+in.Folder), "/")
	rel := slugify(in.Title) + ".md"
	if folder != "" {
		rel = folder + "/" + rel
	}
	if s.store.Exists(rel) {
		return nil, apperr.ErrAlreadyExists
	}

	now := s.now().UTC()
	fm := map[string]any{
		"id":       uuid.NewString(),
		"title":    strings.TrimSpace(in.Title),
		"tags":     nonNilSlice(in.Tags),
		"created":  now.Format(time.RFC3339),
		"modified": now.Format(time.RFC3339),
	}
	if folder != "" {
		fm["folder"] = folder
	}
	data, err := parser.Render(fm, in.Content)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(rel, data); err != nil {
		return nil, err
	}
	n, err := s.IndexFile(rel, data)
	if err != nil {
		return nil, err
	}
	s.emit(EventCreated, rel)
	return s.GetNote(ctx, n.ID)
}

// UpdateNote rewrites a note with optimistic concurrency: a non-empty ifMatch
// must equal the checksum of the file currently on disk. Frontmatter keys not
// covered by NoteInput are preserved. A new folder moves the file.
func (s *Service) UpdateNote(ctx context.Context, id string, in NoteInput, ifMatch string) (*NoteDetail, error) {
	current, err := s.db.GetNote(id)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.Read(current.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}

	prev, _ := parser.Parse(existing)
	fm := prev.Frontmatter
	if fm == nil {
		fm = map[string]any{}
	}
	fm["id"] = current.ID
	if strings.TrimSpace(in.Title) != "" {
		fm["title"] = strings.TrimSpace(in.Title)
	}
	if in.Tags != nil {
		fm["tags"] = in.Tags
	}
	target := current.Path
	if folder := strings.Trim(path.Clean("/"+in.Folder), "/"); folder != "" {
		fm["folder"] = folder
		if path.Dir(current.Path) != folder {
			target = folder + "/" + path.Base(current.Path)
			if s.store.Exists(target) {
				return nil, apperr.ErrAlreadyExists
			}
		}
	}
	if _, ok := fm["created"]; !ok {
		fm["created"] = current.Created.UTC().Format(time.RFC3339)
	}
	fm["modified"] = s.now().UTC().Format(time.RFC3339)

	data, err := parser.Render(fm, in.Content)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(current.Path, data); err != nil {
		return nil, err
	}
	if target != current.Path {
		if err := s.store.Move(current.Path, target); err != nil {
			return nil, err
		}
		if err := s.db.DeleteNote(current.Path); err != nil {
			return nil, err
		}
		s.emit(EventDeleted, current.Path)
	}
	if _, err := s.IndexFile(target, data); err != nil {
		return nil, err
	}
	s.emit(EventUpdated, target)
	return s.GetNote(ctx, id)
}

// DeleteNote removes a note from storage and index.
func (s *Service) DeleteNote(_ context.Context, id string) error {
	n, err := s.db.GetNote(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(n.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := s.db.DeleteNote(n.Path); err != nil {
		return err
	}
	s.emit(EventDeleted, n.Path)
	return nil
}

// Search ranks the whole collection against raw. Zero fields of opts take
// the service defaults.
func (s *Service) Search(_ context.Context, raw string, opts search.Options) ([]search.Result, error) {
	opts = s.mergeOptions(opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	notes, err := s.db.AllNotes()
	if err != nil {
		return nil, err
	}
	return search.Search(notes, raw, opts), nil
}

// Suggest returns completions for partial. A non-positive limit uses the
// configured default.
func (s *Service) Suggest(_ context.Context, partial string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = s.suggestLimit
	}
	notes, err := s.db.AllNotes()
	if err != nil {
		return nil, err
	}
	return search.Suggest(notes, partial, limit), nil
}

// ParseQuery exposes the structured form of a raw query.
func (s *Service) ParseQuery(raw string) query.Parsed {
	return query.Parse(raw)
}

// Highlight marks the query's terms and phrases in text.
func (s *Service) Highlight(text, raw string) string {
	return search.Highlight(text, raw)
}

// Links returns the link descriptors written in a note and the ids they
// resolve to.
func (s *Service) Links(_ context.Context, id string) (*NoteLinks, error) {
	n, err := s.db.GetNote(id)
	if err != nil {
		return nil, err
	}
	notes, err := s.db.AllNotes()
	if err != nil {
		return nil, err
	}
	return &NoteLinks{
		Links:   nonNilSlice(links.Extract(n.Content)),
		Targets: graph.Outbound(*n, notes),
	}, nil
}

// Backlinks returns every link that points at the note with the given id.
func (s *Service) Backlinks(_ context.Context, id string) ([]graph.BacklinkEntry, error) {
	if _, err := s.db.GetNote(id); err != nil {
		return nil, err
	}
	notes, err := s.db.AllNotes()
	if err != nil {
		return nil, err
	}
	return nonNilSlice(s.graphFor(notes).Backlinks[id]), nil
}

// Graph returns the node/edge view of the whole collection.
func (s *Service) Graph(_ context.Context) (graph.Graph, error) {
	notes, err := s.db.AllNotes()
	if err != nil {
		return graph.Graph{}, err
	}
	return s.graphFor(notes).Graph, nil
}

// Analytics computes collection statistics as of the service clock.
func (s *Service) Analytics(_ context.Context) (analytics.Snapshot, error) {
	notes, err := s.db.AllNotes()
	if err != nil {
		return analytics.Snapshot{}, err
	}
	return analytics.Compute(notes, s.now()), nil
}

// IndexFile converts data to a note and upserts it into the index.
func (s *Service) IndexFile(rel string, data []byte) (models.Note, error) {
	n := index.NoteFromFile(rel, data, s.now())
	if err := s.db.UpsertNote(n); err != nil {
		return models.Note{}, err
	}
	return n, nil
}

// graphFor returns the backlink build for notes, reusing the previous build
// while every note's id, title, checksum and modification time are unchanged.
func (s *Service) graphFor(notes []models.Note) graph.Result {
	parts := make([]string, 0, len(notes)*4)
	for _, n := range notes {
		parts = append(parts, n.ID, n.Title, n.Checksum, n.Modified.UTC().Format(time.RFC3339Nano))
	}
	key := checksum.Fingerprint(parts...)

	s.mu.RLock()
	if s.memo != nil && s.memoKey == key {
		r := *s.memo
		s.mu.RUnlock()
		return r
	}
	s.mu.RUnlock()

	r := graph.Build(notes)
	s.logger.Debug("graph rebuilt", slog.Int("notes", len(notes)), slog.Int("edges", len(r.Graph.Edges)))

	s.mu.Lock()
	s.memo = &r
	s.memoKey = key
	s.mu.Unlock()
	return r
}

func (s *Service) mergeOptions(opts search.Options) search.Options {
	if opts.FuzzyThreshold == 0 {
		opts.FuzzyThreshold = s.opts.FuzzyThreshold
	}
	if opts.MaxResults == 0 {
		opts.MaxResults = s.opts.MaxResults
	}
	if opts.SortBy == "" {
		opts.SortBy = s.opts.SortBy
	}
	return opts
}

func (s *Service) emit(kind, rel string) {
	if s.notify != nil {
		s.notify(kind, rel)
	}
}

var slugRe = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// slugify turns a title into a file-name stem.
func slugify(title string) string {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		return uuid.NewString()
	}
	return slug
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
