package api

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notekit/internal/analytics"
	"github.com/starford/notekit/internal/graph"
	"github.com/starford/notekit/internal/noteservice"
	"github.com/starford/notekit/internal/query"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title   string   `json:"title" example:"Chocolate Cake" validate:"required"`
	Content string   `json:"content" example:"Rich dessert. See [[Carrot Cake]]."`
	Folder  string   `json:"folder,omitempty" example:"desserts"`
	Tags    []string `json:"tags,omitempty" example:"dessert,chocolate"`
}

// Validate validates the create request.
func (r CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Folder, validation.By(relativeFolder)),
		validation.Field(&r.Tags, validation.Each(validation.Required)),
	)
}

func (r CreateNoteRequest) input() noteservice.NoteInput {
	return noteservice.NoteInput{Title: r.Title, Content: r.Content, Folder: r.Folder, Tags: r.Tags}
}

// UpdateNoteRequest is the request body for updating a note. Empty title and
// folder, and a missing tags list, keep the stored values.
type UpdateNoteRequest struct {
	Title   string   `json:"title,omitempty" example:"Chocolate Cake"`
	Content string   `json:"content" example:"Updated body" validate:"required"`
	Folder  string   `json:"folder,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// Validate validates the update request.
func (r UpdateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.Title, validation.Length(0, 200)),
		validation.Field(&r.Folder, validation.By(relativeFolder)),
		validation.Field(&r.Tags, validation.Each(validation.Required)),
	)
}

func (r UpdateNoteRequest) input() noteservice.NoteInput {
	return noteservice.NoteInput{Title: r.Title, Content: r.Content, Folder: r.Folder, Tags: r.Tags}
}

// HighlightRequest is the request body for POST /highlight.
type HighlightRequest struct {
	Text  string `json:"text" example:"Chocolate cake recipe" validate:"required"`
	Query string `json:"query" example:"chocolate"`
}

// Validate validates the highlight request.
func (r HighlightRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required),
	)
}

// HighlightResponse carries the marked-up text.
type HighlightResponse struct {
	HTML string `json:"html" validate:"required"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListItem is a lightweight item in a list response (aliased from the domain layer).
type NoteListItem = noteservice.NoteListItem

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	ID      string   `json:"id" example:"choc" validate:"required"`
	Path    string   `json:"path" example:"desserts/chocolate-cake.md" validate:"required"`
	Title   string   `json:"title" example:"Chocolate Cake" validate:"required"`
	Folder  string   `json:"folder,omitempty"`
	Tags    []string `json:"tags"`
	Score   float64  `json:"score" example:"13"`
	Snippet string   `json:"snippet" example:"Rich <mark>chocolate</mark> dessert"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Query   query.Parsed   `json:"query"`
	Results []SearchResult `json:"results" validate:"required"`
}

// SuggestResponse wraps completions.
type SuggestResponse struct {
	Suggestions []string `json:"suggestions" validate:"required"`
}

// RenderResponse carries the rendered HTML of a note.
type RenderResponse struct {
	ID    string `json:"id" validate:"required"`
	Title string `json:"title"`
	HTML  string `json:"html" validate:"required"`
}

// GraphResponse is the node/edge view of the vault.
type GraphResponse = graph.Graph

// AnalyticsResponse is the statistics snapshot.
type AnalyticsResponse = analytics.Snapshot

func relativeFolder(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "/") || strings.Contains(s, "\\") {
		return errors.New("must be a relative slash-separated path")
	}
	for _, seg := range strings.Split(s, "/") {
		if seg == ".." || strings.HasPrefix(seg, ".") {
			return errors.New("must not contain hidden or parent segments")
		}
	}
	return nil
}
