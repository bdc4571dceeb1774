package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notekit/internal/index"
	"github.com/starford/notekit/internal/noteservice"
	"github.com/starford/notekit/internal/search"
)

const snippetRunes = 200

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// noteID extracts the note id from the URL (everything after /api/notes/).
// Ids may contain slashes, either literal or encoded (e.g. desserts%2Fcake).
func noteID(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// noteSubresources are the GET endpoints nested under a note id.
var noteSubresources = []string{"links", "backlinks", "render"}

// splitSubresource separates a trailing /links, /backlinks or /render from id.
func splitSubresource(id string) (string, string) {
	for _, sub := range noteSubresources {
		if base, ok := strings.CutSuffix(id, "/"+sub); ok && base != "" {
			return base, sub
		}
	}
	return id, ""
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes with optional pagination and filtering
//	@Tags			notes
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			tag		query		string	false	"Filter by tag"
//	@Param			folder	query		string	false	"Filter by folder"
//	@Param			sort	query		string	false	"Sort field"	Enums(modified, created, title, path)
//	@Success		200		{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListNotes(r.Context(), index.ListQuery{
		Limit:  limit,
		Offset: offset,
		Tag:    q.Get("tag"),
		Folder: q.Get("folder"),
		Sort:   q.Get("sort"),
	})
	if err != nil {
		writeServiceError(w, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: total})
}

// GetNote handles GET /api/notes/* including the /links, /backlinks and
// /render subresources.
//
//	@Summary		Get a single note by id
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	NoteDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, sub := splitSubresource(noteID(r))
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	switch sub {
	case "links":
		h.links(w, r, id)
	case "backlinks":
		h.backlinks(w, r, id)
	case "render":
		h.render(w, r, id)
	default:
		note, err := h.svc.GetNote(r.Context(), id)
		if err != nil {
			writeServiceError(w, "get note", err, slog.String("id", id))
			return
		}
		w.Header().Set("ETag", `"`+note.Checksum+`"`)
		writeJSON(w, http.StatusOK, note)
	}
}

// links handles GET /api/notes/{id}/links.
//
//	@Summary		Links written in a note and the ids they resolve to
//	@Tags			links
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	noteservice.NoteLinks
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/links [get]
func (h *Handler) links(w http.ResponseWriter, r *http.Request, id string) {
	nl, err := h.svc.Links(r.Context(), id)
	if err != nil {
		writeServiceError(w, "links", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, nl)
}

// backlinks handles GET /api/notes/{id}/backlinks.
//
//	@Summary		Inbound links to a note
//	@Tags			links
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{array}		graph.BacklinkEntry
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/backlinks [get]
func (h *Handler) backlinks(w http.ResponseWriter, r *http.Request, id string) {
	bl, err := h.svc.Backlinks(r.Context(), id)
	if err != nil {
		writeServiceError(w, "backlinks", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, bl)
}

// render handles GET /api/notes/{id}/render?q=.
//
//	@Summary		Render a note to HTML, highlighting query matches
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Param			q	query		string	false	"Query whose terms are highlighted"
//	@Success		200	{object}	RenderResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/render [get]
func (h *Handler) render(w http.ResponseWriter, r *http.Request, id string) {
	note, err := h.svc.GetNote(r.Context(), id)
	if err != nil {
		writeServiceError(w, "render", err, slog.String("id", id))
		return
	}
	html, err := renderMarkdown(note.Content, r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, "render", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, RenderResponse{ID: note.ID, Title: note.Title, HTML: html})
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a new note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Note to create"
//	@Success		201		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	note, err := h.svc.CreateNote(r.Context(), req.input())
	if err != nil {
		writeServiceError(w, "create note", err, slog.String("title", req.Title))
		return
	}
	w.Header().Set("ETag", `"`+note.Checksum+`"`)
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /api/notes/*.
//
//	@Summary		Update a note with optimistic concurrency
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id			path	string				true	"Note id"
//	@Param			If-Match	header	string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	UpdateNoteRequest	true	"Updated content"
//	@Success		200		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	var req UpdateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	note, err := h.svc.UpdateNote(r.Context(), id, req.input(), ifMatch)
	if err != nil {
		writeServiceError(w, "update note", err, slog.String("id", id))
		return
	}
	w.Header().Set("ETag", `"`+note.Checksum+`"`)
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/*.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			id	path	string	true	"Note id"
//	@Success		204	"Note deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := h.svc.DeleteNote(r.Context(), id); err != nil {
		writeServiceError(w, "delete note", err, slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
//
//	@Summary		Ranked search across notes
//	@Tags			search
//	@Produce		json
//	@Param			q			query		string	false	"Search query; empty returns every note"
//	@Param			sort		query		string	false	"Sort order"	Enums(relevance, date)
//	@Param			limit		query		int		false	"Max results"
//	@Param			threshold	query		number	false	"Fuzzy similarity threshold in [0,1]"
//	@Success		200			{object}	SearchResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	raw := params.Get("q")

	opts := search.Options{SortBy: search.SortOrder(params.Get("sort"))}
	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		opts.MaxResults = n
	}
	if v := params.Get("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "threshold must be a number")
			return
		}
		opts.FuzzyThreshold = f
	}

	results, err := h.svc.Search(r.Context(), raw, opts)
	if err != nil {
		writeServiceError(w, "search", err, slog.String("query", raw))
		return
	}

	out := make([]SearchResult, len(results))
	for i, res := range results {
		out[i] = SearchResult{
			ID:      res.Note.ID,
			Path:    res.Note.Path,
			Title:   res.Note.Title,
			Folder:  res.Note.Folder,
			Tags:    res.Note.Tags,
			Score:   res.Score,
			Snippet: h.svc.Highlight(snippet(res.Note.Content), raw),
		}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Query: h.svc.ParseQuery(raw), Results: out})
}

// Suggest handles GET /api/search/suggest.
//
//	@Summary		Title and tag completions
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Partial input"
//	@Param			limit	query		int		false	"Max suggestions"
//	@Success		200		{object}	SuggestResponse
//	@Security		BearerAuth
//	@Router			/search/suggest [get]
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	s, err := h.svc.Suggest(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeServiceError(w, "suggest", err)
		return
	}
	writeJSON(w, http.StatusOK, SuggestResponse{Suggestions: s})
}

// ParseQuery handles GET /api/search/parse.
//
//	@Summary		Structured form of a query
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	false	"Raw query"
//	@Success		200	{object}	query.Parsed
//	@Security		BearerAuth
//	@Router			/search/parse [get]
func (h *Handler) ParseQuery(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ParseQuery(r.URL.Query().Get("q")))
}

// Highlight handles POST /api/highlight.
//
//	@Summary		Mark query terms in arbitrary text
//	@Tags			search
//	@Accept			json
//	@Produce		json
//	@Param			body	body		HighlightRequest	true	"Text and query"
//	@Success		200		{object}	HighlightResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/highlight [post]
func (h *Handler) Highlight(w http.ResponseWriter, r *http.Request) {
	var req HighlightRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, HighlightResponse{HTML: h.svc.Highlight(req.Text, req.Query)})
}

// Graph handles GET /api/graph.
//
//	@Summary		Get the knowledge graph
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	GraphResponse
//	@Security		BearerAuth
//	@Router			/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Graph(r.Context())
	if err != nil {
		writeServiceError(w, "graph", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// Analytics handles GET /api/analytics.
//
//	@Summary		Vault statistics
//	@Tags			analytics
//	@Produce		json
//	@Success		200	{object}	AnalyticsResponse
//	@Security		BearerAuth
//	@Router			/analytics [get]
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Analytics(r.Context())
	if err != nil {
		writeServiceError(w, "analytics", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// snippet returns the first snippetRunes runes of content on one line.
func snippet(content string) string {
	s := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(s) <= snippetRunes {
		return s
	}
	return string([]rune(s)[:snippetRunes]) + "…"
}

