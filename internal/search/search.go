// Package search ranks notes against a free-text query and provides
// autocomplete suggestions and match highlighting.
package search

import (
	"sort"
	"strings"

	"github.com/starford/notekit/internal/models"
	"github.com/starford/notekit/internal/query"
	"github.com/starford/notekit/internal/similarity"
)

// Score weights.
const (
	weightPhrase       = 10.0
	weightTagExact     = 8.0
	weightTagFuzzy     = 6.0
	weightFolder       = 8.0
	weightTitleSubstr  = 5.0
	weightTextSubstr   = 3.0
	weightTitleFuzzy   = 4.0
	weightContentFuzzy = 2.0
)

// Result is a note paired with its relevance score.
type Result struct {
	Note  models.Note `json:"note"`
	Score float64     `json:"score"`
}

// Search parses raw and ranks notes against it.
//
// A query without terms, phrases, tags or folders returns every note with
// score 0 in collection order, ignoring opts. Otherwise notes that fail a
// filter or end with a zero score are dropped, the rest are sorted per
// opts.SortBy and truncated to opts.MaxResults.
func Search(notes []models.Note, raw string, opts Options) []Result {
	return SearchParsed(notes, query.Parse(raw), opts)
}

// SearchParsed is Search over an already parsed query.
func SearchParsed(notes []models.Note, q query.Parsed, opts Options) []Result {
	if !q.HasCriteria() {
		out := make([]Result, len(notes))
		for i, n := range notes {
			out[i] = Result{Note: n}
		}
		return out
	}

	opts = opts.withDefaults()
	out := make([]Result, 0)
	for _, n := range notes {
		if score, ok := scoreNote(n, q, opts.FuzzyThreshold); ok && score > 0 {
			out = append(out, Result{Note: n, Score: score})
		}
	}

	switch opts.SortBy {
	case SortDate:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Note.Modified.After(out[j].Note.Modified)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Score > out[j].Score
		})
	}

	if len(out) > opts.MaxResults {
		out = out[:opts.MaxResults]
	}
	return out
}

// surfaces holds the lowercased text a note is matched against.
type surfaces struct {
	text    string
	title   string
	content string
	folder  string
	tags    []string
}

func newSurfaces(n models.Note) surfaces {
	tags := make([]string, len(n.Tags))
	for i, t := range n.Tags {
		tags[i] = strings.ToLower(t)
	}
	return surfaces{
		text:    strings.ToLower(n.Title + " " + n.Content),
		title:   strings.ToLower(n.Title),
		content: strings.ToLower(n.Content),
		folder:  strings.ToLower(n.Folder),
		tags:    tags,
	}
}

// scoreNote returns the accumulated score and false when the note is
// filtered out.
func scoreNote(n models.Note, q query.Parsed, threshold float64) (float64, bool) {
	s := newSurfaces(n)

	for _, ex := range q.ExcludedTerms {
		if strings.Contains(s.text, ex) {
			return 0, false
		}
	}

	var score float64

	for _, phrase := range q.ExactPhrases {
		if !strings.Contains(s.text, phrase) {
			return 0, false
		}
		score += weightPhrase
	}

	for _, tag := range q.Tags {
		w, ok := matchTag(tag, s.tags, threshold)
		if !ok {
			return 0, false
		}
		score += w
	}

	for _, folder := range q.Folders {
		if !strings.Contains(s.folder, folder) {
			return 0, false
		}
		score += weightFolder
	}

	if !inDateRange(n, q.DateRange) {
		return 0, false
	}

	for _, term := range q.Terms {
		w, ok := matchTerm(term, s, threshold)
		if !ok && len(q.Terms) == 1 {
			return 0, false
		}
		score += w
	}

	return score, true
}

func matchTag(tag string, noteTags []string, threshold float64) (float64, bool) {
	for _, nt := range noteTags {
		if nt == tag {
			return weightTagExact, true
		}
	}
	for _, nt := range noteTags {
		if similarity.Similarity(tag, nt) >= threshold {
			return weightTagFuzzy, true
		}
	}
	return 0, false
}

// matchTerm tries, in order: title substring, text substring, fuzzy title
// word, fuzzy content word. The first hit wins.
func matchTerm(term string, s surfaces, threshold float64) (float64, bool) {
	if strings.Contains(s.title, term) {
		return weightTitleSubstr, true
	}
	if strings.Contains(s.text, term) {
		return weightTextSubstr, true
	}
	for _, w := range strings.Fields(s.title) {
		if sim := similarity.Similarity(term, w); sim >= threshold {
			return weightTitleFuzzy * sim, true
		}
	}
	for _, w := range strings.Fields(s.content) {
		if sim := similarity.Similarity(term, w); sim >= threshold {
			return weightContentFuzzy * sim, true
		}
	}
	return 0, false
}

// inDateRange checks the note's modified time against r. A bound whose
// token did not parse admits nothing.
func inDateRange(n models.Note, r *query.DateRange) bool {
	if r == nil {
		return true
	}
	if b := r.Before; b != nil {
		if !b.Valid || n.Modified.After(b.Time) {
			return false
		}
	}
	if a := r.After; a != nil {
		if !a.Valid || n.Modified.Before(a.Time) {
			return false
		}
	}
	return true
}
