// Package query parses free-text search input into structured criteria.
//
// Parsing runs as an ordered pipeline of extract-and-strip passes over a
// residual string: quoted phrases, tag filters, folder filters, date bounds,
// exclusions, then whatever is left becomes free-text terms. A fragment
// claimed by an earlier pass is never seen by a later one.
package query

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/starford/notekit/internal/orderedset"
)

var (
	phraseRe  = regexp.MustCompile(`"([^"]*)"`)
	tagRe     = regexp.MustCompile(`(?:tag:|#)(\S+)`)
	folderRe  = regexp.MustCompile(`folder:(\S+)`)
	beforeRe  = regexp.MustCompile(`before:(\S+)`)
	afterRe   = regexp.MustCompile(`after:(\S+)`)
	excludeRe = regexp.MustCompile(`(?:^|\s)-(\S+)`)
)

// DateBound is one side of a date range filter.
// Valid is false when Raw could not be parsed; such a bound matches no note.
type DateBound struct {
	Raw   string    `json:"raw"`
	Time  time.Time `json:"time"`
	Valid bool      `json:"valid"`
}

// DateRange bounds a note's modified timestamp. Nil sides are open.
type DateRange struct {
	Before *DateBound `json:"before,omitempty"`
	After  *DateBound `json:"after,omitempty"`
}

// Parsed is the structured form of a raw query. All strings are lowercase.
type Parsed struct {
	Terms         []string   `json:"terms"`
	ExactPhrases  []string   `json:"exact_phrases"`
	Tags          []string   `json:"tags"`
	Folders       []string   `json:"folders"`
	ExcludedTerms []string   `json:"excluded_terms"`
	DateRange     *DateRange `json:"date_range,omitempty"`
}

// HasCriteria reports whether the query carries anything that selects notes
// by content. Date ranges and exclusions alone do not count.
func (p Parsed) HasCriteria() bool {
	return len(p.Terms) > 0 || len(p.ExactPhrases) > 0 || len(p.Tags) > 0 || len(p.Folders) > 0
}

// Parse converts raw into a Parsed query. It never fails: anything that is
// not recognised as an operator ends up as a free-text term.
func Parse(raw string) Parsed {
	p := Parsed{
		Terms:         []string{},
		ExactPhrases:  []string{},
		Tags:          []string{},
		Folders:       []string{},
		ExcludedTerms: []string{},
	}
	if strings.TrimSpace(raw) == "" {
		return p
	}

	rest := raw
	var phrases, tags, folders, excluded []string

	phrases, rest = extract(phraseRe, rest)
	tags, rest = extract(tagRe, rest)
	folders, rest = extract(folderRe, rest)

	before, rest := extract(beforeRe, rest)
	after, rest := extract(afterRe, rest)
	if len(before) > 0 || len(after) > 0 {
		p.DateRange = &DateRange{}
		if len(before) > 0 {
			p.DateRange.Before = parseBound(before[0])
		}
		if len(after) > 0 {
			p.DateRange.After = parseBound(after[0])
		}
	}

	excluded, rest = extract(excludeRe, rest)

	p.ExactPhrases = foldSet(phrases)
	p.Tags = foldSet(tags)
	p.Folders = foldSet(folders)
	p.ExcludedTerms = foldSet(excluded)

	for _, tok := range strings.Fields(strings.ToLower(rest)) {
		// A dash orphaned by an earlier pass, e.g. the "-" of "-tag:x".
		if strings.Trim(tok, "-") == "" {
			continue
		}
		p.Terms = append(p.Terms, tok)
	}
	return p
}

// extract returns the first capture group of every match of re in s and s
// with the matches replaced by a space.
func extract(re *regexp.Regexp, s string) ([]string, string) {
	matches := re.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil, s
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out, re.ReplaceAllString(s, " ")
}

func foldSet(in []string) []string {
	set := orderedset.New()
	for _, v := range in {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		set.Add(v)
	}
	return set.Values()
}

func parseBound(raw string) *DateBound {
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return &DateBound{Raw: raw}
	}
	return &DateBound{Raw: raw, Time: t, Valid: true}
}
