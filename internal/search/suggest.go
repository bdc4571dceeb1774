package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/starford/notekit/internal/models"
	"github.com/starford/notekit/internal/orderedset"
	"github.com/starford/notekit/internal/query"
)

// Highlight markers wrapped around every matched fragment.
const (
	MarkOpen  = "<mark>"
	MarkClose = "</mark>"
)

// Suggest returns up to limit completions for partial: titles that contain
// it, then "tag:<tag>" for tags that contain it, first-seen order, no
// duplicates. Blank input yields an empty slice. limit <= 0 means
// DefaultSuggestLimit.
func Suggest(notes []models.Note, partial string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	needle := strings.ToLower(strings.TrimSpace(partial))
	if needle == "" {
		return []string{}
	}

	set := orderedset.New()
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), needle) {
			set.Add(n.Title)
		}
	}
	for _, n := range notes {
		for _, tag := range n.Tags {
			if strings.Contains(strings.ToLower(tag), needle) {
				set.Add("tag:" + tag)
			}
		}
	}

	out := set.Values()
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Highlight wraps every case-insensitive occurrence of the query's terms and
// exact phrases in text with MarkOpen/MarkClose. Longer fragments take
// precedence where fragments overlap, so markers never nest.
func Highlight(text, raw string) string {
	re := HighlightRegexp(raw)
	if re == nil {
		return text
	}
	return re.ReplaceAllString(text, MarkOpen+"${0}"+MarkClose)
}

// HighlightRegexp exposes the compiled pattern for callers that need to
// restrict highlighting to parts of a document. It returns nil when the
// query has nothing to highlight.
func HighlightRegexp(raw string) *regexp.Regexp {
	q := query.Parse(raw)
	return highlightPattern(append(append([]string{}, q.Terms...), q.ExactPhrases...))
}

func highlightPattern(fragments []string) *regexp.Regexp {
	uniq := orderedset.New(fragments...).Values()
	if len(uniq) == 0 {
		return nil
	}
	sort.SliceStable(uniq, func(i, j int) bool { return len(uniq[i]) > len(uniq[j]) })
	parts := make([]string, len(uniq))
	for i, f := range uniq {
		parts[i] = regexp.QuoteMeta(f)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(parts, "|"))
}
