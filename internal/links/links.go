// Package links extracts outbound note references from Markdown content.
package links

import (
	"regexp"
	"sort"
	"strings"
)

// NoteScheme is the URL prefix of an id-addressed note link.
const NoteScheme = "app://note/"

// Type distinguishes the two link syntaxes.
type Type string

const (
	// WikiStyle is [[Title]]; the target is resolved by title.
	WikiStyle Type = "wiki"
	// ExplicitID is [Title](app://note/ID); the target id is given.
	ExplicitID Type = "explicit"
)

var (
	wikilinkRe = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)
	explicitRe = regexp.MustCompile(`\[([^\[\]]+)\]\(` + regexp.QuoteMeta(NoteScheme) + `([^)\s]+)\)`)
)

// Descriptor is one outbound link found in a note body.
type Descriptor struct {
	Type     Type   `json:"type"`
	Title    string `json:"title"`
	ID       string `json:"id,omitempty"`
	RawText  string `json:"raw_text"`
	Position int    `json:"position"` // byte offset of RawText in the content
}

// Extract returns every link in content ordered by position.
//
// Wiki links of the form [[Target|Alias]] resolve to Target. Links with an
// empty title after trimming are skipped.
func Extract(content string) []Descriptor {
	out := make([]Descriptor, 0)

	for _, m := range wikilinkRe.FindAllStringSubmatchIndex(content, -1) {
		title := content[m[2]:m[3]]
		if i := strings.Index(title, "|"); i >= 0 {
			title = title[:i]
		}
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		out = append(out, Descriptor{
			Type:     WikiStyle,
			Title:    title,
			RawText:  content[m[0]:m[1]],
			Position: m[0],
		})
	}

	for _, m := range explicitRe.FindAllStringSubmatchIndex(content, -1) {
		out = append(out, Descriptor{
			Type:     ExplicitID,
			Title:    strings.TrimSpace(content[m[2]:m[3]]),
			ID:       content[m[4]:m[5]],
			RawText:  content[m[0]:m[1]],
			Position: m[0],
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}
