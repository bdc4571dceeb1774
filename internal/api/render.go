package api

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/starford/notekit/internal/search"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// markupRe matches HTML tags and character references, which highlighting
// must leave untouched.
var markupRe = regexp.MustCompile(`<[^>]*>|&[#A-Za-z0-9]+;`)

// renderMarkdown converts content to HTML and marks raw's terms and phrases
// in the text between tags.
func renderMarkdown(content, raw string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("api: render markdown: %w", err)
	}
	return highlightHTML(buf.String(), raw), nil
}

func highlightHTML(html, raw string) string {
	re := search.HighlightRegexp(raw)
	if re == nil {
		return html
	}
	var b strings.Builder
	last := 0
	for _, loc := range markupRe.FindAllStringIndex(html, -1) {
		b.WriteString(re.ReplaceAllString(html[last:loc[0]], search.MarkOpen+"${0}"+search.MarkClose))
		b.WriteString(html[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(re.ReplaceAllString(html[last:], search.MarkOpen+"${0}"+search.MarkClose))
	return b.String()
}
