package parser

import (
	"testing"
	"time"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\ntags:\n  - go\n  - notes\n---\n# Hello\nBody text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Hello" {
		t.Errorf("title = %q, want %q", r.Title, "Hello")
	}
	if len(r.Tags) != 2 || r.Tags[0] != "go" || r.Tags[1] != "notes" {
		t.Errorf("tags = %v, want [go notes]", r.Tags)
	}
	if r.Body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	r, err := Parse([]byte("# Just a heading\nSome text.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q", r.Title)
	}
	if r.ID != "" || !r.Created.IsZero() || r.Servings != nil {
		t.Errorf("metadata should be zero: %+v", r)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	r, err := Parse([]byte("---\n: invalid: yaml: {{{\n---\nBody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
}

func TestParse_Metadata(t *testing.T) {
	input := []byte("---\nid: abc-1\nfolder: Food\ncreated: 2024-01-02\nmodified: \"2024-02-03T10:00:00Z\"\nservings: 4\n---\nbody\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	if r.ID != "abc-1" || r.Folder != "Food" {
		t.Errorf("id/folder = %q/%q", r.ID, r.Folder)
	}
	if r.Created.Year() != 2024 || r.Created.Month() != time.January || r.Created.Day() != 2 {
		t.Errorf("created = %v", r.Created)
	}
	if !r.Modified.Equal(time.Date(2024, 2, 3, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("modified = %v", r.Modified)
	}
	if r.Servings == nil || *r.Servings != 4 {
		t.Errorf("servings = %v", r.Servings)
	}
}

func TestExtractTags_InlineAndFrontmatter(t *testing.T) {
	fm := map[string]any{"tags": []any{"alpha"}}
	tags := extractTags("Some text #beta and #alpha again.", fm)
	if len(tags) != 2 || tags[0] != "alpha" || tags[1] != "beta" {
		t.Errorf("tags = %v, want [alpha beta]", tags)
	}
}

func TestExtractTags_CommaString(t *testing.T) {
	tags := extractTags("", map[string]any{"tags": "a, b ,a"})
	if len(tags) != 2 || tags[0] != "a" || tags[1] != "b" {
		t.Errorf("tags = %v", tags)
	}
}

func TestDeriveTitle_FrontmatterOverH1(t *testing.T) {
	if title := deriveTitle(map[string]any{"title": "FM Title"}, "# H1 Title\ntext"); title != "FM Title" {
		t.Errorf("title = %q", title)
	}
}

func TestDeriveTitle_H1Fallback(t *testing.T) {
	if title := deriveTitle(nil, "some text\n# My Heading\nmore"); title != "My Heading" {
		t.Errorf("title = %q", title)
	}
}

func TestRender_RoundTrip(t *testing.T) {
	data, err := Render(map[string]any{"title": "T", "tags": []string{"x"}}, "body [[Other]]\n")
	if err != nil {
		t.Fatal(err)
	}
	r, _ := Parse(data)
	if r.Title != "T" || len(r.Tags) != 1 || r.Tags[0] != "x" || r.Body != "body [[Other]]\n" {
		t.Errorf("round trip = %+v", r)
	}
}
