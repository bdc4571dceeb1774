package search

import (
	"reflect"
	"strings"
	"testing"

	"github.com/starford/notekit/internal/models"
)

func TestSuggest_TitlesThenTags(t *testing.T) {
	notes := []models.Note{
		{ID: "1", Title: "Recipe Index", Tags: []string{"recipe"}},
		{ID: "2", Title: "Chocolate Cake", Tags: []string{"recipe", "recipes-archive"}},
	}
	got := Suggest(notes, "rec", 10)
	want := []string{"Recipe Index", "tag:recipe", "tag:recipes-archive"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("suggestions = %v, want %v", got, want)
	}
}

func TestSuggest_Limit(t *testing.T) {
	notes := []models.Note{
		{Title: "Alpha one"}, {Title: "Alpha two"}, {Title: "Alpha three"},
	}
	if got := Suggest(notes, "alpha", 2); len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
	if got := Suggest(notes, "alpha", 0); len(got) != 3 {
		t.Errorf("default limit should allow 3, got %d", len(got))
	}
}

func TestSuggest_DuplicateTitles(t *testing.T) {
	notes := []models.Note{{Title: "Daily"}, {Title: "Daily"}}
	if got := Suggest(notes, "dai", 5); !reflect.DeepEqual(got, []string{"Daily"}) {
		t.Errorf("suggestions = %v", got)
	}
}

func TestSuggest_BlankInput(t *testing.T) {
	notes := []models.Note{{Title: "Anything", Tags: []string{"any"}}}
	for _, in := range []string{"", "   "} {
		got := Suggest(notes, in, 5)
		if got == nil || len(got) != 0 {
			t.Errorf("Suggest(%q) = %#v, want empty", in, got)
		}
	}
}

func TestHighlight_TermsAndPhrases(t *testing.T) {
	got := Highlight("A Delicious cake, truly delicious.", `delicious "cake, truly"`)
	want := "A <mark>Delicious</mark> <mark>cake, truly</mark> <mark>delicious</mark>."
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestHighlight_EscapesMetacharacters(t *testing.T) {
	got := Highlight("cost is $5 (approx.) or 5x", "(approx.)")
	if !strings.Contains(got, "<mark>(approx.)</mark>") {
		t.Errorf("got %q", got)
	}
	if strings.Contains(got, "<mark>5x") {
		t.Errorf("metacharacters were not escaped: %q", got)
	}
}

func TestHighlight_OverlapPrefersLonger(t *testing.T) {
	got := Highlight("cupcake", "cake cupcake")
	if got != "<mark>cupcake</mark>" {
		t.Errorf("got %q", got)
	}
}

func TestHighlight_NothingToMark(t *testing.T) {
	in := "plain text"
	if got := Highlight(in, "tag:foo -bar"); got != in {
		t.Errorf("got %q, want unchanged", got)
	}
	if HighlightRegexp("") != nil {
		t.Error("empty query should yield nil pattern")
	}
}
