package links

import "testing"

func TestExtract_Wiki(t *testing.T) {
	got := Extract("[[Note Title]]")
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	d := got[0]
	if d.Type != WikiStyle || d.Title != "Note Title" || d.ID != "" {
		t.Errorf("descriptor = %+v", d)
	}
	if d.RawText != "[[Note Title]]" || d.Position != 0 {
		t.Errorf("raw/position = %q/%d", d.RawText, d.Position)
	}
}

func TestExtract_Explicit(t *testing.T) {
	got := Extract("see [Title](app://note/123) here")
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	d := got[0]
	if d.Type != ExplicitID || d.ID != "123" || d.Title != "Title" {
		t.Errorf("descriptor = %+v", d)
	}
	if d.Position != 4 {
		t.Errorf("position = %d, want 4", d.Position)
	}
}

func TestExtract_OrderedByPosition(t *testing.T) {
	got := Extract("[B](app://note/b) then [[A]] then [C](app://note/c)")
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].ID != "b" || got[1].Title != "A" || got[2].ID != "c" {
		t.Errorf("order = %+v", got)
	}
}

func TestExtract_TrimsAndAliases(t *testing.T) {
	got := Extract("[[  Spaced  ]] and [[Target|shown text]]")
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Title != "Spaced" || got[1].Title != "Target" {
		t.Errorf("titles = %q, %q", got[0].Title, got[1].Title)
	}
}

func TestExtract_IgnoresOtherLinks(t *testing.T) {
	got := Extract("[site](https://example.com) [[ ]] [x](app://other/1)")
	if len(got) != 0 {
		t.Errorf("got %+v, want none", got)
	}
}

func TestExtract_DuplicatesKept(t *testing.T) {
	if got := Extract("[[A]] [[A]]"); len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestExtract_Empty(t *testing.T) {
	if got := Extract(""); got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty slice", got)
	}
}
