package graph

import (
	"reflect"
	"testing"

	"github.com/starford/notekit/internal/links"
	"github.com/starford/notekit/internal/models"
)

func TestBuild_WikiBacklink(t *testing.T) {
	notes := []models.Note{
		{ID: "a", Title: "A", Content: "contains [[B]]"},
		{ID: "b", Title: "B", Content: "no links"},
	}
	res := Build(notes)
	bl := res.Backlinks["b"]
	if len(bl) != 1 {
		t.Fatalf("backlinks[b] = %+v, want one entry", bl)
	}
	want := BacklinkEntry{SourceID: "a", SourceTitle: "A", LinkText: "[[B]]", Type: links.WikiStyle}
	if bl[0] != want {
		t.Errorf("entry = %+v, want %+v", bl[0], want)
	}
	if _, ok := res.Backlinks["a"]; ok {
		t.Errorf("backlinks[a] should be absent")
	}
	if !reflect.DeepEqual(res.Graph.Edges, []Edge{{Source: "a", Target: "b"}}) {
		t.Errorf("edges = %+v", res.Graph.Edges)
	}
	if len(res.Graph.Nodes) != 2 {
		t.Errorf("nodes = %+v", res.Graph.Nodes)
	}
}

func TestBuild_CaseInsensitiveTitle(t *testing.T) {
	notes := []models.Note{
		{ID: "1", Title: "Project Plan", Content: "x"},
		{ID: "2", Title: "Log", Content: "see [[project plan]]"},
	}
	if got := Build(notes).Backlinks["1"]; len(got) != 1 || got[0].SourceID != "2" {
		t.Errorf("backlinks = %+v", got)
	}
}

func TestBuild_ExplicitLink(t *testing.T) {
	notes := []models.Note{
		{ID: "10", Title: "Target", Content: ""},
		{ID: "11", Title: "Source", Content: "[whatever](app://note/10)"},
	}
	got := Build(notes).Backlinks["10"]
	if len(got) != 1 || got[0].Type != links.ExplicitID || got[0].SourceID != "11" {
		t.Errorf("backlinks = %+v", got)
	}
}

func TestBuild_SkipsUnresolvedAndSelf(t *testing.T) {
	notes := []models.Note{
		{ID: "1", Title: "Self", Content: "[[Self]] [[Missing]] [x](app://note/404) [y](app://note/1)"},
	}
	res := Build(notes)
	if len(res.Backlinks) != 0 {
		t.Errorf("backlinks = %+v, want none", res.Backlinks)
	}
	if len(res.Graph.Edges) != 0 {
		t.Errorf("edges = %+v, want none", res.Graph.Edges)
	}
}

func TestBuild_DuplicateEdgesSuppressed(t *testing.T) {
	notes := []models.Note{
		{ID: "a", Title: "A", Content: "[[B]] and again [[b]] and [B](app://note/b)"},
		{ID: "b", Title: "B"},
	}
	res := Build(notes)
	if len(res.Graph.Edges) != 1 {
		t.Errorf("edges = %+v, want 1", res.Graph.Edges)
	}
	if len(res.Backlinks["b"]) != 3 {
		t.Errorf("backlink entries = %d, want 3", len(res.Backlinks["b"]))
	}
}

func TestBuild_ScanOrder(t *testing.T) {
	notes := []models.Note{
		{ID: "t", Title: "T"},
		{ID: "s1", Title: "S1", Content: "[[T]]"},
		{ID: "s2", Title: "S2", Content: "[[T]]"},
	}
	bl := Build(notes).Backlinks["t"]
	if len(bl) != 2 || bl[0].SourceID != "s1" || bl[1].SourceID != "s2" {
		t.Errorf("backlinks = %+v", bl)
	}
}

func TestBuild_FirstTitleWins(t *testing.T) {
	notes := []models.Note{
		{ID: "first", Title: "Dup"},
		{ID: "second", Title: "dup"},
		{ID: "src", Title: "Src", Content: "[[Dup]]"},
	}
	res := Build(notes)
	if len(res.Backlinks["first"]) != 1 || len(res.Backlinks["second"]) != 0 {
		t.Errorf("backlinks = %+v", res.Backlinks)
	}
}

func TestBuild_Empty(t *testing.T) {
	res := Build(nil)
	if res.Backlinks == nil || res.Graph.Nodes == nil || res.Graph.Edges == nil {
		t.Errorf("result should have non-nil containers: %+v", res)
	}
}

func TestOutbound(t *testing.T) {
	notes := []models.Note{
		{ID: "a", Title: "A", Content: "[[B]] [[C]] [[B]] [[A]] [[Nope]]"},
		{ID: "b", Title: "B"},
		{ID: "c", Title: "C"},
	}
	got := Outbound(notes[0], notes)
	if !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("outbound = %v", got)
	}
}
