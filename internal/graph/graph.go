// Package graph builds the backlink index and node/edge view of a note
// collection from the links found in each note.
package graph

import (
	"strings"

	"github.com/starford/notekit/internal/links"
	"github.com/starford/notekit/internal/models"
	"github.com/starford/notekit/internal/orderedset"
)

// BacklinkEntry is one inbound link to a note.
type BacklinkEntry struct {
	SourceID    string     `json:"source_id"`
	SourceTitle string     `json:"source_title"`
	LinkText    string     `json:"link_text"`
	Type        links.Type `json:"type"`
}

// Node is a note in the graph view.
type Node struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Folder string `json:"folder,omitempty"`
}

// Edge is a directed link between two notes.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the node/edge view of the collection.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Result holds everything Build derives.
type Result struct {
	// Backlinks maps a target note id to its inbound links in scan order.
	// Notes with no inbound links have no entry.
	Backlinks map[string][]BacklinkEntry
	Graph     Graph
}

// Build scans every note's links and inverts them.
//
// Wiki links resolve through a case-insensitive title lookup; when titles
// collide the earliest note wins. Unresolvable wiki links, explicit links to
// unknown ids and self-links are skipped. Repeated source→target pairs
// produce one edge but one backlink entry per occurrence.
func Build(notes []models.Note) Result {
	lk := newLookup(notes)
	nodes := make([]Node, 0, len(notes))
	for _, n := range notes {
		nodes = append(nodes, Node{ID: n.ID, Title: n.Title, Folder: n.Folder})
	}

	res := Result{
		Backlinks: make(map[string][]BacklinkEntry),
		Graph:     Graph{Nodes: nodes, Edges: make([]Edge, 0)},
	}
	seenEdges := orderedset.New()

	for _, n := range notes {
		for _, l := range links.Extract(n.Content) {
			target, ok := lk.resolve(l)
			if !ok || target == n.ID {
				continue
			}
			res.Backlinks[target] = append(res.Backlinks[target], BacklinkEntry{
				SourceID:    n.ID,
				SourceTitle: n.Title,
				LinkText:    l.RawText,
				Type:        l.Type,
			})
			if seenEdges.Add(n.ID + "\x00" + target) {
				res.Graph.Edges = append(res.Graph.Edges, Edge{Source: n.ID, Target: target})
			}
		}
	}
	return res
}

// Outbound returns the resolved targets of a single note's links in order,
// using the same rules as Build. The caller supplies the full collection for
// title lookup.
func Outbound(note models.Note, notes []models.Note) []string {
	lk := newLookup(notes)
	out := orderedset.New()
	for _, l := range links.Extract(note.Content) {
		if target, ok := lk.resolve(l); ok && target != note.ID {
			out.Add(target)
		}
	}
	return out.Values()
}

// lookup resolves link descriptors to note ids.
type lookup struct {
	byTitle map[string]string
	known   map[string]struct{}
}

func newLookup(notes []models.Note) lookup {
	lk := lookup{
		byTitle: make(map[string]string, len(notes)),
		known:   make(map[string]struct{}, len(notes)),
	}
	for _, n := range notes {
		lk.known[n.ID] = struct{}{}
		key := titleKey(n.Title)
		if _, dup := lk.byTitle[key]; !dup {
			lk.byTitle[key] = n.ID
		}
	}
	return lk
}

func (lk lookup) resolve(l links.Descriptor) (string, bool) {
	if l.Type == links.ExplicitID {
		_, ok := lk.known[l.ID]
		return l.ID, ok
	}
	id, ok := lk.byTitle[titleKey(l.Title)]
	return id, ok
}

func titleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
