// Package analytics aggregates corpus-wide statistics over a note
// collection in a single pass.
package analytics

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/starford/notekit/internal/models"
)

const (
	// Uncategorized is the folder bucket for notes without a folder.
	Uncategorized = "Uncategorized"

	dayLayout   = "2006-01-02"
	topTagCount = 10
	maxStreak   = 365
)

// FolderStats aggregates the notes of one folder.
type FolderStats struct {
	Count int `json:"count"`
	Words int `json:"words"`
}

// TagCount is a tag with the number of notes carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// FolderCount is a folder with its aggregate stats.
type FolderCount struct {
	Folder string `json:"folder"`
	FolderStats
}

// NoteRef identifies a note referenced by a snapshot.
type NoteRef struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Words int       `json:"words"`
	At    time.Time `json:"at"`
}

// Snapshot is the full set of derived statistics.
type Snapshot struct {
	TotalNotes      int                    `json:"total_notes"`
	TotalWords      int                    `json:"total_words"`
	TotalCharacters int                    `json:"total_characters"`
	AverageWords    float64                `json:"average_words"`
	Folders         map[string]FolderStats `json:"folders"`
	Tags            map[string]int         `json:"tags"`
	Oldest          *NoteRef               `json:"oldest,omitempty"`
	Newest          *NoteRef               `json:"newest,omitempty"`
	Longest         *NoteRef               `json:"longest,omitempty"`
	Shortest        *NoteRef               `json:"shortest,omitempty"`
	ModifiedLast7   int                    `json:"modified_last_7_days"`
	ModifiedLast30  int                    `json:"modified_last_30_days"`
	Activity        map[string]int         `json:"activity"`
	TopTags         []TagCount             `json:"top_tags"`
	TopFolders      []FolderCount          `json:"top_folders"`
	Streak          int                    `json:"streak"`
}

// WordCount counts whitespace-delimited tokens.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Compute derives a Snapshot from notes. now anchors the recency windows and
// the writing streak; day keys use now's location.
func Compute(notes []models.Note, now time.Time) Snapshot {
	snap := Snapshot{
		Folders:    make(map[string]FolderStats),
		Tags:       make(map[string]int),
		Activity:   make(map[string]int),
		TopTags:    []TagCount{},
		TopFolders: []FolderCount{},
	}
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	for _, n := range notes {
		words := WordCount(n.Content)
		snap.TotalNotes++
		snap.TotalWords += words
		snap.TotalCharacters += utf8.RuneCountInString(n.Content)

		folder := n.Folder
		if folder == "" {
			folder = Uncategorized
		}
		fs := snap.Folders[folder]
		fs.Count++
		fs.Words += words
		snap.Folders[folder] = fs

		seen := make(map[string]struct{}, len(n.Tags))
		for _, tag := range n.Tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			snap.Tags[tag]++
		}

		if snap.Oldest == nil || n.Created.Before(snap.Oldest.At) {
			snap.Oldest = &NoteRef{ID: n.ID, Title: n.Title, Words: words, At: n.Created}
		}
		if snap.Newest == nil || n.Modified.After(snap.Newest.At) {
			snap.Newest = &NoteRef{ID: n.ID, Title: n.Title, Words: words, At: n.Modified}
		}
		if snap.Longest == nil || words > snap.Longest.Words {
			snap.Longest = &NoteRef{ID: n.ID, Title: n.Title, Words: words, At: n.Modified}
		}
		if words > 0 && (snap.Shortest == nil || words < snap.Shortest.Words) {
			snap.Shortest = &NoteRef{ID: n.ID, Title: n.Title, Words: words, At: n.Modified}
		}

		if n.Modified.After(weekAgo) {
			snap.ModifiedLast7++
		}
		if n.Modified.After(monthAgo) {
			snap.ModifiedLast30++
		}
		snap.Activity[n.Modified.In(now.Location()).Format(dayLayout)]++
	}

	if snap.TotalNotes > 0 {
		snap.AverageWords = float64(snap.TotalWords) / float64(snap.TotalNotes)
	}
	snap.TopTags = topTags(snap.Tags, topTagCount)
	snap.TopFolders = topFolders(snap.Folders)
	snap.Streak = Streak(snap.Activity, now)
	return snap
}

// Streak counts consecutive active days ending today, or ending yesterday
// when today has no activity yet. It is 0 when neither day is active and
// never exceeds 365.
func Streak(activity map[string]int, now time.Time) int {
	y, m, d := now.Date()
	day := func(offset int) string {
		return time.Date(y, m, d-offset, 12, 0, 0, 0, now.Location()).Format(dayLayout)
	}

	start := 0
	if activity[day(0)] == 0 {
		if activity[day(1)] == 0 {
			return 0
		}
		start = 1
	}

	streak := 0
	for i := start; i < start+maxStreak; i++ {
		if activity[day(i)] == 0 {
			break
		}
		streak++
	}
	return streak
}

func topTags(tags map[string]int, n int) []TagCount {
	out := make([]TagCount, 0, len(tags))
	for tag, c := range tags {
		out = append(out, TagCount{Tag: tag, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func topFolders(folders map[string]FolderStats) []FolderCount {
	out := make([]FolderCount, 0, len(folders))
	for name, fs := range folders {
		out = append(out, FolderCount{Folder: name, FolderStats: fs})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Folder < out[j].Folder
	})
	return out
}
