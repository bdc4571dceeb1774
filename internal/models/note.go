// Package models defines the domain types for Notekit.
package models

import "time"

// Note is a single note in the vault. Search, link and analytics code treat
// it as read-only input.
type Note struct {
	ID       string    `json:"id"`
	Path     string    `json:"path,omitempty"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Folder   string    `json:"folder,omitempty"`
	Tags     []string  `json:"tags"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
	Servings *float64  `json:"servings,omitempty"` // recipe notes only
	Checksum string    `json:"checksum,omitempty"`
}

// NoteMetadata is a lightweight representation returned by storage listings.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
