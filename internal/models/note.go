// Package models defines the domain types shared across Ansuz layers.
package models

import "time"

// NoteInfo is a lightweight representation of a vault file returned by
// list operations.
type NoteInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Field is one metadata value occurrence in a note: the store it lives in,
// its key, one value, and the value's position within the key's sequence.
// A declared key with no values is represented by a single Field with an
// empty Value and Pos -1, so "declared empty" survives indexing.
type Field struct {
	Kind  string `json:"kind"` // "frontmatter" or "inline"
	Key   string `json:"key"`
	Value string `json:"value"`
	Pos   int    `json:"pos"`
}
