// Package storage defines the vault file-system abstraction. It owns the
// atomicity of writes; everything above it works on in-memory note text.
package storage

import "github.com/starford/ansuz/internal/models"

// Provider is the interface for vault file operations.
type Provider interface {
	// List returns info for every .md file under dir (relative to vault root).
	List(dir string) ([]models.NoteInfo, error)
	// Read returns the raw bytes of the file at path (relative to vault root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to vault root).
	Write(path string, content []byte) error
}
