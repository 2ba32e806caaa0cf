// Package storage defines the repository directory abstraction the bookmark
// file lives in.
package storage

// Provider is the interface for repository file operations.
type Provider interface {
	// Root returns the absolute path of the repository directory.
	Root() string
	// Read returns the raw bytes of the file at path (relative to the root).
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path (relative to the root).
	Write(path string, content []byte) error
	// Exists reports whether path (relative to the root) is present.
	Exists(path string) (bool, error)
}
