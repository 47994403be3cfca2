// Package storage provides the statement inbox: a place where statement files
// are dropped and later picked up by the folder scan.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a named file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidName is returned for names that are empty after sanitizing.
	ErrInvalidName = errors.New("invalid file name")
)

// StatementExtensions lists the file types the folder scan picks up.
var StatementExtensions = []string{".csv", ".xlsx"}

// FileInfo contains metadata about a stored statement.
type FileInfo struct {
	Name    string    `json:"nome"`
	Size    int64     `json:"tamanho"`
	ModTime time.Time `json:"modificado"`
}

// Inbox is a flat collection of statement files addressed by name.
type Inbox interface {
	// List returns the statement files, sorted by name.
	List(ctx context.Context) ([]FileInfo, error)

	// Read returns the full contents of a file.
	Read(ctx context.Context, name string) ([]byte, error)

	// Put stores r under name, replacing any file with the same name.
	Put(ctx context.Context, name string, r io.Reader) (*FileInfo, error)
}

// IsStatement reports whether name has a statement extension.
func IsStatement(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range StatementExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// sanitizeFilename keeps the base name and replaces characters that are
// unsafe in paths.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	name = replacer.Replace(name)
	if name == "." || name == "_" {
		return ""
	}
	return name
}
