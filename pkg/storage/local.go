package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// LocalInbox implements Inbox over a directory on the local filesystem.
type LocalInbox struct {
	basePath string
}

// NewLocalInbox creates basePath if needed.
func NewLocalInbox(basePath string) (*LocalInbox, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create inbox directory: %w", err)
	}
	return &LocalInbox{basePath: basePath}, nil
}

// Path returns the inbox directory.
func (s *LocalInbox) Path() string {
	return s.basePath
}

// List returns the *.csv and *.xlsx files directly inside the directory.
func (s *LocalInbox) List(ctx context.Context) ([]FileInfo, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read inbox: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsStatement(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // removed between ReadDir and Info
		}
		files = append(files, FileInfo{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Read returns the contents of name.
func (s *LocalInbox) Read(ctx context.Context, name string) ([]byte, error) {
	safe := sanitizeFilename(name)
	if safe == "" {
		return nil, ErrInvalidName
	}

	data, err := os.ReadFile(filepath.Join(s.basePath, safe))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, safe)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", safe, err)
	}
	return data, nil
}

// Put writes r to a temporary file and renames it into place, so a
// concurrent scan never sees a partial statement.
func (s *LocalInbox) Put(ctx context.Context, name string, r io.Reader) (*FileInfo, error) {
	safe := sanitizeFilename(name)
	if safe == "" {
		return nil, ErrInvalidName
	}

	tmp, err := os.CreateTemp(s.basePath, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	dest := filepath.Join(s.basePath, safe)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return &FileInfo{Name: safe, Size: size, ModTime: info.ModTime()}, nil
}
