package transactions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// JSONFileRepository persists state as two JSON documents named after
// StorageKey and CategoriesKey inside a directory.
type JSONFileRepository struct {
	dir string
	mu  sync.Mutex
}

// NewJSONFileRepository creates dir when missing.
func NewJSONFileRepository(dir string) (*JSONFileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &JSONFileRepository{dir: dir}, nil
}

// Load reads both documents; missing files yield empty lists.
func (r *JSONFileRepository) Load(ctx context.Context) (*State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := &State{Transactions: []Transaction{}}
	if err := r.readKey(StorageKey, &state.Transactions); err != nil {
		return nil, err
	}
	if err := r.readKey(CategoriesKey, &state.Categories); err != nil {
		return nil, err
	}
	return state, nil
}

// Save writes both documents, each through a temp file and rename.
func (r *JSONFileRepository) Save(ctx context.Context, state State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state.Transactions == nil {
		state.Transactions = []Transaction{}
	}
	if err := r.writeKey(StorageKey, state.Transactions); err != nil {
		return err
	}
	return r.writeKey(CategoriesKey, state.Categories)
}

func (r *JSONFileRepository) path(key string) string {
	return filepath.Join(r.dir, key+".json")
}

func (r *JSONFileRepository) readKey(key string, v any) error {
	data, err := os.ReadFile(r.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (r *JSONFileRepository) writeKey(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(r.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), r.path(key)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}
