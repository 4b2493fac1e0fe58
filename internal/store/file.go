package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend stores every collection in one JSON document on disk, keyed by
// collection name. The file is rewritten atomically on each Put.
type FileBackend struct {
	path string
	mu   sync.Mutex
}

// NewFileBackend creates a backend persisting to path. The file is created on
// the first write.
func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, NewStoreError("NewFileBackend", "", errors.New("empty file path"))
	}
	return &FileBackend{path: path}, nil
}

// Path returns the file the backend writes to.
func (f *FileBackend) Path() string {
	return f.path
}

func (f *FileBackend) Get(ctx context.Context, name string) ([]Record, bool, error) {
	const op = "Get"

	if err := ctx.Err(); err != nil {
		return nil, false, NewStoreError(op, name, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.readDocument()
	if err != nil {
		return nil, false, NewStoreError(op, name, err)
	}

	raw, ok := doc[name]
	if !ok {
		return nil, false, nil
	}
	records, err := DecodeRecords(raw)
	if err != nil {
		return nil, false, NewStoreError(op, name, err)
	}
	return records, true, nil
}

func (f *FileBackend) Put(ctx context.Context, name string, records []Record) error {
	const op = "Put"

	if err := ctx.Err(); err != nil {
		return NewStoreError(op, name, err)
	}
	if records == nil {
		records = []Record{}
	}

	encoded, err := json.Marshal(records)
	if err != nil {
		return NewStoreError(op, name, fmt.Errorf("failed to encode records: %w", err))
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.readDocument()
	if err != nil {
		return NewStoreError(op, name, err)
	}
	doc[name] = encoded

	if err := f.writeDocument(doc); err != nil {
		return NewStoreError(op, name, err)
	}
	return nil
}

// readDocument loads the whole file. A missing file is an empty document.
func (f *FileBackend) readDocument() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	return doc, nil
}

func (f *FileBackend) writeDocument(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}
