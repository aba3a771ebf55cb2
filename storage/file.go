package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"tableorder/models"
)

// FileDriver keeps each collection as a JSON array in <dir>/<collection>.json.
// Every operation reads the whole file and every write rewrites it.
type FileDriver struct {
	dir string
}

func NewFileDriver(dir string) (*FileDriver, error) {
	if err := os.MkdirAll(filepath.Clean(dir), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &FileDriver{dir: filepath.Clean(dir)}, nil
}

type docID struct {
	ID string `json:"id"`
}

func (f *FileDriver) path(collection string) string {
	return filepath.Join(f.dir, collection+".json")
}

func (f *FileDriver) read(collection string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(f.path(collection))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return docs, nil
}

func (f *FileDriver) write(collection string, docs []json.RawMessage) error {
	if docs == nil {
		docs = []json.RawMessage{}
	}
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	tmp, err := os.CreateTemp(f.dir, collection+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close: %w", err)
	}
	return os.Rename(tmp.Name(), f.path(collection))
}

func indexOf(docs []json.RawMessage, id string) (int, error) {
	for i, doc := range docs {
		var d docID
		if err := json.Unmarshal(doc, &d); err != nil {
			return -1, err
		}
		if d.ID == id {
			return i, nil
		}
	}
	return -1, nil
}

func (f *FileDriver) List(_ context.Context, collection string) ([][]byte, error) {
	docs, err := f.read(collection)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(docs))
	for i, doc := range docs {
		out[i] = doc
	}
	return out, nil
}

func (f *FileDriver) Get(_ context.Context, collection, id string) ([]byte, error) {
	docs, err := f.read(collection)
	if err != nil {
		return nil, err
	}
	i, err := indexOf(docs, id)
	if err != nil {
		return nil, err
	}
	if i < 0 {
		return nil, models.ErrNotFound
	}
	return docs[i], nil
}

// Put replaces the document in place or appends it.
func (f *FileDriver) Put(_ context.Context, collection, id string, doc []byte) error {
	docs, err := f.read(collection)
	if err != nil {
		return err
	}
	i, err := indexOf(docs, id)
	if err != nil {
		return err
	}
	if i < 0 {
		docs = append(docs, json.RawMessage(doc))
	} else {
		docs[i] = json.RawMessage(doc)
	}
	return f.write(collection, docs)
}

func (f *FileDriver) Delete(_ context.Context, collection, id string) error {
	docs, err := f.read(collection)
	if err != nil {
		return err
	}
	i, err := indexOf(docs, id)
	if err != nil {
		return err
	}
	if i < 0 {
		return nil
	}
	return f.write(collection, append(docs[:i], docs[i+1:]...))
}

func (f *FileDriver) Close() error { return nil }
