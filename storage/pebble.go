package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"tableorder/models"
)

// PebbleDriver stores one key per document: "<collection>/<id>".
type PebbleDriver struct {
	db *pebble.DB
}

func NewPebbleDriver(dir string) (*PebbleDriver, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleDriver{db: db}, nil
}

func pebbleKey(collection, id string) []byte {
	return []byte(collection + "/" + id)
}

// prefixBounds returns the [lower, upper) key range of a collection.
func prefixBounds(collection string) ([]byte, []byte) {
	lower := []byte(collection + "/")
	upper := []byte(collection + "0") // '0' sorts right after '/'
	return lower, upper
}

func (p *PebbleDriver) List(_ context.Context, collection string) ([][]byte, error) {
	lower, upper := prefixBounds(collection)
	it, err := p.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, fmt.Errorf("pebble iter: %w", err)
	}
	defer it.Close()

	var out [][]byte
	for it.First(); it.Valid(); it.Next() {
		out = append(out, append([]byte(nil), it.Value()...))
	}
	return out, it.Error()
}

func (p *PebbleDriver) Get(_ context.Context, collection, id string) ([]byte, error) {
	v, closer, err := p.db.Get(pebbleKey(collection, id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pebble get: %w", err)
	}
	defer closer.Close()
	return append([]byte(nil), v...), nil
}

func (p *PebbleDriver) Put(_ context.Context, collection, id string, doc []byte) error {
	return p.db.Set(pebbleKey(collection, id), doc, pebble.Sync)
}

func (p *PebbleDriver) Delete(_ context.Context, collection, id string) error {
	return p.db.Delete(pebbleKey(collection, id), pebble.Sync)
}

func (p *PebbleDriver) Close() error { return p.db.Close() }
