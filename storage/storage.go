// Package storage persists aggregates as JSON documents grouped in named
// collections. Every write is last-write-wins; there is no locking and no
// transaction spanning more than one document.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"tableorder/models"
)

const (
	CollectionOrders       = "orders"
	CollectionReservations = "reservations"
	CollectionShops        = "shops"
	CollectionTables       = "tables"
	CollectionMenus        = "menus"
)

// Driver is the byte-level backend behind a Collection. Get returns
// models.ErrNotFound for a missing id. List returns documents in the
// backend's natural order.
type Driver interface {
	List(ctx context.Context, collection string) ([][]byte, error)
	Get(ctx context.Context, collection, id string) ([]byte, error)
	Put(ctx context.Context, collection, id string, doc []byte) error
	Delete(ctx context.Context, collection, id string) error
	Close() error
}

type Entity interface {
	GetID() string
}

// Collection is the typed repository the services talk to.
type Collection[T Entity] struct {
	driver Driver
	name   string
}

func NewCollection[T Entity](driver Driver, name string) *Collection[T] {
	return &Collection[T]{driver: driver, name: name}
}

func (c *Collection[T]) FindAll(ctx context.Context) ([]T, error) {
	docs, err := c.driver.List(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.name, err)
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := json.Unmarshal(doc, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.name, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// FindWhere loads the whole collection and keeps the matching documents.
func (c *Collection[T]) FindWhere(ctx context.Context, match func(T) bool) ([]T, error) {
	all, err := c.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, v := range all {
		if match(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (c *Collection[T]) FindByID(ctx context.Context, id string) (T, error) {
	var v T
	doc, err := c.driver.Get(ctx, c.name, id)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(doc, &v); err != nil {
		return v, fmt.Errorf("decode %s %s: %w", c.name, id, err)
	}
	return v, nil
}

func (c *Collection[T]) Create(ctx context.Context, v T) (T, error) {
	if err := c.put(ctx, v); err != nil {
		return v, err
	}
	return v, nil
}

// Update reads the document, applies mutate and writes the result back.
// Nothing is written when mutate fails.
func (c *Collection[T]) Update(ctx context.Context, id string, mutate func(*T) error) (T, error) {
	v, err := c.FindByID(ctx, id)
	if err != nil {
		return v, err
	}
	if err := mutate(&v); err != nil {
		return v, err
	}
	if err := c.put(ctx, v); err != nil {
		return v, err
	}
	return v, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.driver.Delete(ctx, c.name, id)
}

// DeleteWhere removes every document for which match is true.
func (c *Collection[T]) DeleteWhere(ctx context.Context, match func(T) bool) error {
	victims, err := c.FindWhere(ctx, match)
	if err != nil {
		return err
	}
	for _, v := range victims {
		if err := c.driver.Delete(ctx, c.name, v.GetID()); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collection[T]) put(ctx context.Context, v T) error {
	if v.GetID() == "" {
		return models.NewValidationError("id", "id is required")
	}
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}
	if err := c.driver.Put(ctx, c.name, v.GetID(), doc); err != nil {
		return fmt.Errorf("write %s %s: %w", c.name, v.GetID(), err)
	}
	return nil
}
