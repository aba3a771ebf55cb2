package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tableorder/models"
)

func driversUnderTest(t *testing.T) map[string]Driver {
	t.Helper()
	fileDriver, err := NewFileDriver(t.TempDir())
	if err != nil {
		t.Fatalf("file driver: %v", err)
	}
	pebbleDriver, err := NewPebbleDriver(t.TempDir())
	if err != nil {
		t.Fatalf("pebble driver: %v", err)
	}
	t.Cleanup(func() { _ = pebbleDriver.Close() })
	return map[string]Driver{"file": fileDriver, "pebble": pebbleDriver}
}

func TestCollection_CRUD(t *testing.T) {
	ctx := context.Background()
	for name, driver := range driversUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			shops := NewCollection[models.Shop](driver, CollectionShops)

			if _, err := shops.FindByID(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			for _, s := range []models.Shop{{ID: "a", Name: "Alpha"}, {ID: "b", Name: "Beta"}} {
				if _, err := shops.Create(ctx, s); err != nil {
					t.Fatalf("create %s: %v", s.ID, err)
				}
			}

			updated, err := shops.Update(ctx, "a", func(s *models.Shop) error {
				s.Name = "Alpha Noodles"
				return nil
			})
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			if updated.Name != "Alpha Noodles" {
				t.Fatalf("unexpected update result: %+v", updated)
			}

			got, err := shops.FindByID(ctx, "a")
			if err != nil || got.Name != "Alpha Noodles" {
				t.Fatalf("find after update: %+v %v", got, err)
			}

			all, err := shops.FindAll(ctx)
			if err != nil || len(all) != 2 {
				t.Fatalf("find all: %d %v", len(all), err)
			}

			if err := shops.Delete(ctx, "b"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := shops.Delete(ctx, "b"); err != nil {
				t.Fatalf("second delete should be a no-op: %v", err)
			}
			all, _ = shops.FindAll(ctx)
			if len(all) != 1 || all[0].ID != "a" {
				t.Fatalf("unexpected contents after delete: %+v", all)
			}
		})
	}
}

func TestCollection_UpdateFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	for name, driver := range driversUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			shops := NewCollection[models.Shop](driver, CollectionShops)
			if _, err := shops.Create(ctx, models.Shop{ID: "a", Name: "Alpha"}); err != nil {
				t.Fatalf("create: %v", err)
			}
			boom := errors.New("boom")
			_, err := shops.Update(ctx, "a", func(s *models.Shop) error {
				s.Name = "changed"
				return boom
			})
			if !errors.Is(err, boom) {
				t.Fatalf("expected mutate error, got %v", err)
			}
			got, _ := shops.FindByID(ctx, "a")
			if got.Name != "Alpha" {
				t.Fatalf("failed update leaked: %+v", got)
			}
			if _, err := shops.Update(ctx, "nope", func(*models.Shop) error { return nil }); !errors.Is(err, models.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestCollection_DeleteWhere(t *testing.T) {
	ctx := context.Background()
	for name, driver := range driversUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			tables := NewCollection[models.Table](driver, CollectionTables)
			for _, tb := range []models.Table{
				{ID: "1", ShopID: "s1", TableNo: "A1"},
				{ID: "2", ShopID: "s2", TableNo: "A1"},
				{ID: "3", ShopID: "s1", TableNo: "A2"},
			} {
				if _, err := tables.Create(ctx, tb); err != nil {
					t.Fatalf("create: %v", err)
				}
			}
			if err := tables.DeleteWhere(ctx, func(tb models.Table) bool { return tb.ShopID == "s1" }); err != nil {
				t.Fatalf("delete where: %v", err)
			}
			left, _ := tables.FindAll(ctx)
			if len(left) != 1 || left[0].ShopID != "s2" {
				t.Fatalf("unexpected remaining tables: %+v", left)
			}
		})
	}
}

func TestFileDriver_WritesJSONArray(t *testing.T) {
	dir := t.TempDir()
	driver, err := NewFileDriver(dir)
	if err != nil {
		t.Fatalf("file driver: %v", err)
	}
	shops := NewCollection[models.Shop](driver, CollectionShops)
	if _, err := shops.Create(context.Background(), models.Shop{ID: "a", Name: "Alpha"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "shops.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) == 0 || data[0] != '[' {
		t.Fatalf("expected a JSON array, got %q", data)
	}
}

func TestFileDriver_PreservesInsertionOrder(t *testing.T) {
	driver, err := NewFileDriver(t.TempDir())
	if err != nil {
		t.Fatalf("file driver: %v", err)
	}
	ctx := context.Background()
	shops := NewCollection[models.Shop](driver, CollectionShops)
	for _, id := range []string{"z", "a", "m"} {
		if _, err := shops.Create(ctx, models.Shop{ID: id}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	all, _ := shops.FindAll(ctx)
	if all[0].ID != "z" || all[1].ID != "a" || all[2].ID != "m" {
		t.Fatalf("order not preserved: %+v", all)
	}
}
