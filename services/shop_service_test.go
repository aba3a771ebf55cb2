package services

import (
	"context"
	"errors"
	"testing"

	"tableorder/models"
	"tableorder/storage"
)

type shopFixture struct {
	shops *ShopService
	menus *MenuService
}

func newShopFixture(t *testing.T) shopFixture {
	t.Helper()
	driver, err := storage.NewFileDriver(t.TempDir())
	if err != nil {
		t.Fatalf("file driver: %v", err)
	}
	menus := storage.NewCollection[models.ShopMenu](driver, storage.CollectionMenus)
	return shopFixture{
		shops: NewShopService(
			storage.NewCollection[models.Shop](driver, storage.CollectionShops),
			storage.NewCollection[models.Table](driver, storage.CollectionTables),
			menus,
		),
		menus: NewMenuService(menus),
	}
}

func TestShopService_CRUD(t *testing.T) {
	ctx := context.Background()
	f := newShopFixture(t)

	if _, err := f.shops.Create(ctx, models.CreateShopInput{Name: "  "}); err == nil {
		t.Fatalf("blank name accepted")
	}
	shop, err := f.shops.Create(ctx, models.CreateShopInput{Name: " Noodle Bar "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if shop.Name != "Noodle Bar" || shop.OwnerID != "anonymous" || shop.CreatedAt == 0 {
		t.Fatalf("unexpected shop: %+v", shop)
	}

	name := "Noodle House"
	updated, err := f.shops.Update(ctx, shop.ID, models.UpdateShopInput{Name: &name})
	if err != nil || updated.Name != name || updated.OwnerID != "anonymous" {
		t.Fatalf("update: %+v %v", updated, err)
	}

	_, err = f.shops.Update(ctx, "missing", models.UpdateShopInput{Name: &name})
	var nf *models.NotFoundError
	if !errors.As(err, &nf) || nf.Entity != "shop" {
		t.Fatalf("expected shop NotFoundError, got %v", err)
	}

	list, _ := f.shops.List(ctx)
	if len(list) != 1 {
		t.Fatalf("list = %d, want 1", len(list))
	}
}

func TestShopService_Tables(t *testing.T) {
	ctx := context.Background()
	f := newShopFixture(t)
	shop, _ := f.shops.Create(ctx, models.CreateShopInput{Name: "Noodle Bar"})

	if _, err := f.shops.ReplaceTables(ctx, shop.ID, []string{"A1", "A1"}); err == nil {
		t.Fatalf("duplicate table numbers accepted")
	}
	if _, err := f.shops.ReplaceTables(ctx, shop.ID, []string{"A1", "A2"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	tables, err := f.shops.ReplaceTables(ctx, shop.ID, []string{"B1"})
	if err != nil || len(tables) != 1 {
		t.Fatalf("second replace: %v %v", tables, err)
	}
	all, _ := f.shops.Tables(ctx, shop.ID)
	if len(all) != 1 || all[0].TableNo != "B1" {
		t.Fatalf("old tables survived replace: %+v", all)
	}

	if _, err := f.shops.Table(ctx, shop.ID, "B1"); err != nil {
		t.Fatalf("table lookup: %v", err)
	}
	_, err = f.shops.Table(ctx, shop.ID, "A1")
	var nf *models.NotFoundError
	if !errors.As(err, &nf) || nf.Entity != "table" {
		t.Fatalf("expected table NotFoundError, got %v", err)
	}
	_, err = f.shops.Table(ctx, "missing", "B1")
	if !errors.As(err, &nf) || nf.Entity != "shop" {
		t.Fatalf("expected shop NotFoundError, got %v", err)
	}
}

func TestShopService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	f := newShopFixture(t)
	shop, _ := f.shops.Create(ctx, models.CreateShopInput{Name: "Noodle Bar"})
	f.shops.ReplaceTables(ctx, shop.ID, []string{"A1"})
	if _, err := f.menus.Replace(ctx, shop.ID, models.ShopMenu{BrandName: "Noodle Bar"}); err != nil {
		t.Fatalf("menu: %v", err)
	}

	if err := f.shops.Delete(ctx, shop.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	err := f.shops.Delete(ctx, shop.ID)
	var nf *models.NotFoundError
	if !errors.As(err, &nf) || nf.Entity != "shop" {
		t.Fatalf("second delete: expected shop NotFoundError, got %v", err)
	}
	if _, err := f.shops.Get(ctx, shop.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("shop survived delete: %v", err)
	}
	if _, err := f.menus.Get(ctx, shop.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("menu survived delete: %v", err)
	}
	if tables, _ := f.shops.Tables(ctx, shop.ID); len(tables) != 0 {
		t.Fatalf("tables survived delete: %+v", tables)
	}
}

func TestMenuService(t *testing.T) {
	ctx := context.Background()
	f := newShopFixture(t)

	_, err := f.menus.AddItem(ctx, "shop-1", models.MenuItem{Name: "dumplings", Price: 80})
	var nf *models.NotFoundError
	if !errors.As(err, &nf) || nf.Entity != "menu" {
		t.Fatalf("expected menu NotFoundError, got %v", err)
	}

	menu, err := f.menus.Replace(ctx, "shop-1", models.ShopMenu{
		BrandName:  "Noodle Bar",
		Categories: []models.Category{{Name: "noodles", IsActive: true}},
		Items:      []models.MenuItem{{Name: "beef noodles", Price: 150}},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if menu.ID != "shop-1" || menu.Items[0].ID == "" || menu.Categories[0].ID == "" {
		t.Fatalf("ids not assigned: %+v", menu)
	}

	menu, err = f.menus.AddItem(ctx, "shop-1", models.MenuItem{Name: "dumplings", Price: 80})
	if err != nil || len(menu.Items) != 2 {
		t.Fatalf("add item: %+v %v", menu, err)
	}
	if _, err := f.menus.AddItem(ctx, "shop-1", models.MenuItem{Price: 80}); err == nil {
		t.Fatalf("nameless item accepted")
	}

	menu, err = f.menus.RemoveItem(ctx, "shop-1", menu.Items[0].ID)
	if err != nil || len(menu.Items) != 1 || menu.Items[0].Name != "dumplings" {
		t.Fatalf("remove item: %+v %v", menu, err)
	}
	_, err = f.menus.RemoveItem(ctx, "shop-1", "nope")
	if !errors.As(err, &nf) || nf.Entity != "menu item" {
		t.Fatalf("expected menu item NotFoundError, got %v", err)
	}

	menu, err = f.menus.SetPublished(ctx, "shop-1", true)
	if err != nil || !menu.IsPublished {
		t.Fatalf("publish: %+v %v", menu, err)
	}
}
