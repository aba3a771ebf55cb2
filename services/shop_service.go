package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tableorder/models"
)

type ShopRepository interface {
	FindAll(ctx context.Context) ([]models.Shop, error)
	FindByID(ctx context.Context, id string) (models.Shop, error)
	Create(ctx context.Context, shop models.Shop) (models.Shop, error)
	Update(ctx context.Context, id string, mutate func(*models.Shop) error) (models.Shop, error)
	Delete(ctx context.Context, id string) error
}

type TableRepository interface {
	FindWhere(ctx context.Context, match func(models.Table) bool) ([]models.Table, error)
	Create(ctx context.Context, t models.Table) (models.Table, error)
	DeleteWhere(ctx context.Context, match func(models.Table) bool) error
}

// MenuRemover is the part of the menu store a shop deletion needs.
type MenuRemover interface {
	Delete(ctx context.Context, id string) error
}

type ShopService struct {
	shops  ShopRepository
	tables TableRepository
	menus  MenuRemover
	now    func() time.Time
}

func NewShopService(shops ShopRepository, tables TableRepository, menus MenuRemover) *ShopService {
	return &ShopService{shops: shops, tables: tables, menus: menus, now: time.Now}
}

func (s *ShopService) List(ctx context.Context) ([]models.Shop, error) {
	return s.shops.FindAll(ctx)
}

func (s *ShopService) Get(ctx context.Context, id string) (models.Shop, error) {
	shop, err := s.shops.FindByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return models.Shop{}, &models.NotFoundError{Entity: "shop", ID: id}
	}
	return shop, err
}

func (s *ShopService) Create(ctx context.Context, in models.CreateShopInput) (models.Shop, error) {
	if err := required("name", in.Name); err != nil {
		return models.Shop{}, err
	}
	owner := strings.TrimSpace(in.OwnerID)
	if owner == "" {
		owner = "anonymous"
	}
	return s.shops.Create(ctx, models.Shop{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		OwnerID:   owner,
		CreatedAt: s.now().UnixMilli(),
	})
}

func (s *ShopService) Update(ctx context.Context, id string, in models.UpdateShopInput) (models.Shop, error) {
	if in.Name != nil {
		if err := required("name", *in.Name); err != nil {
			return models.Shop{}, err
		}
	}
	shop, err := s.shops.Update(ctx, id, func(sh *models.Shop) error {
		if in.Name != nil {
			sh.Name = strings.TrimSpace(*in.Name)
		}
		if in.OwnerID != nil {
			sh.OwnerID = *in.OwnerID
		}
		return nil
	})
	if errors.Is(err, models.ErrNotFound) {
		return models.Shop{}, &models.NotFoundError{Entity: "shop", ID: id}
	}
	return shop, err
}

// Delete removes the shop together with its menu and tables.
func (s *ShopService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.menus.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}
	if err := s.tables.DeleteWhere(ctx, func(t models.Table) bool { return t.ShopID == id }); err != nil {
		return fmt.Errorf("delete tables: %w", err)
	}
	return s.shops.Delete(ctx, id)
}

func (s *ShopService) Tables(ctx context.Context, shopID string) ([]models.Table, error) {
	return s.tables.FindWhere(ctx, func(t models.Table) bool { return t.ShopID == shopID })
}

// ReplaceTables drops every table of the shop and creates the given ones.
func (s *ShopService) ReplaceTables(ctx context.Context, shopID string, tableNos []string) ([]models.Table, error) {
	seen := make(map[string]bool, len(tableNos))
	for i, no := range tableNos {
		no = strings.TrimSpace(no)
		if no == "" {
			return nil, models.NewValidationError(fmt.Sprintf("tables[%d]", i), "table number is required")
		}
		if seen[no] {
			return nil, models.NewValidationError(fmt.Sprintf("tables[%d]", i), "duplicate table number "+no)
		}
		seen[no] = true
	}

	if err := s.tables.DeleteWhere(ctx, func(t models.Table) bool { return t.ShopID == shopID }); err != nil {
		return nil, fmt.Errorf("delete tables: %w", err)
	}
	out := make([]models.Table, 0, len(tableNos))
	for _, no := range tableNos {
		t, err := s.tables.Create(ctx, models.Table{ID: uuid.NewString(), ShopID: shopID, TableNo: strings.TrimSpace(no)})
		if err != nil {
			return nil, fmt.Errorf("create table: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Table finds one table of an existing shop.
func (s *ShopService) Table(ctx context.Context, shopID, tableNo string) (models.Table, error) {
	if _, err := s.Get(ctx, shopID); err != nil {
		return models.Table{}, err
	}
	tables, err := s.Tables(ctx, shopID)
	if err != nil {
		return models.Table{}, err
	}
	for _, t := range tables {
		if t.TableNo == tableNo {
			return t, nil
		}
	}
	return models.Table{}, &models.NotFoundError{Entity: "table", ID: tableNo}
}
