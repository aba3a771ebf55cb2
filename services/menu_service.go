package services

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"

	"tableorder/models"
)

type MenuRepository interface {
	FindByID(ctx context.Context, id string) (models.ShopMenu, error)
	Create(ctx context.Context, menu models.ShopMenu) (models.ShopMenu, error)
	Update(ctx context.Context, id string, mutate func(*models.ShopMenu) error) (models.ShopMenu, error)
}

type MenuService struct {
	repo MenuRepository
}

func NewMenuService(repo MenuRepository) *MenuService {
	return &MenuService{repo: repo}
}

func menuNotFound(shopID string, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		var nf *models.NotFoundError
		if errors.As(err, &nf) {
			return err
		}
		return &models.NotFoundError{Entity: "menu", ID: shopID}
	}
	return err
}

func (s *MenuService) Get(ctx context.Context, shopID string) (models.ShopMenu, error) {
	menu, err := s.repo.FindByID(ctx, shopID)
	return menu, menuNotFound(shopID, err)
}

// Replace stores the whole menu of a shop, creating it when absent. Items
// and categories without an id get a fresh one.
func (s *MenuService) Replace(ctx context.Context, shopID string, menu models.ShopMenu) (models.ShopMenu, error) {
	for _, item := range menu.Items {
		if err := validateMenuItem(item); err != nil {
			return models.ShopMenu{}, err
		}
	}
	menu.ID = shopID
	menu.ShopID = shopID
	for i := range menu.Items {
		if menu.Items[i].ID == "" {
			menu.Items[i].ID = uuid.NewString()
		}
		if menu.Items[i].CategoryIDs == nil {
			menu.Items[i].CategoryIDs = []string{}
		}
	}
	for i := range menu.Categories {
		if menu.Categories[i].ID == "" {
			menu.Categories[i].ID = uuid.NewString()
		}
	}
	if menu.Items == nil {
		menu.Items = []models.MenuItem{}
	}
	if menu.Categories == nil {
		menu.Categories = []models.Category{}
	}
	return s.repo.Create(ctx, menu)
}

func (s *MenuService) SetPublished(ctx context.Context, shopID string, published bool) (models.ShopMenu, error) {
	menu, err := s.repo.Update(ctx, shopID, func(m *models.ShopMenu) error {
		m.IsPublished = published
		return nil
	})
	return menu, menuNotFound(shopID, err)
}

func (s *MenuService) AddItem(ctx context.Context, shopID string, item models.MenuItem) (models.ShopMenu, error) {
	if err := validateMenuItem(item); err != nil {
		return models.ShopMenu{}, err
	}
	item.ID = uuid.NewString()
	if item.CategoryIDs == nil {
		item.CategoryIDs = []string{}
	}
	menu, err := s.repo.Update(ctx, shopID, func(m *models.ShopMenu) error {
		m.Items = append(slices.Clone(m.Items), item)
		return nil
	})
	return menu, menuNotFound(shopID, err)
}

func (s *MenuService) RemoveItem(ctx context.Context, shopID, itemID string) (models.ShopMenu, error) {
	menu, err := s.repo.Update(ctx, shopID, func(m *models.ShopMenu) error {
		i := slices.IndexFunc(m.Items, func(it models.MenuItem) bool { return it.ID == itemID })
		if i < 0 {
			return &models.NotFoundError{Entity: "menu item", ID: itemID}
		}
		m.Items = slices.Delete(slices.Clone(m.Items), i, i+1)
		return nil
	})
	return menu, menuNotFound(shopID, err)
}
