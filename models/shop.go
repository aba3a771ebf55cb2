package models

type Shop struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt int64  `json:"createdAt"`
}

func (s Shop) GetID() string { return s.ID }

type Table struct {
	ID      string `json:"id"`
	ShopID  string `json:"shopId"`
	TableNo string `json:"tableNo"`
}

func (t Table) GetID() string { return t.ID }

type CreateShopInput struct {
	Name    string `json:"name" binding:"required"`
	OwnerID string `json:"ownerId"`
}

type UpdateShopInput struct {
	Name    *string `json:"name"`
	OwnerID *string `json:"ownerId"`
}
