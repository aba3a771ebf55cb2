package models

type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder,omitempty"`
	IsActive  bool   `json:"isActive"`
}

type Stock struct {
	Quantity          int  `json:"quantity"`
	IsAvailable       bool `json:"isAvailable"`
	LowStockThreshold *int `json:"lowStockThreshold,omitempty"`
}

// TimeSlot uses "HH:mm" clock strings; Days holds weekdays, 0 is Sunday.
type TimeSlot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Days      []int  `json:"days,omitempty"`
}

type Availability struct {
	TimeSlots         []TimeSlot `json:"timeSlots,omitempty"`
	IsAlwaysAvailable *bool      `json:"isAlwaysAvailable,omitempty"`
}

// Sku 规格
type Sku struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Price        *int64        `json:"price,omitempty"`
	Image        string        `json:"image,omitempty"`
	Stock        *Stock        `json:"stock,omitempty"`
	Availability *Availability `json:"availability,omitempty"`
}

type MenuItem struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Price        int64         `json:"price"`
	CategoryIDs  []string      `json:"categoryIds"`
	Image        string        `json:"image,omitempty"`
	Stock        *Stock        `json:"stock,omitempty"`
	Availability *Availability `json:"availability,omitempty"`
	Skus         []Sku         `json:"skus,omitempty"`
}

// ShopMenu is keyed by its shop: ID always equals ShopID.
type ShopMenu struct {
	ID          string     `json:"id"`
	ShopID      string     `json:"shopId"`
	BrandName   string     `json:"brandName"`
	Categories  []Category `json:"categories"`
	Items       []MenuItem `json:"items"`
	IsPublished bool       `json:"isPublished"`
}

func (m ShopMenu) GetID() string { return m.ID }
