package models

import "slices"

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusNew    OrderStatus = "new"
	OrderStatusServed OrderStatus = "served"
	OrderStatusPaid   OrderStatus = "paid"
)

// AdjustmentType 折扣或附加费
type AdjustmentType string

const (
	AdjustmentDiscount  AdjustmentType = "discount"
	AdjustmentSurcharge AdjustmentType = "surcharge"
)

// ValueType 固定金额或百分比
type ValueType string

const (
	ValueFixed      ValueType = "fixed"
	ValuePercentage ValueType = "percentage"
)

// OrderItem is one line of an order. Price is in minor currency units.
type OrderItem struct {
	MenuItemID string `json:"menuItemId"`
	SkuID      string `json:"skuId,omitempty"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	Quantity   int    `json:"quantity"`
}

// AdjustmentSpec is the caller-supplied part of an adjustment.
type AdjustmentSpec struct {
	Name      string         `json:"name"`
	Type      AdjustmentType `json:"type"`
	ValueType ValueType      `json:"valueType"`
	Value     float64        `json:"value"`
}

// AdjustmentPatch carries the fields of a partial adjustment update.
type AdjustmentPatch struct {
	Name      *string         `json:"name,omitempty"`
	Type      *AdjustmentType `json:"type,omitempty"`
	ValueType *ValueType      `json:"valueType,omitempty"`
	Value     *float64        `json:"value,omitempty"`
}

// OrderAdjustment is a discount or surcharge applied to an order. Amount is
// derived from Type, ValueType, Value and the order subtotal and is never taken from input.
type OrderAdjustment struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Type      AdjustmentType `json:"type"`
	ValueType ValueType      `json:"valueType"`
	Value     float64        `json:"value"`
	Amount    int64          `json:"amount"`
}

func (a OrderAdjustment) Spec() AdjustmentSpec {
	return AdjustmentSpec{Name: a.Name, Type: a.Type, ValueType: a.ValueType, Value: a.Value}
}

type Order struct {
	ID          string            `json:"id"`
	ShopID      string            `json:"shopId"`
	TableNo     string            `json:"tableNo"`
	GuestID     string            `json:"guestId,omitempty"`
	GuestName   string            `json:"guestName,omitempty"`
	Items       []OrderItem       `json:"items"`
	Adjustments []OrderAdjustment `json:"adjustments"`
	Subtotal    int64             `json:"subtotal"`
	TotalPrice  int64             `json:"totalPrice"`
	Status      OrderStatus       `json:"status"`
	CreatedAt   int64             `json:"createdAt"`
}

func (o Order) GetID() string { return o.ID }

// Clone returns a copy that shares no slices with o.
func (o Order) Clone() Order {
	c := o
	c.Items = slices.Clone(o.Items)
	c.Adjustments = slices.Clone(o.Adjustments)
	if c.Adjustments == nil {
		c.Adjustments = []OrderAdjustment{}
	}
	return c
}

// CreateOrderInput 创建订单请求
type CreateOrderInput struct {
	ShopID      string           `json:"shopId"`
	TableNo     string           `json:"tableNo"`
	GuestID     string           `json:"guestId"`
	GuestName   string           `json:"guestName"`
	Items       []OrderItem      `json:"items"`
	Adjustments []AdjustmentSpec `json:"adjustments"`
}

// OrderFilter narrows order listings; empty fields match everything.
type OrderFilter struct {
	ShopID  string
	TableNo string
	GuestID string
	Status  OrderStatus
}

func (f OrderFilter) Match(o Order) bool {
	if f.ShopID != "" && o.ShopID != f.ShopID {
		return false
	}
	if f.TableNo != "" && o.TableNo != f.TableNo {
		return false
	}
	if f.GuestID != "" && o.GuestID != f.GuestID {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	return true
}
