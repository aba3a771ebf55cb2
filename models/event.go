package models

import "time"

const (
	EventOrderCreated             = "order.created"
	EventOrderStatusUpdated       = "order.status_updated"
	EventOrderAdjusted            = "order.adjusted"
	EventReservationStatusUpdated = "reservation.status_updated"
	EventPaymentCheck             = "payment_check"
)

// Event is the message published to the broker after a successful write.
type Event struct {
	Type     string    `json:"type"`
	EntityID string    `json:"entityId"`
	ShopID   string    `json:"shopId"`
	TableNo  string    `json:"tableNo"`
	Status   string    `json:"status"`
	Total    int64     `json:"total,omitempty"`
	Occurred time.Time `json:"occurred"`
}

func NewOrderEvent(eventType string, o Order) Event {
	return Event{
		Type:     eventType,
		EntityID: o.ID,
		ShopID:   o.ShopID,
		TableNo:  o.TableNo,
		Status:   string(o.Status),
		Total:    o.TotalPrice,
		Occurred: time.Now().UTC(),
	}
}

func NewReservationEvent(r Reservation) Event {
	return Event{
		Type:     EventReservationStatusUpdated,
		EntityID: r.ID,
		ShopID:   r.ShopID,
		TableNo:  r.TableNo,
		Status:   string(r.Status),
		Occurred: time.Now().UTC(),
	}
}
