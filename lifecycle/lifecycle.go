// Package lifecycle holds the order and reservation status machines.
//
// Each machine owns an explicit table of allowed source->target pairs. A
// strict machine rejects anything outside the table; a lenient machine only
// checks that the target is a known label, which is how the admin console
// historically behaved. Same-state moves are always allowed.
package lifecycle

import (
	"time"

	"tableorder/models"
)

type OrderMachine struct {
	Strict bool
}

var orderStatuses = map[models.OrderStatus]bool{
	models.OrderStatusNew:    true,
	models.OrderStatusServed: true,
	models.OrderStatusPaid:   true,
}

var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusNew:    {models.OrderStatusServed},
	models.OrderStatusServed: {models.OrderStatusPaid},
	models.OrderStatusPaid:   {},
}

func ValidOrderStatus(s models.OrderStatus) bool {
	return orderStatuses[s]
}

// Check reports whether the order may move from its current status to next.
func (m OrderMachine) Check(from, next models.OrderStatus) error {
	if !orderStatuses[next] {
		return &models.InvalidStatusError{Status: string(next), From: string(from), Reason: models.ReasonUnknownStatus}
	}
	if !m.Strict || from == next {
		return nil
	}
	for _, allowed := range orderTransitions[from] {
		if allowed == next {
			return nil
		}
	}
	return &models.InvalidStatusError{Status: string(next), From: string(from), Reason: models.ReasonNotAllowed}
}

// Apply moves the order to next. Only Status changes.
func (m OrderMachine) Apply(order *models.Order, next models.OrderStatus) error {
	if err := m.Check(order.Status, next); err != nil {
		return err
	}
	order.Status = next
	return nil
}

type ReservationMachine struct {
	Strict bool
	Now    func() time.Time
}

var reservationStatuses = map[models.ReservationStatus]bool{
	models.ReservationPending:   true,
	models.ReservationSeated:    true,
	models.ReservationCancelled: true,
}

var reservationTransitions = map[models.ReservationStatus][]models.ReservationStatus{
	models.ReservationPending:   {models.ReservationSeated, models.ReservationCancelled},
	models.ReservationSeated:    {},
	models.ReservationCancelled: {},
}

func ValidReservationStatus(s models.ReservationStatus) bool {
	return reservationStatuses[s]
}

func (m ReservationMachine) Check(from, next models.ReservationStatus) error {
	if !reservationStatuses[next] {
		return &models.InvalidStatusError{Status: string(next), From: string(from), Reason: models.ReasonUnknownStatus}
	}
	if !m.Strict || from == next {
		return nil
	}
	for _, allowed := range reservationTransitions[from] {
		if allowed == next {
			return nil
		}
	}
	return &models.InvalidStatusError{Status: string(next), From: string(from), Reason: models.ReasonNotAllowed}
}

// Apply moves the reservation to next. Entering 已入座 stamps CheckInTime;
// nothing ever clears it. A strict same-state move keeps the existing stamp.
func (m ReservationMachine) Apply(r *models.Reservation, next models.ReservationStatus) error {
	if err := m.Check(r.Status, next); err != nil {
		return err
	}
	if next == models.ReservationSeated && !(m.Strict && r.Status == next && r.CheckInTime != nil) {
		ts := m.now().UnixMilli()
		r.CheckInTime = &ts
	}
	r.Status = next
	return nil
}

func (m ReservationMachine) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
