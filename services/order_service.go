package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"tableorder/events"
	"tableorder/lifecycle"
	"tableorder/models"
	"tableorder/pricing"
)

// OrderRepository is the persistence collaborator for orders.
type OrderRepository interface {
	FindWhere(ctx context.Context, match func(models.Order) bool) ([]models.Order, error)
	FindByID(ctx context.Context, id string) (models.Order, error)
	Create(ctx context.Context, order models.Order) (models.Order, error)
	Update(ctx context.Context, id string, mutate func(*models.Order) error) (models.Order, error)
}

type OrderService struct {
	repo              OrderRepository
	publisher         events.Publisher
	machine           lifecycle.OrderMachine
	paymentCheckDelay time.Duration

	now   func() time.Time
	newID func() string
}

type OrderOption func(*OrderService)

// WithPaymentCheck schedules a payment check this long after an order is
// served, when the publisher supports delayed delivery.
func WithPaymentCheck(delay time.Duration) OrderOption {
	return func(s *OrderService) { s.paymentCheckDelay = delay }
}

func WithOrderClock(now func() time.Time) OrderOption {
	return func(s *OrderService) { s.now = now }
}

func NewOrderService(repo OrderRepository, publisher events.Publisher, strict bool, opts ...OrderOption) *OrderService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	s := &OrderService{
		repo:      repo,
		publisher: publisher,
		machine:   lifecycle.OrderMachine{Strict: strict},
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OrderService) Create(ctx context.Context, in models.CreateOrderInput) (models.Order, error) {
	if err := validateCreateOrder(in); err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		ID:          s.newID(),
		ShopID:      strings.TrimSpace(in.ShopID),
		TableNo:     strings.TrimSpace(in.TableNo),
		GuestID:     in.GuestID,
		GuestName:   in.GuestName,
		Items:       slices.Clone(in.Items),
		Adjustments: make([]models.OrderAdjustment, 0, len(in.Adjustments)),
		Status:      models.OrderStatusNew,
		CreatedAt:   s.now().UnixMilli(),
	}
	// 计算小计
	order.Subtotal = pricing.Subtotal(order.Items)
	for _, spec := range in.Adjustments {
		order.Adjustments = append(order.Adjustments, s.newAdjustment(spec, order.Subtotal))
	}
	order.TotalPrice = pricing.Total(order.Subtotal, order.Adjustments)

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return models.Order{}, fmt.Errorf("create order: %w", err)
	}
	s.publish(ctx, models.NewOrderEvent(models.EventOrderCreated, created))
	return created, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return models.Order{}, &models.NotFoundError{Entity: "order", ID: id}
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("get order %s: %w", id, err)
	}
	return order, nil
}

// List returns matching orders, newest first.
func (s *OrderService) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	orders, err := s.repo.FindWhere(ctx, filter.Match)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt > orders[j].CreatedAt })
	return orders, nil
}

// AddAdjustment prices the new adjustment against the stored subtotal.
func (s *OrderService) AddAdjustment(ctx context.Context, orderID string, spec models.AdjustmentSpec) (models.Order, error) {
	if err := validateAdjustment(spec, ""); err != nil {
		return models.Order{}, err
	}
	order, err := s.update(ctx, orderID, func(o *models.Order) error {
		o.Adjustments = append(o.Adjustments, s.newAdjustment(spec, o.Subtotal))
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	s.publish(ctx, models.NewOrderEvent(models.EventOrderAdjusted, order))
	return order, nil
}

func (s *OrderService) UpdateAdjustment(ctx context.Context, orderID, adjustmentID string, patch models.AdjustmentPatch) (models.Order, error) {
	order, err := s.update(ctx, orderID, func(o *models.Order) error {
		i := adjustmentIndex(o.Adjustments, adjustmentID)
		if i < 0 {
			return &models.NotFoundError{Entity: "adjustment", ID: adjustmentID}
		}
		adj := o.Adjustments[i]
		if patch.Name != nil {
			adj.Name = *patch.Name
		}
		if patch.Type != nil {
			adj.Type = *patch.Type
		}
		if patch.ValueType != nil {
			adj.ValueType = *patch.ValueType
		}
		if patch.Value != nil {
			adj.Value = *patch.Value
		}
		if err := validateAdjustment(adj.Spec(), ""); err != nil {
			return err
		}
		o.Adjustments[i] = adj
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	s.publish(ctx, models.NewOrderEvent(models.EventOrderAdjusted, order))
	return order, nil
}

// RemoveAdjustment fails with NotFoundError when the adjustment id is absent.
func (s *OrderService) RemoveAdjustment(ctx context.Context, orderID, adjustmentID string) (models.Order, error) {
	order, err := s.update(ctx, orderID, func(o *models.Order) error {
		i := adjustmentIndex(o.Adjustments, adjustmentID)
		if i < 0 {
			return &models.NotFoundError{Entity: "adjustment", ID: adjustmentID}
		}
		o.Adjustments = slices.Delete(o.Adjustments, i, i+1)
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	s.publish(ctx, models.NewOrderEvent(models.EventOrderAdjusted, order))
	return order, nil
}

// Transition changes only the order status.
func (s *OrderService) Transition(ctx context.Context, orderID string, next models.OrderStatus) (models.Order, error) {
	if !lifecycle.ValidOrderStatus(next) {
		return models.Order{}, &models.InvalidStatusError{Status: string(next), Reason: models.ReasonUnknownStatus}
	}
	var changed bool
	order, err := s.update(ctx, orderID, func(o *models.Order) error {
		changed = o.Status != next
		return s.machine.Apply(o, next)
	})
	if err != nil {
		return models.Order{}, err
	}
	if changed {
		s.publish(ctx, models.NewOrderEvent(models.EventOrderStatusUpdated, order))
		if next == models.OrderStatusServed {
			s.schedulePaymentCheck(ctx, order)
		}
	}
	return order, nil
}

func (s *OrderService) MarkServed(ctx context.Context, orderID string) (models.Order, error) {
	return s.Transition(ctx, orderID, models.OrderStatusServed)
}

func (s *OrderService) MarkPaid(ctx context.Context, orderID string) (models.Order, error) {
	return s.Transition(ctx, orderID, models.OrderStatusPaid)
}

// Unpaid reports whether the order still awaits payment.
func (s *OrderService) Unpaid(ctx context.Context, orderID string) (models.Order, bool, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return models.Order{}, false, err
	}
	return order, order.Status != models.OrderStatusPaid, nil
}

// update runs mutate on a copy of the stored order and writes it back only
// when mutate succeeds. Amounts and total are rebuilt before every write.
func (s *OrderService) update(ctx context.Context, id string, mutate func(*models.Order) error) (models.Order, error) {
	order, err := s.repo.Update(ctx, id, func(o *models.Order) error {
		work := o.Clone()
		if err := mutate(&work); err != nil {
			return err
		}
		// only the adjustment touched by this call can be out of range
		if err := validateAmounts(work.Subtotal, work.Adjustments, func(int) string { return "value" }); err != nil {
			return err
		}
		pricing.Reprice(&work)
		*o = work
		return nil
	})
	if err == nil {
		return order, nil
	}
	var nf *models.NotFoundError
	if errors.As(err, &nf) {
		return models.Order{}, err
	}
	if errors.Is(err, models.ErrNotFound) {
		return models.Order{}, &models.NotFoundError{Entity: "order", ID: id}
	}
	var ve *models.ValidationError
	var se *models.InvalidStatusError
	if errors.As(err, &ve) || errors.As(err, &se) {
		return models.Order{}, err
	}
	return models.Order{}, fmt.Errorf("update order %s: %w", id, err)
}

func (s *OrderService) newAdjustment(spec models.AdjustmentSpec, subtotal int64) models.OrderAdjustment {
	return models.OrderAdjustment{
		ID:        s.newID(),
		Name:      spec.Name,
		Type:      spec.Type,
		ValueType: spec.ValueType,
		Value:     spec.Value,
		Amount:    pricing.ComputeAmount(subtotal, spec),
	}
}

func adjustmentIndex(adjs []models.OrderAdjustment, id string) int {
	for i, a := range adjs {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (s *OrderService) publish(ctx context.Context, event models.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.Warn("failed to publish order event", "type", event.Type, "order_id", event.EntityID, "error", err)
	}
}

func (s *OrderService) schedulePaymentCheck(ctx context.Context, order models.Order) {
	delayed, ok := s.publisher.(events.DelayedPublisher)
	if !ok || s.paymentCheckDelay <= 0 {
		return
	}
	event := models.NewOrderEvent(models.EventPaymentCheck, order)
	if err := delayed.PublishDelayed(ctx, event, s.paymentCheckDelay); err != nil {
		slog.Warn("failed to schedule payment check", "order_id", order.ID, "error", err)
	}
}
