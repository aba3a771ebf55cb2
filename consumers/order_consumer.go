package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"tableorder/config"
	"tableorder/models"
)

// PaymentChecker looks up whether an order is still waiting for payment.
type PaymentChecker interface {
	Unpaid(ctx context.Context, orderID string) (models.Order, bool, error)
}

type OrderConsumer struct {
	orders PaymentChecker
}

func NewOrderConsumer(orders PaymentChecker) *OrderConsumer {
	return &OrderConsumer{orders: orders}
}

// Start consumes the order queue and the dead letter queue until ctx is done
// or the channel closes.
func (oc *OrderConsumer) Start(ctx context.Context, ch *amqp.Channel, cfg *config.Config) error {
	// 消费主订单队列
	msgs, err := ch.Consume(
		cfg.OrderQueue,
		"tableorder", // consumer tag
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register order consumer: %w", err)
	}

	// 消费死信队列
	dlqMsgs, err := ch.Consume(cfg.DeadLetterQueue, "tableorder-dlq", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register dead letter consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				oc.deliver(ctx, msg)
			case msg, ok := <-dlqMsgs:
				if !ok {
					return
				}
				slog.Error("dead letter received", "type", msg.Type, "body", string(msg.Body))
				_ = msg.Ack(false)
			}
		}
	}()
	return nil
}

func (oc *OrderConsumer) deliver(ctx context.Context, msg amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("recovered from panic in message processing", "panic", r)
			_ = msg.Nack(false, false)
		}
	}()

	if err := oc.Handle(ctx, msg.Body); err != nil {
		slog.Error("failed to process event", "error", err)
		// 拒绝消息，不重新入队，进入死信队列
		_ = msg.Nack(false, false)
		return
	}
	_ = msg.Ack(false)
}

// Handle processes one JSON encoded event. Malformed messages return an
// error so they end up in the dead letter queue.
func (oc *OrderConsumer) Handle(ctx context.Context, body []byte) error {
	var event models.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("invalid event payload: %w", err)
	}
	if event.Type == "" || event.EntityID == "" {
		return errors.New("event is missing type or entity id")
	}

	log := slog.With("type", event.Type, "entity_id", event.EntityID, "shop_id", event.ShopID, "table_no", event.TableNo)
	switch event.Type {
	case models.EventOrderCreated:
		log.Info("order created", "total", event.Total)
	case models.EventOrderStatusUpdated, models.EventReservationStatusUpdated:
		log.Info("status updated", "status", event.Status)
	case models.EventOrderAdjusted:
		log.Info("order adjusted", "total", event.Total)
	case models.EventPaymentCheck:
		return oc.checkPayment(ctx, event.EntityID)
	default:
		log.Warn("unknown event type")
	}
	return nil
}

// checkPayment 检查订单支付状态，仍未支付则告警
func (oc *OrderConsumer) checkPayment(ctx context.Context, orderID string) error {
	order, unpaid, err := oc.orders.Unpaid(ctx, orderID)
	if err != nil {
		var nf *models.NotFoundError
		if errors.As(err, &nf) {
			slog.Warn("payment check for missing order", "order_id", orderID)
			return nil
		}
		return fmt.Errorf("payment check %s: %w", orderID, err)
	}
	if unpaid {
		slog.Warn("order still unpaid", "order_id", order.ID, "shop_id", order.ShopID,
			"table_no", order.TableNo, "status", order.Status, "total", order.TotalPrice)
	}
	return nil
}
