package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"tableorder/config"
	"tableorder/models"
)

// 大额订单阈值（最小货币单位）
const largeOrderTotal = 100000

type RabbitMQ struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
	Cfg     *config.Config
}

func NewRabbitMQ(cfg *config.Config) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &RabbitMQ{
		Conn:    conn,
		Channel: ch,
		Cfg:     cfg,
	}, nil
}

func (r *RabbitMQ) SetupQueues() error {
	// 死信交换机和队列
	if err := r.Channel.ExchangeDeclare(
		r.Cfg.DeadLetterQueue+"_exchange",
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	if _, err := r.Channel.QueueDeclare(
		r.Cfg.DeadLetterQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		amqp.Table{"x-queue-type": "classic"},
	); err != nil {
		return err
	}

	if err := r.Channel.QueueBind(r.Cfg.DeadLetterQueue, "", r.Cfg.DeadLetterQueue+"_exchange", false, nil); err != nil {
		return err
	}

	if err := r.Channel.ExchangeDeclare(r.Cfg.OrderExchange, "fanout", true, false, false, false, nil); err != nil {
		return err
	}

	// 延迟交换机（需要RabbitMQ安装延迟插件）
	if err := r.Channel.ExchangeDeclare(
		r.Cfg.DelayExchange,
		"x-delayed-message",
		true,
		false,
		false,
		false,
		amqp.Table{"x-delayed-type": "fanout"},
	); err != nil {
		slog.Warn("delayed exchange not supported", "error", err)
		// a failed declare closes the channel
		if r.Channel, err = r.Conn.Channel(); err != nil {
			return err
		}
	}

	// 主订单队列（带优先级和死信）
	if _, err := r.Channel.QueueDeclare(
		r.Cfg.OrderQueue,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-max-priority":            r.Cfg.MaxPriority,
			"x-dead-letter-exchange":    r.Cfg.DeadLetterQueue + "_exchange",
			"x-dead-letter-routing-key": r.Cfg.DeadLetterQueue,
		},
	); err != nil {
		return err
	}

	if err := r.Channel.QueueBind(r.Cfg.OrderQueue, "", r.Cfg.OrderExchange, false, nil); err != nil {
		return err
	}
	// delayed messages land in the same queue
	if err := r.Channel.QueueBind(r.Cfg.OrderQueue, "", r.Cfg.DelayExchange, false, nil); err != nil {
		slog.Warn("delayed exchange bind failed", "error", err)
		if r.Channel, err = r.Conn.Channel(); err != nil {
			return err
		}
	}

	return nil
}

func eventPriority(event models.Event) uint8 {
	switch {
	case event.Type == models.EventOrderCreated && event.Total > largeOrderTotal:
		return 9
	case event.Type == models.EventReservationStatusUpdated && event.Status == string(models.ReservationCancelled):
		return 8
	default:
		return 5
	}
}

func (r *RabbitMQ) publishing(event models.Event) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		ContentType:  "application/json",
		Type:         event.Type,
		Body:         body,
		Priority:     eventPriority(event),
	}, nil
}

func (r *RabbitMQ) Publish(ctx context.Context, event models.Event) error {
	msg, err := r.publishing(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return r.Channel.PublishWithContext(ctx,
		r.Cfg.OrderExchange,
		"",
		false, // mandatory
		false, // immediate
		msg,
	)
}

func (r *RabbitMQ) PublishDelayed(ctx context.Context, event models.Event, delay time.Duration) error {
	msg, err := r.publishing(event)
	if err != nil {
		return err
	}
	msg.Headers = amqp.Table{
		"x-delay": delay.Milliseconds(), // 延迟时间（毫秒）
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return r.Channel.PublishWithContext(ctx, r.Cfg.DelayExchange, "", false, false, msg)
}

func (r *RabbitMQ) Close() error {
	if r.Channel != nil {
		if err := r.Channel.Close(); err != nil {
			return err
		}
	}
	if r.Conn != nil {
		return r.Conn.Close()
	}
	return nil
}
