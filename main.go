package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tableorder/config"
	"tableorder/consumers"
	"tableorder/controllers"
	"tableorder/database"
	"tableorder/events"
	"tableorder/kafka"
	"tableorder/logger"
	"tableorder/middlewares"
	"tableorder/models"
	"tableorder/rabbitmq"
	"tableorder/services"
	"tableorder/storage"
	"tableorder/utils"
)

func main() {
	// 加载配置
	cfg := config.LoadConfig()
	logger.Init("tableorder", cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.UsesDevSecret() {
		slog.Warn("table tokens are signed with the development secret", "gin_mode", cfg.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// 初始化存储
	driver, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	defer driver.Close()

	// 初始化消息
	publisher, rmq, err := openPublisher(cfg)
	if err != nil {
		return fmt.Errorf("event broker initialization failed: %w", err)
	}
	defer publisher.Close()

	menus := storage.NewCollection[models.ShopMenu](driver, storage.CollectionMenus)
	orderSvc := services.NewOrderService(
		storage.NewCollection[models.Order](driver, storage.CollectionOrders),
		publisher,
		cfg.StrictTransitions,
		services.WithPaymentCheck(cfg.PaymentCheckDelay),
	)
	reservationSvc := services.NewReservationService(
		storage.NewCollection[models.Reservation](driver, storage.CollectionReservations),
		publisher,
		cfg.StrictTransitions,
		nil,
	)
	shopSvc := services.NewShopService(
		storage.NewCollection[models.Shop](driver, storage.CollectionShops),
		storage.NewCollection[models.Table](driver, storage.CollectionTables),
		menus,
	)
	menuSvc := services.NewMenuService(menus)
	tokens := utils.NewTableTokens(cfg.TableTokenSecret)

	// 启动消息消费者
	if rmq != nil {
		if err := consumers.NewOrderConsumer(orderSvc).Start(ctx, rmq.Channel, cfg); err != nil {
			return err
		}
	}

	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(), middlewares.PrometheusMiddleware())

	// 暴露Prometheus指标端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 健康检查端点
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": cfg.StoreDriver, "broker": cfg.EventBroker})
	})

	api := r.Group("/api")
	controllers.NewOrderController(orderSvc).Register(api)
	controllers.NewReservationController(reservationSvc).Register(api)
	controllers.NewShopController(shopSvc, menuSvc, tokens).Register(api)
	controllers.NewCustomerController(orderSvc, menuSvc, tokens).Register(api)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("tableorder starting", "port", cfg.Port, "store", cfg.StoreDriver,
			"broker", cfg.EventBroker, "strict_transitions", cfg.StrictTransitions)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Driver, error) {
	switch cfg.StoreDriver {
	case "file":
		return storage.NewFileDriver(cfg.DataDir)
	case "pebble":
		return storage.NewPebbleDriver(cfg.PebbleDir)
	case "mysql":
		return database.NewMySQL(ctx, cfg)
	case "postgres":
		return database.NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// openPublisher also returns the RabbitMQ connection when that broker is in
// use so the consumer can share its channel.
func openPublisher(cfg *config.Config) (events.Publisher, *rabbitmq.RabbitMQ, error) {
	switch cfg.EventBroker {
	case "none", "":
		return events.Noop{}, nil, nil
	case "rabbitmq":
		rmq, err := rabbitmq.NewRabbitMQ(cfg)
		if err != nil {
			return nil, nil, err
		}
		// 设置队列和交换机
		if err := rmq.SetupQueues(); err != nil {
			rmq.Close()
			return nil, nil, fmt.Errorf("setup queues: %w", err)
		}
		return rmq, rmq, nil
	case "kafka":
		brokers := kafka.ParseBrokers(cfg.KafkaBrokers)
		if len(brokers) == 0 {
			return nil, nil, errors.New("KAFKA_BROKERS is required for the kafka broker")
		}
		return kafka.NewPublisher(brokers, cfg.KafkaTopic), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown EVENT_BROKER %q", cfg.EventBroker)
	}
}
