package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YelzhanWeb/theo-eats/internal/adapter/cache"
	"github.com/YelzhanWeb/theo-eats/internal/adapter/logger"
	"github.com/YelzhanWeb/theo-eats/internal/adapter/memory"
	"github.com/YelzhanWeb/theo-eats/internal/adapter/metrics"
	"github.com/YelzhanWeb/theo-eats/internal/adapter/postgres"
	"github.com/YelzhanWeb/theo-eats/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/theo-eats/internal/app/cart"
	"github.com/YelzhanWeb/theo-eats/internal/app/catalog"
	"github.com/YelzhanWeb/theo-eats/internal/app/kitchen"
	"github.com/YelzhanWeb/theo-eats/internal/app/lifecycle"
	"github.com/YelzhanWeb/theo-eats/internal/app/maintenance"
	"github.com/YelzhanWeb/theo-eats/internal/config"
	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"

	amqpAdapter "github.com/YelzhanWeb/theo-eats/internal/adapter/amqp"
	httpAdapter "github.com/YelzhanWeb/theo-eats/internal/adapter/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	mode := flag.String("mode", "", "Service mode: cart-service, kitchen-worker, notification-subscriber, migrate, repair")
	configPath := flag.String("config", "config.yaml", "Path to the YAML config")
	port := flag.Int("port", 0, "HTTP port, overrides the config")
	workerName := flag.String("worker-name", "", "Worker name (for kitchen-worker)")
	prefetch := flag.Int("prefetch", 0, "RabbitMQ prefetch count, overrides the config")
	flag.Parse()

	if *mode == "" {
		log.Fatal("--mode flag is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *workerName != "" {
		cfg.Kitchen.WorkerName = *workerName
	}
	if *prefetch > 0 {
		cfg.Kitchen.Prefetch = *prefetch
	}

	lgr := logger.New(*mode, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "cart-service":
		err = runCartService(ctx, cfg, lgr)
	case "kitchen-worker":
		err = runKitchenWorker(ctx, cfg, lgr)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, lgr)
	case "migrate":
		err = runMigrate(ctx, cfg, lgr)
	case "repair":
		err = runRepair(ctx, cfg, lgr)
	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		lgr.Error("service_failed", "Service stopped with an error", "runtime", nil, err)
		os.Exit(1)
	}
}

type storage struct {
	catalog     interfaces.CatalogRepository
	orders      interfaces.OrderStore
	maintenance interfaces.MaintenanceRepository
	closers     []func()
}

func (s *storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStorage(ctx context.Context, cfg *config.Config, lgr logger.Logger) (*storage, error) {
	st := &storage{}

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, db.Close)
		st.catalog = postgres.NewCatalogRepository(db)
		st.orders = postgres.NewOrderRepository(db)
		st.maintenance = postgres.NewMaintenanceRepository(db)

		lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
			"host": cfg.Database.Host,
			"db":   cfg.Database.Name,
		})
	default:
		orders := memory.NewOrderStore()
		st.catalog = memory.NewCatalog(domain.DefaultMenu()...)
		st.orders = orders
		st.maintenance = orders
	}

	if cfg.Redis.Enabled {
		c, err := cache.NewRedisCache(ctx, cfg.Redis, "theo-eats")
		if err != nil {
			st.Close()
			return nil, err
		}
		st.closers = append(st.closers, func() { c.Close() })
		st.catalog = cache.NewCatalogRepository(st.catalog, c, cfg.Redis.TTL, lgr)

		lgr.Info("redis_connected", "Catalog cache enabled", "startup", map[string]interface{}{
			"addr": cfg.Redis.Addr,
			"ttl":  cfg.Redis.TTL.String(),
		})
	}

	return st, nil
}

func connectRabbitMQ(cfg *config.Config, lgr logger.Logger) (rabbitmq.Connection, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		return nil, err
	}
	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host": cfg.RabbitMQ.Host,
	})
	return conn, nil
}

// services wires the application layer on top of st.
func services(st *storage, publisher interfaces.MessagePublisher, lgr logger.Logger, name string) (*catalog.Service, *cart.Service, *lifecycle.Service) {
	catalogSvc := catalog.NewService(st.catalog, lgr)
	cartSvc := cart.NewService(st.orders, catalogSvc, lgr)
	lifecycleSvc := lifecycle.NewService(st.orders, cartSvc, publisher, lgr, name)
	return catalogSvc, cartSvc, lifecycleSvc
}

func runCartService(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	st, err := openStorage(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer st.Close()

	publisher := rabbitmq.NopPublisher()
	if cfg.RabbitMQ.Enabled {
		conn, err := connectRabbitMQ(cfg, lgr)
		if err != nil {
			return err
		}
		defer conn.Close()
		publisher = rabbitmq.NewPublisher(conn)
	}

	catalogSvc, cartSvc, lifecycleSvc := services(st, publisher, lgr, "cart-service")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: httpAdapter.NewRouter(httpAdapter.RouterConfig{
			Cart:           cartSvc,
			Lifecycle:      lifecycleSvc,
			Catalog:        catalogSvc,
			Metrics:        metrics.NewServerMetrics(reg, "cart_service"),
			Logger:         lgr,
			RequestTimeout: cfg.Server.RequestTimeout,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("Cart Service started on port %d", cfg.Server.Port), "startup", map[string]interface{}{
		"port":    cfg.Server.Port,
		"storage": cfg.Storage.Driver,
	})

	errc := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	lgr.Info("shutdown_initiated", "Shutting down Cart Service", "shutdown", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runKitchenWorker(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	if cfg.Storage.Driver != config.StoragePostgres {
		return fmt.Errorf("kitchen-worker needs shared storage, set storage.driver to postgres")
	}

	st, err := openStorage(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer st.Close()

	conn, err := connectRabbitMQ(cfg, lgr)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, _, lifecycleSvc := services(st, rabbitmq.NewPublisher(conn), lgr, cfg.Kitchen.WorkerName)
	kitchenSvc := kitchen.NewService(st.orders, lifecycleSvc, lgr, cfg.Kitchen.WorkerName, cfg.Kitchen.PrepTime)
	handler := amqpAdapter.NewOrderHandler(kitchenSvc, lgr)
	consumer := rabbitmq.NewConsumer(conn, cfg.Kitchen.Prefetch, lgr)

	lgr.Info("service_started", fmt.Sprintf("Kitchen Worker %s started", cfg.Kitchen.WorkerName), "startup", map[string]interface{}{
		"worker_name": cfg.Kitchen.WorkerName,
		"prefetch":    cfg.Kitchen.Prefetch,
		"prep_time":   cfg.Kitchen.PrepTime.String(),
	})

	err = consumer.ConsumeOrders(ctx, handler.HandleOrder)
	lgr.Info("graceful_shutdown", "Shutting down Kitchen Worker", "shutdown", nil)
	return err
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	conn, err := connectRabbitMQ(cfg, lgr)
	if err != nil {
		return err
	}
	defer conn.Close()

	consumer := rabbitmq.NewConsumer(conn, 1, lgr)
	handler := amqpAdapter.NewNotificationHandler(lgr, os.Stdout)

	lgr.Info("service_started", "Notification Subscriber started", "startup", nil)

	err = consumer.ConsumeNotifications(ctx, handler.HandleNotification)
	lgr.Info("shutdown_initiated", "Shutting down Notification Subscriber", "shutdown", nil)
	return err
}

func runMigrate(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	lgr.Info("migration_completed", "Schema applied and menu seeded", "startup", map[string]interface{}{
		"db": cfg.Database.Name,
	})
	return nil
}

func runRepair(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	st, err := openStorage(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := maintenance.NewService(st.maintenance, lgr, cfg.Maintenance.StaleAfter, cfg.Maintenance.PurgeAfter)

	report, err := svc.Repair(ctx)
	if err != nil {
		return err
	}
	purged, err := svc.Purge(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Fixed %d missing tracking records\n", report.MissingTrackingFixed)
	fmt.Printf("Removed %d orphaned tracking records\n", report.OrphanedTrackingRemoved)
	fmt.Printf("Removed %d empty orders\n", report.EmptyOrdersRemoved)
	fmt.Printf("Purged %d closed orders\n", purged)
	return nil
}
