package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"marketplace-hub/config"
	"marketplace-hub/controllers"
	db "marketplace-hub/database"
	"marketplace-hub/events"
	"marketplace-hub/gcs"
	"marketplace-hub/jobs"
	"marketplace-hub/logger"
	"marketplace-hub/metrics"
	"marketplace-hub/repository"
	"marketplace-hub/routes"
	"marketplace-hub/services"
	"marketplace-hub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "marketplace-hub"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Println("Warning: no .env file loaded:", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}

	zl, err := logger.New(serviceName, cfg.Env, cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatal("logger: ", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.ContextWithLogger(ctx, zl)

	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer db.Disconnect(client)
	database := client.Database(cfg.MongoDatabase)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		return err
	}
	zl.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	users := repository.NewMongoUserRepository(database)
	vendors := repository.NewMongoVendorRepository(database)
	products := repository.NewMongoProductRepository(database)
	orders := repository.NewMongoOrderRepository(database)
	requests := repository.NewMongoRequestItemRepository(database)

	m := metrics.New()
	orderOpts := []services.OrderOption{services.WithObserver(m)}
	if len(cfg.KafkaBrokers) > 0 {
		pub := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		defer pub.Close()
		orderOpts = append(orderOpts, services.WithPublisher(pub))
		zl.Info("order events enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaOrderTopic))
	}
	if cfg.EmailFrom != "" {
		orderOpts = append(orderOpts, services.WithNotifier(
			utils.NewMailer(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort), cfg.EmailFrom, cfg.EmailPass),
		))
	}

	var images services.ImageUploader
	if cfg.GCSBucket != "" {
		uploader, err := gcs.NewUploader(ctx, cfg.GCSBucket, cfg.GCSCredentials)
		if err != nil {
			return err
		}
		defer uploader.Close()
		images = uploader
	} else {
		zl.Warn("GCS_BUCKET not set, image uploads disabled")
	}

	auth := services.NewAuthService(users, vendors, services.NewTokenManager(cfg.JWTSecret, cfg.JWTExpire))
	productSvc := services.NewProductService(products, users, images)
	orderSvc := services.NewOrderService(products, orders, users, orderOpts...)

	scheduler := jobs.NewScheduler(zl)
	if err := scheduler.AddStockSweep(cfg.StockSweepSpec, productSvc, m); err != nil {
		return err
	}
	scheduler.Start()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	controllers.SetExposeInternalErrors(!cfg.IsProduction())

	r := gin.New()
	routes.SetupRoutes(r, routes.Handlers{
		Auth:     controllers.NewAuthController(auth),
		Users:    controllers.NewUserController(auth),
		Products: controllers.NewProductController(productSvc),
		Orders:   controllers.NewOrderController(orderSvc),
		Vendors:  controllers.NewVendorController(services.NewVendorService(vendors)),
		Admin:    controllers.NewAdminController(services.NewAdminService(users, vendors, products, orders, requests)),
		Requests: controllers.NewRequestController(services.NewRequestService(requests)),
	}, routes.Options{
		ServiceName:   serviceName,
		Logger:        zl,
		Metrics:       m,
		Authenticator: auth,
		CORSOrigins:   cfg.CORSOrigins,
		Health: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		zl.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
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

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	scheduler.Stop(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}
