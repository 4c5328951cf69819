package main

import (
	"database/sql"
	"log"
	"net/http"

	"tradehub-be/internal/config"
	"tradehub-be/internal/db"
	"tradehub-be/internal/dispute"
	"tradehub-be/internal/httpapi"
	"tradehub-be/internal/logger"
	"tradehub-be/internal/notify"
	"tradehub-be/internal/order"
	"tradehub-be/internal/product"
	"tradehub-be/internal/profile"

	"go.uber.org/zap"
)

// Indirections for testing.
var (
	initDBFunc      = db.InitDB
	startServerFunc = http.ListenAndServe
)

func newServer(cfg *config.Config, database *sql.DB) http.Handler {
	profileRepo := profile.NewRepository(database)
	productRepo := product.NewRepository(database)

	var notifier order.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		notifier = notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
	} else {
		notifier = notify.NoopNotifier{}
	}

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, productRepo, notifier)

	disputeRepo := dispute.NewRepository(database)
	disputeSvc := dispute.NewService(disputeRepo)

	return httpapi.NewRouter(
		[]byte(cfg.JWTSecret),
		profileRepo,
		httpapi.NewOrderHandler(orderSvc),
		httpapi.NewDisputeHandler(disputeSvc),
	)
}

func run() error {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	router := newServer(cfg, database)

	logger.L().Info("server starting",
		zap.String("port", cfg.AppPort),
		zap.String("env", cfg.AppEnv),
		zap.Int("kafka_brokers", len(cfg.KafkaBrokers)),
	)

	return startServerFunc(":"+cfg.AppPort, router)
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
