package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/config"
	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/fulfillment"
	kafkax "github.com/tranquoctam1292/shop-gau-bong-stock/internal/kafka"
	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/logger"
	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/orders"
	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/postgres"
	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/redisx"
	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/stock"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.Environment)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	pDeducted := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicStockDeducted, 1024, log)
	pDeducted.Start(ctx)
	pReleased := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicStockReleased, 1024, log)
	pReleased.Start(ctx)

	svc := &fulfillment.Service{
		Ledger:           stock.NewLedger(db, stock.NewPGStore(), log),
		Redis:            rdb,
		ProducerDeducted: pDeducted,
		ProducerReleased: pReleased,
		ServiceName:      cfg.ServiceName + "-fulfillment",
		Log:              log,
	}

	cFulfilled := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.FulfillmentGroup,
		orders.TopicOrderFulfilled, cfg.FulfillmentWorkers, log)
	cCancelled := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.FulfillmentGroup,
		orders.TopicOrderCancelled, cfg.FulfillmentWorkers, log)

	go func() {
		log.Info("fulfilled consumer started",
			zap.String("group", cfg.FulfillmentGroup),
			zap.String("topic", orders.TopicOrderFulfilled),
			zap.Int("workers", cfg.FulfillmentWorkers))
		if err := cFulfilled.Start(ctx, svc.HandleOrderFulfilled); err != nil {
			log.Error("fulfilled consumer exit", zap.Error(err))
			cancel()
		}
	}()
	go func() {
		log.Info("cancelled consumer started",
			zap.String("group", cfg.FulfillmentGroup),
			zap.String("topic", orders.TopicOrderCancelled),
			zap.Int("workers", cfg.FulfillmentWorkers))
		if err := cCancelled.Start(ctx, svc.HandleOrderCancelled); err != nil {
			log.Error("cancelled consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumers...")
	cancel()
	time.Sleep(500 * time.Millisecond)
	pDeducted.WaitClosed()
	pReleased.WaitClosed()
}
