package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/catalog"
	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/config"
	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/httpx"
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

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers
	pReserved := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicStockReserved, 1024, log)
	pReserved.Start(ctx)
	pRejected := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicStockRejected, 1024, log)
	pRejected.Start(ctx)
	pHistory := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderHistory, 1024, log)
	pHistory.Start(ctx)

	taxRate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		log.Fatal("invalid TAX_RATE", zap.String("value", cfg.TaxRate), zap.Error(err))
	}
	recalc := orders.NewTotalsCalc(taxRate)

	// Core wiring
	ledger := stock.NewLedger(db, stock.NewPGStore(), log)
	cat := catalog.NewPG(db)
	repo := &orders.Repo{DB: db, Catalog: cat, Ledger: ledger, Recalc: recalc}
	items := &orders.ItemService{
		Store:   repo,
		Ledger:  ledger,
		Prices:  cat,
		Recalc:  recalc,
		History: &orders.KafkaHistory{Producer: pHistory, Service: cfg.ServiceName, Log: log},
		Log:     log,
	}

	router := httpx.NewRouter()
	(&httpx.StockHandler{
		Ledger:         ledger,
		Redis:          rdb,
		ProducerOK:     pReserved,
		ProducerReject: pRejected,
		Service:        cfg.ServiceName,
		Log:            log,
	}).Register(router)
	(&httpx.OrdersHandler{
		Repo:    repo,
		Items:   items,
		Redis:   rdb,
		Service: cfg.ServiceName,
		Log:     log,
	}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	cancel() // stop producer loops, flush sisa pesan
	pReserved.WaitClosed()
	pRejected.WaitClosed()
	pHistory.WaitClosed()
}
