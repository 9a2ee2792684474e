package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ecomkit/storefront/internal/auth"
	"github.com/ecomkit/storefront/internal/cart"
	"github.com/ecomkit/storefront/internal/config"
	"github.com/ecomkit/storefront/internal/logistics"
	"github.com/ecomkit/storefront/internal/mq"
	"github.com/ecomkit/storefront/internal/order"
	"github.com/ecomkit/storefront/internal/payment"
	"github.com/ecomkit/storefront/internal/postgres"
	"github.com/ecomkit/storefront/internal/product"
	"github.com/ecomkit/storefront/internal/redisx"
	"github.com/ecomkit/storefront/internal/sms"
	"github.com/ecomkit/storefront/internal/user"
	"github.com/ecomkit/storefront/internal/verification"
)

// @title Storefront API
// @version 1.0
// @description E-commerce storefront: catalog, cart, orders, payments, back office.
// @BasePath /api
func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	if err := redisx.Ping(ctx, rdb); err != nil {
		log.Fatal("connect redis", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	queue, err := mq.NewRabbitMQ(cfg.AMQPURL, cfg.OrderExpiry)
	if err != nil {
		log.Fatal("connect rabbitmq", zap.Error(err))
	}
	defer queue.Close()
	if err := queue.SetupQueues(); err != nil {
		log.Fatal("declare rabbitmq queues", zap.Error(err))
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTExpiry)

	productRepo := product.NewPGRepo(db)
	categoryRepo := product.NewCategoryPGRepo(db)
	orderRepo := order.NewPGRepo(db)
	paymentRepo := payment.NewPGRepo(db)
	cartRepo := cart.NewPGRepo(db)
	userRepo := user.NewPGRepo(db)

	smsClient := sms.NewClient(cfg.SMSAPIBase, cfg.SMSAppCode)
	codes := verification.NewService(rdb, smsClient, log)
	users := user.NewService(userRepo, codes, tokens, log)

	orders := order.NewService(orderRepo, productRepo, cartRepo, queue, log)

	verifier, err := payment.NewVerifierFromFile(cfg.WebhookPubKeyPath, log)
	if err != nil {
		log.Fatal("load webhook public key", zap.Error(err))
	}
	gateway := payment.NewClient(cfg.PaymentAPIBase, cfg.PaymentAPIKey, cfg.PaymentTimeout)
	payments := payment.NewService(paymentRepo, orderRepo, gateway, verifier, payment.ChannelConfig{
		AppID:      cfg.PaymentAppID,
		Currency:   cfg.PaymentCurrency,
		ReturnURLs: cfg.PaymentReturnURLs,
		ReturnBase: cfg.PaymentReturnBase,
	}, log)

	if err := queue.StartExpiryConsumer(orders.Expire, log); err != nil {
		log.Fatal("start expiry consumer", zap.Error(err))
	}

	express := logistics.NewClient(cfg.LogisticsAPIBase, cfg.LogisticsAppCode)

	router := newRouter(deps{
		tokens:     tokens,
		log:        log,
		products:   productRepo,
		categories: categoryRepo,
		orders:     orders,
		ordersRepo: orderRepo,
		payments:   payments,
		carts:      cartRepo,
		users:      users,
		codes:      codes,
		express:    express,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	go func() {
		log.Info("api listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
