// Package main запускает клиент системы заказа еды.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/foodorder-client/internal/api"
	"github.com/mmeshcher/foodorder-client/internal/config"
	"github.com/mmeshcher/foodorder-client/internal/handler"
	"github.com/mmeshcher/foodorder-client/internal/obs"
	"github.com/mmeshcher/foodorder-client/internal/storage"
	"github.com/mmeshcher/foodorder-client/internal/store"
)

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	// .env необязателен
	_ = godotenv.Load()

	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger initialization error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	credentials, err := storage.Open(ctx, cfg.StorageDSN)
	if err != nil {
		sugar.Fatalw("storage initialization error", "error", err.Error())
	}
	defer credentials.Close()

	metrics := obs.NewMetrics()

	var (
		session *store.Session
		cart    *store.Cart
	)

	client := api.NewClient(cfg.APIURL, credentials,
		api.WithTimeout(cfg.APITimeout),
		api.WithLogger(logger.Named("api")),
		api.WithMetrics(metrics),
		api.WithRateLimit(cfg.APIRateLimit),
		api.WithSessionExpiredHook(func(ctx context.Context) {
			session.Expire(ctx)
			cart.ClearCart()
		}),
	)

	session = store.NewSession(client, credentials, logger.Named("session"))
	cart = store.NewCart(client, logger.Named("cart"))
	orders := store.NewOrders(client, logger.Named("orders"))

	session.GetCurrentUser(ctx)
	if st := session.State(); st.IsAuthenticated {
		sugar.Infow("session restored", "user_id", st.User.ID, "role", st.User.Role)
	}

	h := handler.NewHandler(session, cart, orders, client, logger, handler.Settings{
		PayPalClientID: cfg.PayPalClientID,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: h.SetupRouter(),
	}

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting foodorder client", "addr", cfg.RunAddress, "api", cfg.APIURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
