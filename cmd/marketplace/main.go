package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	catalogservice "marketplace/pkg/catalog/domain/service"
	catalogrepository "marketplace/pkg/catalog/infrastructure/repository"
	chatservice "marketplace/pkg/chat/domain/service"
	whatsapp "marketplace/pkg/chat/infrastructure/transport"
	"marketplace/pkg/common/infrastructure/config"
	"marketplace/pkg/common/infrastructure/eventlog"
	"marketplace/pkg/common/infrastructure/logging"
	"marketplace/pkg/common/infrastructure/mysql"
	orderingservice "marketplace/pkg/ordering/domain/service"
	orderingrepository "marketplace/pkg/ordering/infrastructure/repository"
	"marketplace/pkg/transport"
)

func main() {
	app := &cli.App{
		Name:  "marketplace",
		Usage: "multi-tenant marketplace backend with a WhatsApp conversational interface",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: runMigrations,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runMigrations(_ *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return mysql.Migrate(cfg.DatabaseDSN, cfg.MigrationsDir)
}

func serve(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel)

	if err := mysql.Migrate(cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		return err
	}

	db, err := mysql.Connect(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	dispatcher := eventlog.NewDispatcher(logger)

	productRepo := catalogrepository.NewProductRepository(db)
	sellerDir := catalogrepository.NewSellerDirectory(db)
	productService := catalogservice.NewProductService(productRepo, sellerDir, dispatcher)

	orderRepo := orderingrepository.NewOrderRepository(db)
	checkoutService := orderingservice.NewCheckoutService(
		orderRepo, orderRepo, orderRepo, orderRepo, orderRepo, dispatcher, orderingservice.SystemClock)
	coinService := orderingservice.NewCoinService(orderRepo, orderRepo)

	sender, err := whatsapp.NewSender(cfg, logger)
	if err != nil {
		return err
	}

	searchEngine := chatservice.NewSearchEngine(productRepo, logger)
	responder := chatservice.NewResponder(searchEngine, productRepo, cfg.AppBaseURL, logger)
	orchestrator := chatservice.NewOrchestrator(responder, sender, logger)

	handler := transport.NewHandler(
		orchestrator, productService, productRepo, checkoutService, coinService,
		cfg.WhatsAppProvider, cfg.MetaVerifyToken, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: handler.Router(),
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.WithField("addr", server.Addr).Info("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
