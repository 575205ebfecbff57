// Package app wires configuration, storage, services, and transport into a
// running process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/pricewise/pricewise-backend/internal/adapter/postgres"
	invoicerepo "github.com/pricewise/pricewise-backend/internal/adapter/postgres/invoice"
	itemrepo "github.com/pricewise/pricewise-backend/internal/adapter/postgres/item"
	historyrepo "github.com/pricewise/pricewise-backend/internal/adapter/postgres/pricehistory"
	vendorrepo "github.com/pricewise/pricewise-backend/internal/adapter/postgres/vendor"
	"github.com/pricewise/pricewise-backend/internal/config"
	"github.com/pricewise/pricewise-backend/internal/pricing"
	catalogsvc "github.com/pricewise/pricewise-backend/internal/service/catalog"
	invoicesvc "github.com/pricewise/pricewise-backend/internal/service/invoice"
	vendorsvc "github.com/pricewise/pricewise-backend/internal/service/vendor"
	"github.com/pricewise/pricewise-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// the database, runs migrations, wires the services, and serves HTTP until
// ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations applied")
	}

	txManager := postgres.NewTxManager(pool)

	vendors := vendorrepo.New(pool)
	items := itemrepo.New(pool)
	invoices := invoicerepo.New(pool)
	history := historyrepo.New(pool)

	markups := pricing.NewMarkupTable(cfg.Pricing.CategoryMarkups, cfg.Pricing.DefaultMarkup)
	thresholds := pricing.AnomalyThresholds{
		MinMargin:   cfg.Anomaly.MinMargin,
		ThinMargin:  cfg.Anomaly.ThinMargin,
		HighCost:    cfg.Anomaly.HighCost,
		CostCeiling: cfg.Anomaly.CostCeiling,
		CaseSell:    cfg.Anomaly.CaseSell,
		CaseCost:    cfg.Anomaly.CaseCost,
	}

	invoiceService := invoicesvc.NewService(
		logger, invoices, items, vendors, history, txManager, markups, cfg.Pricing.TaxRate,
	)
	catalogService := catalogsvc.NewService(logger, items, history, thresholds)
	vendorService := vendorsvc.NewService(logger, vendors)

	handler := rest.NewRouter(rest.Handlers{
		Health:   rest.NewHealthHandler(pool, BuildVersion()),
		Vendors:  rest.NewVendorHandler(vendorService, logger),
		Invoices: rest.NewInvoiceHandler(invoiceService, logger),
		Catalog:  rest.NewCatalogHandler(catalogService, logger),
		Pricing:  rest.NewPricingHandler(markups, cfg.Pricing.TaxRate, logger),
	}, logger)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("stopped cleanly")
	return nil
}
