// Command anomaly-scan sweeps the item catalog for costs that look like case
// or box prices stored as unit costs. By default it is a dry run that only
// reports; with --apply it zeroes cost and markup on every flagged item. It
// is intended to be invoked by an external cron job, not as an in-process
// goroutine.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/pricewise/pricewise-backend/internal/adapter/postgres"
	itemrepo "github.com/pricewise/pricewise-backend/internal/adapter/postgres/item"
	historyrepo "github.com/pricewise/pricewise-backend/internal/adapter/postgres/pricehistory"
	"github.com/pricewise/pricewise-backend/internal/app"
	"github.com/pricewise/pricewise-backend/internal/config"
	"github.com/pricewise/pricewise-backend/internal/pricing"
	catalogsvc "github.com/pricewise/pricewise-backend/internal/service/catalog"
)

func main() {
	applyFlag := flag.Bool("apply", false, "zero cost and markup on flagged items")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	thresholds := pricing.AnomalyThresholds{
		MinMargin:   cfg.Anomaly.MinMargin,
		ThinMargin:  cfg.Anomaly.ThinMargin,
		HighCost:    cfg.Anomaly.HighCost,
		CostCeiling: cfg.Anomaly.CostCeiling,
		CaseSell:    cfg.Anomaly.CaseSell,
		CaseCost:    cfg.Anomaly.CaseCost,
	}

	service := catalogsvc.NewService(logger, itemrepo.New(pool), historyrepo.New(pool), thresholds)

	result, err := service.ScanForCostAnomalies(ctx, *applyFlag)
	if err != nil {
		logger.Error("anomaly scan failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	for _, f := range result.Flagged {
		fmt.Printf("%s\t%s\tcost=%s sell=%s\t%s\n",
			f.Item.ID, f.Item.Name, f.Item.CostExTax, f.Item.SellExTax, f.Reason)
	}
	fmt.Printf("flagged=%d fixed=%d\n", len(result.Flagged), result.Fixed)
}
