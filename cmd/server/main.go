// Command server runs the pricing and reconciliation HTTP API.
//
// Configuration comes from a YAML file (CONFIG_PATH or ./config.yaml) with
// environment variable overrides; a .env file in the working directory is
// loaded first when present.
//
// Exit codes: 0 = clean shutdown, 1 = error.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pricewise/pricewise-backend/internal/app"
)

func main() {
	// Missing .env is fine: containerized deployments inject env directly.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
