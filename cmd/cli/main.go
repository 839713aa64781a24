package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/portfolio/internal/client/cli"
	"github.com/dmitrijs2005/portfolio/internal/client/config"
	"github.com/dmitrijs2005/portfolio/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg, os.Stdout, logging.New(os.Stderr, "error"))
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		stop()
		log.Fatalf("%v", err)
	}
}
