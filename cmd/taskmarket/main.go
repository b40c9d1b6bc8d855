package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"taskmarket/internal/app"
	"taskmarket/internal/buildinfo"
	"taskmarket/internal/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	<-ctx.Done()
	a.Close(context.Background())
}
