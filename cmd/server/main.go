package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/gridfall/internal/app/server"
	"github.com/louisbranch/gridfall/internal/platform/config"
)

func main() {
	log.SetPrefix("[GRIDFALL] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		config.Exitf("failed to serve: %v", err)
	}
}
