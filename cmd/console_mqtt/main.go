package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/leap_spacecraft/internal/app"
	"github.com/relabs-tech/leap_spacecraft/internal/config"
)

func main() {
	log.Println("starting spacecraft console (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal("spacecraft_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Handle Ctrl+C gracefully
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunConsoleMQTT(ctx); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
