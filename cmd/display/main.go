// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

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
	log.Println("starting spacecraft OLED display")

	// Load configuration
	if err := config.InitGlobal("spacecraft_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Handle Ctrl+C gracefully
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunDisplay(ctx); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
