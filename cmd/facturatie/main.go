package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"facturatie/internal/adapters/cli"
	"facturatie/internal/config"
	"facturatie/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}

	closer, err := logger.Setup(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	code := 0
	if err := cli.Execute(context.Background(), cfg); err != nil {
		code = 1
	}
	_ = closer.Close()
	os.Exit(code)
}
