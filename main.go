package main

import (
	"io"
	"log"

	"billing/cmd"
	"billing/internal/config"
	"billing/internal/logger"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Commands load the configuration again and report its errors; here it
	// only decides how to log.
	logConfig := logger.DefaultConfig()
	if cfg, err := config.Load(); err == nil {
		logConfig = cfg.GetLoggerConfig()
	}

	closer, err := logger.Setup(logConfig)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer closeLog(closer)

	mainLog := logger.WithComponent("main")
	mainLog.Debug().Msg("Starting billing CLI")

	cmd.Execute()

	mainLog.Debug().Msg("Billing CLI finished")
}

func closeLog(c io.Closer) {
	if err := c.Close(); err != nil {
		log.Printf("Warning: Could not close log output: %v", err)
	}
}
