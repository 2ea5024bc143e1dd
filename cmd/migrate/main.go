package main

import (
	"log"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/grubapp/grub/internal/config"
	"github.com/grubapp/grub/internal/dbmigrate"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: go run ./cmd/migrate [up|status|down]")
	}

	command := os.Args[1]
	switch command {
	case "up", "status", "down":
	default:
		log.Fatalf("unsupported command %q (allowed: up, status, down)", command)
	}

	cfg := config.Load()
	log.Printf("migrate: command=%s db=%s", command, cfg.DBPath)

	if err := dbmigrate.Run(command, cfg.DBPath); err != nil {
		log.Fatal(err)
	}

	log.Printf("migrate: %s completed successfully", command)
}
