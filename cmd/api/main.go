package main

import (
	"log"
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"

	"github.com/grubapp/grub/internal/apikey"
	"github.com/grubapp/grub/internal/config"
	"github.com/grubapp/grub/internal/dbmigrate"
	"github.com/grubapp/grub/internal/httpserver"
	"github.com/grubapp/grub/internal/storage/sqlite"
	"github.com/grubapp/grub/internal/tlscert"
)

func main() {
	cfg := config.Load()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("FATAL startup: create data dir: %v", err)
	}

	if cfg.RunMigrationsOnStartup {
		log.Printf("startup migrations: command=up db=%s", cfg.DBPath)
		if err := dbmigrate.Run("up", cfg.DBPath); err != nil {
			log.Fatalf("FATAL startup migrations failed: %v", err)
		}
		log.Printf("startup migrations: completed")
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("FATAL startup: open database: %v", err)
	}

	key := resolveAPIKey(cfg)

	if cfg.TLSEnabled {
		if err := tlscert.Ensure(cfg.TLSCertFile, cfg.TLSKeyFile); err != nil {
			log.Fatalf("FATAL tls: %v", err)
		}
		fp, err := tlscert.Fingerprint(cfg.TLSCertFile)
		if err != nil {
			log.Fatalf("FATAL tls: %v", err)
		}
		log.Printf("tls: certificate SHA-256 fingerprint %s", fp)
	}

	printStartupBanner(cfg, key)

	server := httpserver.New(cfg, store, key)
	defer server.Close()

	log.Fatal(server.Start())
}

// resolveAPIKey returns the bearer token the server requires, or the
// empty string when auth is disabled.
func resolveAPIKey(cfg *config.Config) string {
	if cfg.NoAuth {
		log.Printf("WARNING auth: NO_AUTH is set, API is unauthenticated")
		return ""
	}

	keyPath := cfg.APIKeyFile
	if keyPath == "" {
		keyPath = filepath.Join(cfg.DataDir, "api_key")
	}
	key, err := apikey.Load(keyPath, cfg.APIKey)
	if err != nil {
		log.Fatalf("FATAL auth: %v", err)
	}
	return key
}

// printStartupBanner logs a one-time summary of the resolved
// configuration. Secrets are only ever printed masked.
func printStartupBanner(cfg *config.Config, key string) {
	log.Println("============== grub ==============")
	log.Printf("  env              = %s", cfg.Env)
	log.Printf("  addr             = %s", cfg.Addr())
	log.Printf("  data_dir         = %s", cfg.DataDir)
	log.Printf("  db_path          = %s", cfg.DBPath)
	log.Printf("  migrations_on_startup = %t", cfg.RunMigrationsOnStartup)

	if key == "" {
		log.Printf("  auth             = disabled")
	} else {
		log.Printf("  auth             = api key %s", apikey.Mask(key))
	}

	log.Printf("  tls              = %t", cfg.TLSEnabled)
	if cfg.TLSEnabled {
		log.Printf("  tls_cert         = %s", cfg.TLSCertFile)
		log.Printf("  tls_key          = %s", cfg.TLSKeyFile)
	}

	if cfg.RateLimitRPS > 0 {
		log.Printf("  rate_limit       = %d rps (burst %d)", cfg.RateLimitRPS, cfg.RateLimitBurst)
	} else {
		log.Printf("  rate_limit       = disabled")
	}

	if cfg.LookupEnabled {
		base := cfg.LookupBaseURL
		if base == "" {
			base = "default"
		}
		log.Printf("  food_lookup      = enabled (%s)", base)
	} else {
		log.Printf("  food_lookup      = disabled")
	}
	log.Println("==================================")
}
