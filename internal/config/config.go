package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the application configuration.
type Config struct {
	Env  string // local | prod
	Bind string
	Port int

	// Storage
	DataDir string
	DBPath  string

	// Auth
	APIKey     string // explicit key; empty means use/generate the key file
	APIKeyFile string
	NoAuth     bool

	// TLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string

	// Rate limiting
	RateLimitRPS   int
	RateLimitBurst int

	// Remote food lookup
	LookupEnabled bool
	LookupBaseURL string

	// Migrations
	RunMigrationsOnStartup bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	env := strings.TrimSpace(os.Getenv("ENV"))
	if env == "" {
		env = "local"
	}

	bind := strings.TrimSpace(os.Getenv("BIND"))
	if bind == "" {
		bind = "127.0.0.1"
	}

	port := envInt("PORT", 8080)

	dataDir := strings.TrimSpace(os.Getenv("DATA_DIR"))
	if dataDir == "" {
		dataDir = "./data"
	}

	// DB_PATH defaults to a file inside the data dir.
	dbPath := strings.TrimSpace(os.Getenv("DB_PATH"))
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "grub.db")
	}

	tlsCert := strings.TrimSpace(os.Getenv("TLS_CERT_FILE"))
	if tlsCert == "" {
		tlsCert = filepath.Join(dataDir, "cert.pem")
	}
	tlsKey := strings.TrimSpace(os.Getenv("TLS_KEY_FILE"))
	if tlsKey == "" {
		tlsKey = filepath.Join(dataDir, "key.pem")
	}

	// LOOKUP_ENABLED defaults to on; set 0/false to run fully offline.
	lookupEnabled := true
	if raw := strings.TrimSpace(os.Getenv("LOOKUP_ENABLED")); raw != "" {
		lookupEnabled = parseBool(raw)
	}

	runMigrations := true
	if raw := strings.TrimSpace(os.Getenv("RUN_MIGRATIONS_ON_STARTUP")); raw != "" {
		runMigrations = parseBool(raw)
	}

	return &Config{
		Env:  env,
		Bind: bind,
		Port: port,

		DataDir: dataDir,
		DBPath:  dbPath,

		APIKey:     strings.TrimSpace(os.Getenv("API_KEY")),
		APIKeyFile: strings.TrimSpace(os.Getenv("API_KEY_FILE")),
		NoAuth:     parseBoolEnv("NO_AUTH"),

		TLSEnabled:  parseBoolEnv("TLS_ENABLED"),
		TLSCertFile: tlsCert,
		TLSKeyFile:  tlsKey,

		RateLimitRPS:   envInt("RATE_LIMIT_RPS", 0),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 0),

		LookupEnabled: lookupEnabled,
		LookupBaseURL: strings.TrimSpace(os.Getenv("LOOKUP_BASE_URL")),

		RunMigrationsOnStartup: runMigrations,
	}
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return c.Bind + ":" + strconv.Itoa(c.Port)
}

// envInt reads an int env var with a default value.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func parseBoolEnv(key string) bool {
	return parseBool(os.Getenv(key))
}

func parseBool(raw string) bool {
	v := strings.ToLower(strings.TrimSpace(raw))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
