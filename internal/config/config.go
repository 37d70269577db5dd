package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret string

	// memory | sqlite | postgres
	StorageBackend string
	DatabaseURL    string
	SQLitePath     string

	// Seed window around onboarding day, in day offsets.
	SeedFromOffset int
	SeedToOffset   int
	// When set, past seeded instances get a stochastic completion
	// backfill from this RNG seed. Unset keeps seeding deterministic.
	SeedRandom     bool
	SeedRandomSeed int64

	// auto | always | never
	ResetPolicy string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		JWTSecret:            mustGetenv("JWT_SECRET"),
		StorageBackend:       getenv("STORAGE_BACKEND", "sqlite"),
		DatabaseURL:          getenv("DATABASE_URL", ""),
		SQLitePath:           getenv("SQLITE_PATH", "mycore.db"),
		SeedFromOffset:       getint("SEED_FROM_OFFSET", -14),
		SeedToOffset:         getint("SEED_TO_OFFSET", 3),
		SeedRandom:           getenv("SEED_RANDOM", "false") == "true",
		SeedRandomSeed:       int64(getint("SEED_RANDOM_SEED", 1)),
		ResetPolicy:          getenv("RESET_POLICY", "auto"),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getint(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func mustGetenv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		panic("missing env: " + key)
	}
	return v
}
