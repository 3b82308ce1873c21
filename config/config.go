// Package config reads server settings from the environment, falling back to
// an optional .env file and then to built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"portfolio-snake/constants"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	defaultPort      = "8080"
	defaultAdminUser = "admin"
	defaultSTUN      = "stun:stun.l.google.com:19302"
)

type Config struct {
	Port          string
	StorePath     string // empty keeps the leaderboard in memory
	TickRate      time.Duration
	JWTSecret     string
	AdminUser     string
	AdminPassword string // empty disables admin login
	AllowedOrigin string // empty allows any origin
	STUNURLs      []string
}

// Load builds a Config. Variables already in the environment win over the
// files; files that don't exist are skipped. With no files given, ./.env is
// tried.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	fileEnv := map[string]string{}
	for _, file := range files {
		values, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("reading %s: %w", file, err)
		}
		for k, v := range values {
			if _, seen := fileEnv[k]; !seen {
				fileEnv[k] = v
			}
		}
	}

	get := func(key, fallback string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		if v, ok := fileEnv[key]; ok && v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Port:          get("PORT", defaultPort),
		StorePath:     get("STORE_PATH", ""),
		JWTSecret:     get("JWT_SECRET", ""),
		AdminUser:     get("ADMIN_USER", defaultAdminUser),
		AdminPassword: get("ADMIN_PASSWORD", ""),
		AllowedOrigin: get("ALLOWED_ORIGIN", ""),
		STUNURLs:      splitList(get("STUN_URLS", defaultSTUN)),
	}

	tickRate := get("TICK_RATE", "")
	cfg.TickRate = constants.TICK_RATE
	if tickRate != "" {
		d, err := time.ParseDuration(tickRate)
		if err != nil {
			return Config{}, fmt.Errorf("parsing TICK_RATE: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("TICK_RATE must be positive, got %s", d)
		}
		cfg.TickRate = d
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = uuid.NewString()
		if cfg.AdminPassword != "" {
			log.Printf("JWT_SECRET not set, admin tokens will not survive a restart")
		}
	}

	return cfg, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
