package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config menampung konfigurasi console dari environment.
type Config struct {
	// Backend Pizza Dolce yang dikonsumsi
	APIBaseURL string
	WSURL      string

	// Token dari env; kalau kosong dipakai token yang dipersist
	AuthToken string

	// Alamat listen untuk UI staff
	ListenAddr string

	// Interval reconcile polling
	PollInterval time.Duration

	// Lokasi database preferensi lokal
	DataDir string
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Load membaca konfigurasi dari environment dan memvalidasinya.
func Load() (*Config, error) {
	cfg := &Config{
		APIBaseURL: getEnv("STAFF_API_BASE_URL", "http://localhost:8080/api"),
		WSURL:      getEnv("STAFF_WS_URL", "ws://localhost:8080/ws"),
		AuthToken:  os.Getenv("STAFF_AUTH_TOKEN"),
		ListenAddr: getEnv("LISTEN_ADDR", ":8090"),
		DataDir:    getEnv("DATA_DIR", "."),
	}

	interval := getEnv("POLL_INTERVAL_SECONDS", "30")
	seconds, err := strconv.Atoi(interval)
	if err != nil || seconds <= 0 {
		return nil, fmt.Errorf("invalid POLL_INTERVAL_SECONDS %q", interval)
	}
	cfg.PollInterval = time.Duration(seconds) * time.Second

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("STAFF_API_BASE_URL must not be empty")
	}
	if cfg.WSURL == "" {
		return nil, fmt.Errorf("STAFF_WS_URL must not be empty")
	}

	return cfg, nil
}
