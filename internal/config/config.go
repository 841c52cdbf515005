package config

import (
	"os"
	"time"
)

// Config carries every tunable of the gateway. Values come from the
// environment; defaults match the storefront's original timings.
type Config struct {
	Addr         string
	OrderAPIBase string

	// RequestTimeout bounds every call to the remote order API.
	RequestTimeout time.Duration

	// Dashboard polling and notification windows.
	PollInterval    time.Duration
	FreshnessWindow time.Duration
	NotificationTTL time.Duration

	// SettlementDelay simulates the digital-payment confirmation wait.
	SettlementDelay time.Duration
}

func Load() Config {
	return Config{
		Addr:            getString("STOREFRONT_ADDR", ":8080"),
		OrderAPIBase:    getString("ORDER_API_BASE_URL", "http://localhost:3001"),
		RequestTimeout:  getDuration("ORDER_API_TIMEOUT", 10*time.Second),
		PollInterval:    getDuration("DASHBOARD_POLL_INTERVAL", 10*time.Second),
		FreshnessWindow: getDuration("NOTIFICATION_FRESHNESS_WINDOW", 15*time.Second),
		NotificationTTL: getDuration("NOTIFICATION_TTL", 5*time.Second),
		SettlementDelay: getDuration("SETTLEMENT_DELAY", 3*time.Second),
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
