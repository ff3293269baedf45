package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	TargetsSourceWMCtrl = "wmctrl"
	TargetsSourceStatic = "static"
)

type Config struct {
	APIPort   string
	LogLevel  string
	LogFormat string

	ModelEnabled         bool
	OllamaURL            string
	OllamaGenModel       string
	OllamaTimeoutSeconds int

	RetryMaxAttempts int
	BreakerEnabled   bool

	WatcherEnabled      bool
	ClipboardPollMillis int
	ExcludedTitles      []string

	TargetsSource string
	TargetsFile   string
	TargetsReload bool

	NATSURL     string
	NATSSubject string

	APIRateLimitRPS          float64
	APIRateLimitBurst        int
	APIMaxInFlight           int
	APIBackpressureWaitMilli int
}

func Load() Config {
	return Config{
		APIPort:   mustEnv("API_PORT", "8080"),
		LogLevel:  mustEnv("LOG_LEVEL", "info"),
		LogFormat: mustEnv("LOG_FORMAT", "json"),

		ModelEnabled:         mustEnvBool("MODEL_ENABLED", false),
		OllamaURL:            mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaGenModel:       mustEnv("OLLAMA_GEN_MODEL", "qwen2.5:0.5b"),
		OllamaTimeoutSeconds: mustEnvInt("OLLAMA_TIMEOUT_SECONDS", 10),

		RetryMaxAttempts: mustEnvInt("RETRY_MAX_ATTEMPTS", 2),
		BreakerEnabled:   mustEnvBool("BREAKER_ENABLED", true),

		WatcherEnabled:      mustEnvBool("WATCHER_ENABLED", false),
		ClipboardPollMillis: mustEnvInt("CLIPBOARD_POLL_MILLIS", 500),
		ExcludedTitles:      mustEnvList("EXCLUDED_TITLES", []string{"multitask helper", "multi-task helper"}),

		TargetsSource: strings.ToLower(mustEnv("TARGETS_SOURCE", TargetsSourceWMCtrl)),
		TargetsFile:   mustEnv("TARGETS_FILE", "./targets.yaml"),
		TargetsReload: mustEnvBool("TARGETS_RELOAD", true),

		NATSURL:     mustEnv("NATS_URL", ""),
		NATSSubject: mustEnv("NATS_SUBJECT", "helper.suggestions"),

		APIRateLimitRPS:          mustEnvFloat("API_RATE_LIMIT_RPS", 20),
		APIRateLimitBurst:        mustEnvInt("API_RATE_LIMIT_BURST", 40),
		APIMaxInFlight:           mustEnvInt("API_MAX_IN_FLIGHT", 4),
		APIBackpressureWaitMilli: mustEnvInt("API_BACKPRESSURE_WAIT_MS", 250),
	}
}

func (c Config) ClipboardPollInterval() time.Duration {
	return time.Duration(c.ClipboardPollMillis) * time.Millisecond
}

func (c Config) OllamaTimeout() time.Duration {
	return time.Duration(c.OllamaTimeoutSeconds) * time.Second
}

func (c Config) BackpressureWait() time.Duration {
	return time.Duration(c.APIBackpressureWaitMilli) * time.Millisecond
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// mustEnvList splits a comma-separated value and drops empty items.
func mustEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
