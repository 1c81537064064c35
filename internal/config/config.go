package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken       string
	BotDisabled    bool
	DatabasePath   string
	OpenAIKey      string
	OpenAIModel    string
	OpenAIBaseURL  string
	HTTPAddr       string
	MaxImageBytes  int
	AnalyzeTimeout time.Duration
	HistoryLimit   int
	LogLevel       slog.Level
}

func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		BotToken:      os.Getenv("BOT_TOKEN"),
		DatabasePath:  getenv("DATABASE_PATH", "./blackjack.db"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getenv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		HTTPAddr:      ":8000",
		HistoryLimit:  5,
	}

	// пустой HTTP_ADDR отключает HTTP API
	if v, ok := os.LookupEnv("HTTP_ADDR"); ok {
		cfg.HTTPAddr = strings.TrimSpace(v)
	}

	var err error
	if cfg.BotDisabled, err = getbool("BOT_DISABLED", false); err != nil {
		return nil, err
	}
	if !cfg.BotDisabled && cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is not set")
	}
	if cfg.BotDisabled && cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("nothing to run: bot disabled and HTTP_ADDR empty")
	}

	if cfg.MaxImageBytes, err = getint("MAX_IMAGE_BYTES", 10<<20); err != nil {
		return nil, err
	}
	if cfg.AnalyzeTimeout, err = getduration("ANALYZE_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if err = cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func getbool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", key, v)
	}
	return b, nil
}

func getduration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}
