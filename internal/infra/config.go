package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment
// variables. Everything is fixed at startup; there is no runtime
// reconfiguration.
type Config struct {
	AppEnv           string
	Port             string
	UploadDir        string
	OutputDir        string
	TemplatePath     string
	HandwriteBin     string
	ToolTimeout      time.Duration
	MaxUploadBytes   int64
	AllowedExts      []string
	DefaultLocale    string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),
		OutputDir:        getEnv("OUTPUT_DIR", "outputs"),
		TemplatePath:     getEnv("TEMPLATE_PATH", "template.jpg"),
		HandwriteBin:     getEnv("HANDWRITE_BIN", "handwrite"),
		ToolTimeout:      time.Second * time.Duration(getEnvInt("TOOL_TIMEOUT_SECONDS", 120)),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_BYTES", 5*1024*1024)),
		AllowedExts:      getEnvList("ALLOWED_EXTENSIONS", []string{"png", "jpg", "jpeg"}),
		DefaultLocale:    getEnv("DEFAULT_LOCALE", "en"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 60)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
