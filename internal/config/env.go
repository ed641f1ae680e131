package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from the given files (".env" when
// none are given). A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overlays SHORTS_* environment variables onto the configuration.
func (c *Config) ApplyEnv() {
	c.Server.Addr = getEnv("SHORTS_ADDR", c.Server.Addr)
	c.Outputs.Dir = getEnv("SHORTS_OUTPUT_DIR", c.Outputs.Dir)
	c.Log.Level = getEnv("SHORTS_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("SHORTS_LOG_FORMAT", c.Log.Format)
	c.Cache.Backend = getEnv("SHORTS_CACHE_BACKEND", c.Cache.Backend)
	c.Cache.RedisAddr = getEnv("SHORTS_REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisDB = getEnvInt("SHORTS_REDIS_DB", c.Cache.RedisDB)
	c.Cache.TTLSeconds = getEnvInt("SHORTS_CACHE_TTL_S", c.Cache.TTLSeconds)
	c.Captions.FontFile = getEnv("SHORTS_FONT_FILE", c.Captions.FontFile)
}

func getEnv(key, fallback string) string {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		return s
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}
