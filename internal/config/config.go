package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	MaxUploadMB  int
	LogFile      string

	// дефолты сопоставления, если клиент их не передал
	DefaultThreshold float64
	Scorer           string
	Workers          int
}

func Load() Config {
	port, _ := strconv.Atoi(getenv("PORT", "8082"))
	mb, _ := strconv.Atoi(getenv("MAX_UPLOAD_MB", "256"))
	thr, err := strconv.ParseFloat(getenv("DEFAULT_THRESHOLD", "85"), 64)
	if err != nil {
		thr = 85
	}
	workers, err := strconv.Atoi(getenv("MATCH_WORKERS", "0"))
	if err != nil || workers < 0 {
		workers = 0
	}
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	return Config{
		Host:             getenv("HOST", "127.0.0.1"),
		Port:             port,
		AllowOrigins:     origins,
		LogLevel:         getenv("LOG_LEVEL", "info"),
		MaxUploadMB:      mb,
		LogFile:          getenv("LOG_FILE", "logs/match-service.log"),
		DefaultThreshold: thr,
		Scorer:           getenv("MATCH_SCORER", "token_set"),
		Workers:          workers,
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
