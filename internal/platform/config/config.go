package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	RequestTimeout time.Duration
	LogLevel       string
	LogFormat      string

	Blacklist BlacklistConfig
	Fetch     FetchConfig
	Redis     RedisConfig
}

// BlacklistConfig locates the blacklist source and the bundled resources.
type BlacklistConfig struct {
	File        string
	ResourceDir string
}

// FetchConfig tunes invoice retrieval and the extracted-text cache.
type FetchConfig struct {
	Timeout      time.Duration
	RetryMax     int
	MaxPDFBytes  int64
	TextCacheTTL time.Duration
}

// RedisConfig configures the optional shared text cache. An empty URL keeps
// the cache in process.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load primes the environment from the given .env files (".env" when none
// are named; missing files are skipped) and then reads FromEnv.
func Load(files ...string) (Server, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Server{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var errs []error
	cfg := Server{
		Addr:           getEnv("INVOICEGUARD_ADDR", ":8080"),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 30*time.Second, &errs),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		Blacklist: BlacklistConfig{
			File:        getEnv("BLACKLIST_FILE", "resources/blacklisted_ibans.txt"),
			ResourceDir: getEnv("RESOURCE_DIR", "resources"),
		},
		Fetch: FetchConfig{
			Timeout:      getDuration("FETCH_TIMEOUT", 20*time.Second, &errs),
			RetryMax:     getInt("FETCH_RETRY_MAX", 2, &errs),
			MaxPDFBytes:  int64(getInt("MAX_PDF_BYTES", 20<<20, &errs)),
			TextCacheTTL: getDuration("TEXT_CACHE_TTL", 5*time.Minute, &errs),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10, &errs),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2, &errs),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second, &errs),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second, &errs),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second, &errs),
		},
	}
	if cfg.Fetch.RetryMax < 0 {
		errs = append(errs, fmt.Errorf("FETCH_RETRY_MAX must not be negative"))
	}
	if cfg.Fetch.MaxPDFBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_PDF_BYTES must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int, errs *[]error) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func getDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}
