package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config holds the process configuration, read from .env and the
// environment. Site definitions live in the registry file, see LoadSites.
type Config struct {
	Run      RunConfig
	Fetch    FetchConfig
	Postgres PostgresConfig

	// DotEnvLoaded reports whether a .env file was found.
	DotEnvLoaded bool
}

type RunConfig struct {
	SitesFile      string
	CSVOutputPath  string
	MaxConcurrency int
	LogLevel       string
}

type FetchConfig struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	UserAgent  string
	ChromeBin  string
}

type PostgresConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DB       string
	SSLMode  string
}

// Load reads the .env file, when present, and returns a populated Config.
// Variables already set in the environment win over .env.
func Load() *Config {
	loaded := godotenv.Load() == nil

	return &Config{
		DotEnvLoaded: loaded,
		Run: RunConfig{
			SitesFile:      envString("SITES_FILE", "./sites.yaml"),
			CSVOutputPath:  envString("CSV_OUTPUT_PATH", "./output/listings.csv"),
			MaxConcurrency: envInt("MAX_CONCURRENCY", 3),
			LogLevel:       envString("LOG_LEVEL", "info"),
		},
		Fetch: FetchConfig{
			Timeout:    envDuration("FETCH_TIMEOUT_SEC", 60, time.Second),
			MaxRetries: envInt("MAX_RETRIES", 3),
			RetryDelay: envDuration("RETRY_BASE_DELAY_MS", 2000, time.Millisecond),
			UserAgent:  envString("USER_AGENT", defaultUserAgent),
			ChromeBin:  envString("CHROME_BIN", ""),
		},
		Postgres: PostgresConfig{
			Enabled:  envBool("POSTGRES_ENABLED", false),
			Host:     envString("POSTGRES_HOST", "localhost"),
			Port:     envString("POSTGRES_PORT", "5432"),
			User:     envString("POSTGRES_USER", "scraper"),
			Password: envString("POSTGRES_PASSWORD", "scraper123"),
			DB:       envString("POSTGRES_DB", "listings_db"),
			SSLMode:  envString("POSTGRES_SSLMODE", "disable"),
		},
	}
}

// DSN returns the connection URL understood by lib/pq. Credentials are
// escaped, so passwords may contain any character.
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     p.Host + ":" + p.Port,
		Path:     "/" + p.DB,
		RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
	}
	return u.String()
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(envString(key, "")); err == nil {
		return n
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(envString(key, "")); err == nil {
		return b
	}
	return fallback
}

// envDuration reads a whole number of units; bad or negative values fall
// back.
func envDuration(key string, fallback int, unit time.Duration) time.Duration {
	n := envInt(key, fallback)
	if n < 0 {
		n = fallback
	}
	return time.Duration(n) * unit
}
