package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var DefaultEnvConfig *EnvConfig

// EnvConfig holds the process settings read from the environment.
type EnvConfig struct {
	// server config
	APP_PORT string
	// generator config
	OUTPUT_DIR          string
	ENCRYPTOR           string
	MSOFFICE_CRYPT_PATH string
	EXTRA_ROW_COUNT     int
	ENCRYPT_WORKERS     int
	ENCRYPT_RETRIES     int
	// google sheets config
	GOOGLE_API_KEY          string
	GOOGLE_CREDENTIALS_FILE string
	// ledger config
	LEDGER_BACKEND       string
	SQLITE_PATH          string
	DB_HOST              string
	DB_PORT              int
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_CONN_MAX_LIFETIME time.Duration
	DB_MAX_IDLE_CONNS    int
	DB_MAX_OPEN_CONNS    int
	DATASTORE_PROJECT_ID string
	ELASTIC_URL          string
	ELASTIC_INDEX        string
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string
}

// LoadEnvConfig reads the given env files (".env" when none is given) and
// fills DefaultEnvConfig. Missing env files are not an error.
func LoadEnvConfig(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	DefaultEnvConfig = &EnvConfig{
		APP_PORT:                getEnvString("APP_PORT", "8080"),
		OUTPUT_DIR:              getEnvString("OUTPUT_DIR", "output"),
		ENCRYPTOR:               strings.ToLower(getEnvString("ENCRYPTOR", "native")),
		MSOFFICE_CRYPT_PATH:     getEnvString("MSOFFICE_CRYPT_PATH", "msoffice-crypt"),
		EXTRA_ROW_COUNT:         getEnvInt("EXTRA_ROW_COUNT", 100),
		ENCRYPT_WORKERS:         getEnvInt("ENCRYPT_WORKERS", 4),
		ENCRYPT_RETRIES:         getEnvInt("ENCRYPT_RETRIES", 1),
		GOOGLE_API_KEY:          getEnvString("GOOGLE_API_KEY", ""),
		GOOGLE_CREDENTIALS_FILE: getEnvString("GOOGLE_CREDENTIALS_FILE", ""),
		LEDGER_BACKEND:          strings.ToLower(getEnvString("LEDGER_BACKEND", "none")),
		SQLITE_PATH:             getEnvString("SQLITE_PATH", "xlfilecreator.db"),
		DB_HOST:                 getEnvString("DB_HOST", "localhost"),
		DB_PORT:                 getEnvInt("DB_PORT", 5432),
		DB_USER:                 getEnvString("DB_USER", "postgres"),
		DB_PASSWORD:             getEnvString("DB_PASSWORD", "postgres"),
		DB_NAME:                 getEnvString("DB_NAME", "postgres"),
		DB_SSL_MODE:             getEnvString("DB_SSL_MODE", "disable"),
		DB_CONN_MAX_LIFETIME:    getEnvDuration("DB_CONN_MAX_LIFETIME", 20*time.Minute),
		DB_MAX_IDLE_CONNS:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DB_MAX_OPEN_CONNS:       getEnvInt("DB_MAX_OPEN_CONNS", 100),
		DATASTORE_PROJECT_ID:    getEnvString("DATASTORE_PROJECT_ID", ""),
		ELASTIC_URL:             getEnvString("ELASTIC_URL", "http://localhost:9200"),
		ELASTIC_INDEX:           getEnvString("ELASTIC_INDEX", "xlfilecreator-files"),
		LOG_FILE_PATH:           getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:               getEnvString("LOG_LEVEL", "info"),
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
