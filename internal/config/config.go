// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Report   ReportConfig
	Storage  StorageConfig
	Drive    DriveConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// DatabaseConfig selects the row store. Driver is one of sqlite3, postgres or pgx.
type DatabaseConfig struct {
	Driver        string
	SQLitePath    string
	URL           string
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MaxConcurrent int64
}

type AppConfig struct {
	DataDir        string
	LogLevel       string
	SQLToolEnabled bool
	SearchEnabled  bool
	SQLRowLimit    int
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	MetricTTLSeconds int
}

type ReportConfig struct {
	ProgramStart  time.Time
	ChartsEnabled bool
	ArchivePrefix string
}

// StorageConfig holds the S3-compatible bucket used for spreadsheet sources
// and report archives. Empty Endpoint disables it.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type DriveConfig struct {
	CredentialsFile string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults()

		// Read from environment variables
		viper.AutomaticEnv()

		ensureDir(viper.GetString("APP_DATA_DIR"))

		instance = fromViper()
	})

	return instance
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("SERVER_READ_TIMEOUT", 30)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 60)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("DB_DRIVER", "sqlite3")
	viper.SetDefault("SQLITE_PATH", "meus_dados.db")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "marina")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONCURRENT", 10)
	viper.SetDefault("APP_DATA_DIR", "./data")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SQL_TOOL_ENABLED", true)
	viper.SetDefault("SEARCH_ENABLED", true)
	viper.SetDefault("SQL_TOOL_ROW_LIMIT", 50)
	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_METRIC_TTL_SECONDS", 60)
	viper.SetDefault("REPORT_PROGRAM_START", "2019-01-01")
	viper.SetDefault("CHARTS_ENABLED", true)
	viper.SetDefault("REPORT_ARCHIVE_PREFIX", "reports")
	viper.SetDefault("STORAGE_ENDPOINT", "")
	viper.SetDefault("STORAGE_REGION", "us-east-1")
	viper.SetDefault("STORAGE_USE_SSL", true)
	viper.SetDefault("GOOGLE_CREDENTIALS_FILE", "")
}

func fromViper() *Config {
	programStart, err := time.Parse("2006-01-02", viper.GetString("REPORT_PROGRAM_START"))
	if err != nil {
		log.Printf("invalid REPORT_PROGRAM_START %q, using 2019-01-01", viper.GetString("REPORT_PROGRAM_START"))
		programStart = time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Mode:           viper.GetString("SERVER_MODE"),
			ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Driver:        strings.ToLower(viper.GetString("DB_DRIVER")),
			SQLitePath:    viper.GetString("SQLITE_PATH"),
			URL:           viper.GetString("DATABASE_URL"),
			Host:          viper.GetString("DB_HOST"),
			Port:          viper.GetString("DB_PORT"),
			User:          viper.GetString("DB_USER"),
			Password:      viper.GetString("DB_PASSWORD"),
			DBName:        viper.GetString("DB_NAME"),
			SSLMode:       viper.GetString("DB_SSLMODE"),
			MaxConcurrent: viper.GetInt64("DB_MAX_CONCURRENT"),
		},
		App: AppConfig{
			DataDir:        viper.GetString("APP_DATA_DIR"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			SQLToolEnabled: viper.GetBool("SQL_TOOL_ENABLED"),
			SearchEnabled:  viper.GetBool("SEARCH_ENABLED"),
			SQLRowLimit:    viper.GetInt("SQL_TOOL_ROW_LIMIT"),
		},
		Cache: CacheConfig{
			Enabled:          viper.GetBool("CACHE_ENABLED"),
			RedisURL:         viper.GetString("REDIS_URL"),
			RedisHost:        viper.GetString("REDIS_HOST"),
			RedisPort:        viper.GetString("REDIS_PORT"),
			RedisPassword:    viper.GetString("REDIS_PASSWORD"),
			RedisDB:          viper.GetInt("REDIS_DB"),
			MetricTTLSeconds: viper.GetInt("CACHE_METRIC_TTL_SECONDS"),
		},
		Report: ReportConfig{
			ProgramStart:  programStart,
			ChartsEnabled: viper.GetBool("CHARTS_ENABLED"),
			ArchivePrefix: viper.GetString("REPORT_ARCHIVE_PREFIX"),
		},
		Storage: StorageConfig{
			Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
			AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
			Bucket:    viper.GetString("STORAGE_BUCKET"),
			Region:    viper.GetString("STORAGE_REGION"),
			UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
		},
		Drive: DriveConfig{
			CredentialsFile: viper.GetString("GOOGLE_CREDENTIALS_FILE"),
		},
	}
}

// DSN returns the connection string for the configured driver.
func (c DatabaseConfig) DSN() string {
	switch c.Driver {
	case "postgres", "pgx":
		if c.URL != "" {
			return c.URL
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	default:
		if c.URL != "" {
			return c.URL
		}
		return c.SQLitePath
	}
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
