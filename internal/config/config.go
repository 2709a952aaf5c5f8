package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	DBDriver     string
	DatabaseURL  string // postgres
	DatabasePath string // sqlite

	RedisURL string

	ServerPort         string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration

	JWTSecret         string
	AccessTokenMaxAge int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	accessTokenMaxAge, err := strconv.Atoi(os.Getenv("ACCESS_TOKEN_MAX_AGE"))
	if err != nil || accessTokenMaxAge <= 0 {
		accessTokenMaxAge = 86400
	}

	shutdownSeconds, err := strconv.Atoi(os.Getenv("SHUTDOWN_TIMEOUT"))
	if err != nil || shutdownSeconds <= 0 {
		shutdownSeconds = 10
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	driver := strings.ToLower(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = DriverSQLite
	}

	databasePath := os.Getenv("DATABASE_PATH")
	if databasePath == "" {
		databasePath = "minisocial.db"
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" && os.Getenv("DB_HOST") != "" {
		sslMode := os.Getenv("DB_SSLMODE")
		if sslMode == "" {
			sslMode = "require"
		}
		databaseURL = (&url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD")),
			Host:     os.Getenv("DB_HOST") + ":" + os.Getenv("DB_PORT"),
			Path:     "/" + os.Getenv("DB_NAME"),
			RawQuery: "sslmode=" + sslMode,
		}).String()
	}

	origins := []string{"*"}
	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return &Config{
		DBDriver:     driver,
		DatabaseURL:  databaseURL,
		DatabasePath: databasePath,

		RedisURL: os.Getenv("REDIS_URL"),

		ServerPort:         serverPort,
		CORSAllowedOrigins: origins,
		ShutdownTimeout:    time.Duration(shutdownSeconds) * time.Second,

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AccessTokenMaxAge: accessTokenMaxAge,
	}, nil
}

// Validate checks the settings the HTTP server cannot run without.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL or DB_HOST must be set for the postgres driver")
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	return nil
}
