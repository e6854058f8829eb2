// Command server is an example service wiring the utility packages
// together: merged configuration with remote secrets, the API-key and
// dummy-response middleware, and the database connection bundle.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luismalamoc/my-utility-package/apperrors"
	"github.com/luismalamoc/my-utility-package/config"
	"github.com/luismalamoc/my-utility-package/correlation"
	"github.com/luismalamoc/my-utility-package/database"
	"github.com/luismalamoc/my-utility-package/logging"
	"github.com/luismalamoc/my-utility-package/middleware"
	"github.com/luismalamoc/my-utility-package/secrets"
)

const readinessProbeTimeout = 5 * time.Second

type settings struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	APIKey       string `env:"APP_API_KEY"`
	APIKeyHeader string `env:"API_KEY_HEADER" default:"X-API-Key"`

	DummyActive bool `env:"DUMMY_ACTIVE" default:"false"`

	DBDriver   string        `env:"DB_DRIVER" default:"postgres"`
	DBUser     string        `env:"DB_USER"`
	DBPassword string        `env:"DB_PASSWORD"`
	DBHost     string        `env:"DB_HOST"`
	DBPort     int           `env:"DB_PORT" default:"5432"`
	DBName     string        `env:"DB_NAME"`
	DBTimeout  time.Duration `env:"DB_TIMEOUT" default:"10s"`
}

func validate(s *settings) error {
	required := map[string]string{
		"APP_API_KEY": s.APIKey,
		"DB_USER":     s.DBUser,
		"DB_PASSWORD": s.DBPassword,
		"DB_HOST":     s.DBHost,
		"DB_NAME":     s.DBName,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	return nil
}

// setupConfig loads the merged configuration. The env file must be read
// before the secret service is reachable: its region and credentials come
// from already-loaded environment variables.
func setupConfig(ctx context.Context) *config.Config {
	envFile := config.DefaultEnvFile
	if path := os.Getenv("ENV_FILE"); path != "" {
		envFile = path
	}
	_ = godotenv.Load(envFile)

	var fetcher secrets.Fetcher
	if os.Getenv(config.DefaultSecretNamesKey) != "" {
		region := os.Getenv("AWS_DEFAULT_REGION")
		if region == "" {
			log.Fatal("AWS_DEFAULT_REGION is required when shared secrets are configured")
		}
		client, err := secrets.NewClient(ctx, region)
		if err != nil {
			log.Fatalf("Failed to create secrets client: %v", err)
		}
		fetcher = client
	}

	cfg, err := config.Load(ctx, config.Options{EnvFile: envFile, Secrets: fetcher})
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(ctx context.Context, s *settings) *database.Connection {
	ctx, cancel := context.WithTimeout(ctx, s.DBTimeout)
	defer cancel()

	conn, err := database.Connect(ctx, database.ConnectionParams{
		Driver:         s.DBDriver,
		User:           s.DBUser,
		Password:       s.DBPassword,
		Host:           s.DBHost,
		Port:           s.DBPort,
		Database:       s.DBName,
		ConnectTimeout: s.DBTimeout,
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	return conn
}

func newServer(s *settings, conn *database.Connection) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(correlation.Middleware())
	e.Use(apperrors.Middleware())

	e.GET("/health/live", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), readinessProbeTimeout)
		defer cancel()
		if err := conn.Engine().Ping(ctx); err != nil {
			return apperrors.ConnectionError("database not ready", err)
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	guard := middleware.APIKeyWithConfig(middleware.APIKeyConfig{
		Key:    s.APIKey,
		Header: s.APIKeyHeader,
	})
	dummy := middleware.DummyWithConfig(middleware.DummyConfig{
		Active:  s.DummyActive,
		Payload: map[string]string{"message": "dummy mode active"},
	})

	api := e.Group("/api", guard, dummy)
	api.GET("/tables", func(c echo.Context) error {
		meta, err := conn.Metadata(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, meta)
	})

	return e
}

func main() {
	ctx := context.Background()

	cfg := setupConfig(ctx)

	var s settings
	if err := cfg.Unmarshal(&s); err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	if err := validate(&s); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	logging.InitLogger(s.LogLevel, s.LogFormat)
	slog.Info("Application starting", "env", s.AppEnv, "port", s.Port)

	conn := setupDB(ctx, &s)
	defer conn.Close()

	e := newServer(&s, conn)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	}()

	slog.Info("Starting server", "port", s.Port)
	if err := e.Start(":" + s.Port); err != nil && err != http.ErrServerClosed {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
