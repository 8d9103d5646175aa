package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/karyawan-management/api"
	"github.com/frahmantamala/karyawan-management/internal"
	"github.com/frahmantamala/karyawan-management/internal/app"
	"github.com/frahmantamala/karyawan-management/internal/transport/swagger"
	"github.com/frahmantamala/karyawan-management/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := startHTTPServer(); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func startHTTPServer() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Env, cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	log := logger.LoggerWrapper()

	if cfg.Security.UsesInsecureSecret() {
		log.Warn("JWT_SECRET is not set, using the insecure built-in secret; set it before deploying")
	}

	if _, err := swagger.LoadSpec(context.Background(), api.OpenAPI); err != nil {
		return err
	}

	db, rdb, err := openDatabase(cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error("Database close error", "error", err)
		}
	}()

	application, err := app.New(cfg, db, rdb, api.OpenAPI, log)
	if err != nil {
		return fmt.Errorf("failed to assemble application: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           application.Router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", server.Addr, "env", cfg.Env)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	// let pending photo deletions finish before the process exits
	application.Bus.Wait()
	log.Info("Server stopped")
	return nil
}

// openDatabase opens one pgx pool and shares it between gorm for writes and
// sqlx for joined reads.
func openDatabase(cfg internal.DatabaseConfig, log *slog.Logger) (*gorm.DB, *sqlx.DB, error) {
	const driver = "pgx"

	rdb, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	rdb.SetMaxOpenConns(cfg.MaxOpenConns)
	rdb.SetMaxIdleConns(cfg.MaxIdleConns)
	rdb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	rdb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: rdb.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	log.Info("Database connected", "max_open_conns", cfg.MaxOpenConns)
	return db, rdb, nil
}
