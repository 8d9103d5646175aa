package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/karyawan-management/internal"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	clearData  bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "karyawan-management",
	Short: "Karyawan Management",
	Long:  `REST backend for managing karyawan, kantor and jabatan records.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// envBindings maps config keys to the environment names operators use.
var envBindings = map[string][]string{
	"env":                                {"ENVIRONMENT", "APP_ENV"},
	"http_server.host":                   {"HOST"},
	"http_server.port":                   {"PORT"},
	"http_server.allowed_origins":        {"CORS_ALLOWED_ORIGINS"},
	"database.source":                    {"DATABASE_URL"},
	"database.max_open_conns":            {"DB_MAX_OPEN_CONNS"},
	"database.max_idle_conns":            {"DB_MAX_IDLE_CONNS"},
	"security.jwt_secret":                {"JWT_SECRET"},
	"security.jwt_expire_hours":          {"JWT_EXPIRE_HOURS"},
	"security.token_codec":               {"TOKEN_CODEC"},
	"security.bcrypt_cost":               {"BCRYPT_COST"},
	"security.default_employee_password": {"DEFAULT_EMPLOYEE_PASSWORD"},
	"storage.photo_dir":                  {"PHOTO_DIR"},
	"observability.logging.level":        {"LOG_LEVEL"},
	"observability.logging.format":       {"LOG_FORMAT"},
}

func loadConfig(path string) (*internal.Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		cfg := internal.LoadConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config from environment: %w", err)
		}
		return cfg, nil
	}

	v := viper.New()
	setDefaults(v, internal.Defaults())

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("error binding env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d internal.Config) {
	v.SetDefault("env", d.Env)

	v.SetDefault("http_server.host", d.Server.Host)
	v.SetDefault("http_server.port", d.Server.Port)
	v.SetDefault("http_server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("http_server.read_header_timeout", d.Server.ReadHeaderTimeout)
	v.SetDefault("http_server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("http_server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("http_server.idle_timeout", d.Server.IdleTimeout)

	v.SetDefault("database.source", d.Database.Source)
	v.SetDefault("database.max_open_conns", d.Database.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", d.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", d.Database.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", d.Database.ConnMaxIdleTime)

	v.SetDefault("security.jwt_secret", d.Security.JWTSecret)
	v.SetDefault("security.jwt_expire_hours", d.Security.JWTExpireHours)
	v.SetDefault("security.token_codec", d.Security.TokenCodec)
	v.SetDefault("security.bcrypt_cost", d.Security.BCryptCost)
	v.SetDefault("security.default_employee_password", d.Security.DefaultEmployeePassword)

	v.SetDefault("storage.photo_dir", d.Storage.PhotoDir)
	v.SetDefault("storage.max_photo_size", d.Storage.MaxPhotoSize)

	v.SetDefault("observability.logging.level", d.Observability.Logging.Level)
	v.SetDefault("observability.logging.format", d.Observability.Logging.Format)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-dir", ".", "directory containing config.yml")
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(photosCmd)
}
