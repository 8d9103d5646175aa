// Package app assembles repositories, services and handlers into the HTTP
// application. The server command and the integration tests share it.
package app

import (
	"fmt"
	"log/slog"

	"github.com/frahmantamala/karyawan-management/internal"
	"github.com/frahmantamala/karyawan-management/internal/auth"
	authPostgres "github.com/frahmantamala/karyawan-management/internal/auth/postgres"
	jabatanDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/jabatan"
	kantorDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/kantor"
	karyawanDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/karyawan"
	"github.com/frahmantamala/karyawan-management/internal/core/events"
	"github.com/frahmantamala/karyawan-management/internal/crud"
	"github.com/frahmantamala/karyawan-management/internal/jabatan"
	"github.com/frahmantamala/karyawan-management/internal/kantor"
	"github.com/frahmantamala/karyawan-management/internal/karyawan"
	karyawanPostgres "github.com/frahmantamala/karyawan-management/internal/karyawan/postgres"
	"github.com/frahmantamala/karyawan-management/internal/storage"
	"github.com/frahmantamala/karyawan-management/internal/transport"
	"github.com/frahmantamala/karyawan-management/internal/transport/rest"
	"github.com/frahmantamala/karyawan-management/internal/user"
	userPostgres "github.com/frahmantamala/karyawan-management/internal/user/postgres"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

type App struct {
	Router    *chi.Mux
	Bus       *events.EventBus
	Photos    *storage.PhotoStore
	Tokens    *auth.TokenService
	Passwords *auth.PasswordService
	Users     *user.Service
	Karyawans *karyawan.Service
}

// New wires the application over db for writes and rdb for joined reads.
// Both must reach the same database.
func New(cfg *internal.Config, db *gorm.DB, rdb *sqlx.DB, openAPI []byte, logger *slog.Logger) (*App, error) {
	codec, err := auth.NewSigningCodec(cfg.Security.TokenCodec, cfg.Security.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}
	tokens := auth.NewTokenService(auth.TokenConfig{
		Secret:      cfg.Security.JWTSecret,
		ExpireHours: cfg.Security.JWTExpireHours,
	}, codec)
	passwords := auth.NewPasswordService(cfg.Security.BCryptCost)

	users := user.NewService(userPostgres.NewUserRepository(db), passwords, cfg.Security.DefaultEmployeePassword, logger)
	authService := auth.NewService(authPostgres.NewRepository(db), users, tokens, passwords, logger)

	bus := events.NewEventBus(logger)
	photos := storage.NewPhotoStore(cfg.Storage.PhotoDir, cfg.Storage.MaxPhotoSize, logger)
	photos.Subscribe(bus)

	kantorRepo := crud.NewRepository[kantorDatamodel.Kantor](db)
	jabatanRepo := crud.NewRepository[jabatanDatamodel.Jabatan](db)
	karyawanRepo := crud.NewRepository[karyawanDatamodel.Karyawan](db)

	karyawanResource := karyawan.NewResource(karyawan.References{
		Kantors:  kantorRepo,
		Jabatans: jabatanRepo,
		Users:    users,
	}, users, bus, logger)
	karyawanService := karyawan.NewService(
		karyawanRepo,
		karyawanResource,
		karyawanPostgres.NewDetailReader(rdb),
		photos,
		bus,
		logger,
	)

	base := transport.NewBaseHandler(logger)
	router := rest.NewRouter(rest.Deps{
		DB:             rdb.DB,
		Logger:         logger,
		AllowedOrigins: cfg.Server.Origins(),
		Production:     cfg.IsProduction(),
		OpenAPI:        openAPI,
		Photos:         photos.FileServer(),
		PhotoPrefix:    storage.PublicPrefix,

		Auth: auth.NewHandler(base, authService),
		User: user.NewHandler(base),
		Kantors: crud.NewHandler(base,
			crud.NewService[kantorDatamodel.Kantor, kantor.Payload](kantorRepo, kantor.NewResource(), logger)),
		Jabatans: crud.NewHandler(base,
			crud.NewService[jabatanDatamodel.Jabatan, jabatan.Payload](jabatanRepo, jabatan.NewResource(), logger)),
		Karyawans: karyawan.NewHandler(base, karyawanService, cfg.Storage.MaxPhotoSize),
	})

	return &App{
		Router:    router,
		Bus:       bus,
		Photos:    photos,
		Tokens:    tokens,
		Passwords: passwords,
		Users:     users,
		Karyawans: karyawanService,
	}, nil
}
