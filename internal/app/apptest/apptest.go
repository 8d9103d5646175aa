// Package apptest runs the whole application over an in-memory SQLite
// database for HTTP level tests.
package apptest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"

	"github.com/frahmantamala/karyawan-management/internal"
	"github.com/frahmantamala/karyawan-management/internal/app"
	karyawanDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/karyawan"
	pkgLogger "github.com/frahmantamala/karyawan-management/pkg/logger"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Env is one isolated application instance.
type Env struct {
	App    *app.App
	DB     *gorm.DB
	Config *internal.Config
}

// Response is the decoded envelope with the raw data kept for typed decoding.
type Response struct {
	Status  int             `json:"-"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

// DecodeData unmarshals the data member into dst.
func (r *Response) DecodeData(dst interface{}) error {
	return json.Unmarshal(r.Data, dst)
}

// New builds an application storing photos under photoDir. openAPI may be nil.
func New(photoDir string, openAPI []byte) (*Env, error) {
	pkgLogger.Init("test", "error", "text")

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// every connection to :memory: is its own database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(karyawanDatamodel.All()...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	cfg := internal.Defaults()
	cfg.Env = "test"
	cfg.Security.JWTSecret = "apptest-secret"
	cfg.Security.BCryptCost = bcrypt.MinCost
	cfg.Storage.PhotoDir = photoDir

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := app.New(&cfg, db, sqlx.NewDb(sqlDB, "sqlite3"), openAPI, logger)
	if err != nil {
		return nil, err
	}
	return &Env{App: a, DB: db, Config: &cfg}, nil
}

// Close waits for background handlers and releases the database.
func (e *Env) Close() error {
	e.App.Bus.Wait()
	sqlDB, err := e.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Do serves one request through the router.
func (e *Env) Do(req *http.Request) (*Response, error) {
	rec := httptest.NewRecorder()
	e.App.Router.ServeHTTP(rec, req)

	out := &Response{Status: rec.Code}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			return nil, fmt.Errorf("decode %s %s (%d): %w: %s", req.Method, req.URL.Path, rec.Code, err, rec.Body.String())
		}
	}
	return out, nil
}

// JSON serves a request with body encoded as JSON. An empty token sends no
// Authorization header.
func (e *Env) JSON(method, path, token string, body interface{}) (*Response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	authorize(req, token)
	return e.Do(req)
}

// File is a file part of a multipart request.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// Multipart serves a multipart/form-data request with fields and an
// optional "foto" part.
func (e *Env) Multipart(method, path, token string, fields map[string]string, foto *File) (*Response, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if foto != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="foto"; filename=%q`, foto.Name))
		h.Set("Content-Type", foto.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(foto.Content); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	authorize(req, token)
	return e.Do(req)
}

// Login registers username with password "password123" and returns a token.
func (e *Env) Login(username string) (string, error) {
	reg, err := e.JSON(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	if err != nil {
		return "", err
	}
	if reg.Status != http.StatusCreated {
		return "", fmt.Errorf("register %s: %d %v", username, reg.Status, reg.Errors)
	}

	resp, err := e.JSON(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username_or_email": username,
		"password":          "password123",
	})
	if err != nil {
		return "", err
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := resp.DecodeData(&login); err != nil {
		return "", err
	}
	return login.Token, nil
}

// PNG returns n bytes that sniff as a PNG image.
func PNG(n int) []byte {
	content := make([]byte, n)
	copy(content, "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	return content
}

func authorize(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
