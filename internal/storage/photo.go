package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/frahmantamala/karyawan-management/internal"
	"github.com/frahmantamala/karyawan-management/internal/core/events"
	"github.com/google/uuid"
)

const sniffLen = 512

type photoType struct {
	canonical string
	ext       string
}

// allowedTypes maps accepted declared MIME types to the canonical type and
// file extension stored on disk.
var allowedTypes = map[string]photoType{
	"image/jpeg": {"image/jpeg", ".jpg"},
	"image/jpg":  {"image/jpeg", ".jpg"},
	"image/png":  {"image/png", ".png"},
	"image/webp": {"image/webp", ".webp"},
}

// Photo describes a stored file as recorded on the employee row.
type Photo struct {
	Path         string
	OriginalName string
	Size         int64
	MimeType     string
}

// PhotoStore keeps employee photos on the local filesystem.
type PhotoStore struct {
	dir     string
	maxSize int64
	logger  *slog.Logger
}

func NewPhotoStore(dir string, maxSize int64, logger *slog.Logger) *PhotoStore {
	return &PhotoStore{
		dir:     filepath.Clean(dir),
		maxSize: maxSize,
		logger:  logger,
	}
}

func (s *PhotoStore) Dir() string {
	return s.dir
}

func (s *PhotoStore) MaxSize() int64 {
	return s.maxSize
}

// Check validates an uploaded part, content included, without writing
// anything.
func (s *PhotoStore) Check(fh *multipart.FileHeader) error {
	if err := s.checkHeader(fh); err != nil {
		return err
	}

	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	_, _, err = sniff(src)
	return err
}

func (s *PhotoStore) checkHeader(fh *multipart.FileHeader) error {
	if fh.Size == 0 {
		return photoError("File is empty")
	}
	if fh.Size > s.maxSize {
		return photoError(fmt.Sprintf("File too large. Maximum size is %dMB, got: %d bytes", s.maxSize/(1024*1024), fh.Size))
	}
	if _, ok := lookupType(fh.Header.Get("Content-Type")); !ok {
		return photoError(fmt.Sprintf("Invalid file type. Only JPEG, PNG, and WebP images are allowed. Got: %s", fh.Header.Get("Content-Type")))
	}
	return nil
}

// sniff reads the head of src and reports the image type its content has.
func sniff(src io.Reader) ([]byte, photoType, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, photoType{}, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	sniffed, ok := lookupType(http.DetectContentType(head))
	if !ok {
		return nil, photoType{}, photoError("Invalid file type. File content is not a JPEG, PNG, or WebP image")
	}
	return head, sniffed, nil
}

// Save validates fh, confirms its content really is an allowed image and
// writes it under a fresh unique name.
func (s *PhotoStore) Save(ctx context.Context, fh *multipart.FileHeader) (*Photo, error) {
	if err := s.checkHeader(fh); err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	head, sniffed, err := sniff(src)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	name := fmt.Sprintf("karyawan_%s%s", uuid.NewString(), sniffed.ext)
	path := filepath.Join(s.dir, name)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create photo file: %w", err)
	}

	written, err := io.Copy(dst, io.LimitReader(io.MultiReader(bytes.NewReader(head), src), s.maxSize+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > s.maxSize {
		err = photoError(fmt.Sprintf("File too large. Maximum size is %dMB", s.maxSize/(1024*1024)))
	}
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			s.logger.Warn("failed to remove partial photo", "path", path, "error", rmErr)
		}
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("write photo file: %w", err)
	}

	s.logger.Info("photo stored", "path", path, "size", written)
	return &Photo{
		Path:         filepath.ToSlash(path),
		OriginalName: filepath.Base(fh.Filename),
		Size:         written,
		MimeType:     sniffed.canonical,
	}, nil
}

// Delete removes a stored photo. Paths outside the photo directory are
// refused and a missing file is not an error.
func (s *PhotoStore) Delete(path string) error {
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.Dir(clean) != s.dir {
		return fmt.Errorf("refusing to delete %q outside %q", path, s.dir)
	}
	if err := os.Remove(clean); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}

// Orphans lists stored files that are not among referenced and were last
// modified before cutoff. Newer files may belong to an upload whose row has
// not been committed yet, so they are never reported.
func (s *PhotoStore) Orphans(referenced []string, cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read photo directory: %w", err)
	}

	inUse := make(map[string]struct{}, len(referenced))
	for _, path := range referenced {
		inUse[filepath.Base(filepath.FromSlash(path))] = struct{}{}
	}

	var orphans []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := inUse[entry.Name()]; ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		orphans = append(orphans, filepath.ToSlash(filepath.Join(s.dir, entry.Name())))
	}
	return orphans, nil
}

// Subscribe deletes files announced as discarded on bus.
func (s *PhotoStore) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventTypePhotoDiscarded, func(ctx context.Context, event events.Event) error {
		discarded, ok := event.(*events.PhotoDiscardedEvent)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", event)
		}
		if err := s.Delete(discarded.Path); err != nil {
			return err
		}
		s.logger.Info("photo deleted", "path", discarded.Path, "reason", discarded.Reason, "karyawan_id", discarded.KaryawanID)
		return nil
	})
}

// PublicPrefix is the URL prefix stored photos are served under.
const PublicPrefix = "/uploads/karyawan/photos/"

// PublicURL is the URL under which a stored file is served.
func PublicURL(path string) string {
	return PublicPrefix + filepath.Base(filepath.FromSlash(path))
}

// FileServer serves the photo directory without listing it.
func (s *PhotoStore) FileServer() http.Handler {
	files := http.StripPrefix(PublicPrefix, http.FileServer(http.Dir(s.dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func lookupType(contentType string) (photoType, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(contentType)
	}
	t, ok := allowedTypes[strings.ToLower(mediaType)]
	return t, ok
}

func photoError(message string) *internal.AppError {
	return internal.NewValidationFieldError("foto", message, internal.ErrCodeInvalidPhoto)
}
