package karyawan

import (
	"context"
	"log/slog"
	"mime/multipart"

	"github.com/frahmantamala/karyawan-management/internal"
	karyawanDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/karyawan"
	"github.com/frahmantamala/karyawan-management/internal/core/events"
	"github.com/frahmantamala/karyawan-management/internal/crud"
	"github.com/frahmantamala/karyawan-management/internal/storage"
)

type DetailReader interface {
	ListDetails(ctx context.Context) ([]*Detail, error)
	// GetDetail returns nil, nil when no row matches.
	GetDetail(ctx context.Context, id int64) (*Detail, error)
}

type PhotoStore interface {
	Check(fh *multipart.FileHeader) error
	Save(ctx context.Context, fh *multipart.FileHeader) (*storage.Photo, error)
}

// Service adds the joined read views and photo handling to the generic
// karyawan CRUD service.
type Service struct {
	*crud.Service[karyawanDatamodel.Karyawan, Payload]
	store   crud.Store[karyawanDatamodel.Karyawan]
	details DetailReader
	photos  PhotoStore
	bus     Publisher
	logger  *slog.Logger
}

func NewService(
	store crud.Store[karyawanDatamodel.Karyawan],
	resource *Resource,
	details DetailReader,
	photos PhotoStore,
	bus Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		Service: crud.NewService[karyawanDatamodel.Karyawan, Payload](store, resource, logger),
		store:   store,
		details: details,
		photos:  photos,
		bus:     bus,
		logger:  logger,
	}
}

func (s *Service) ListWithKantor(ctx context.Context) ([]*Detail, error) {
	rows, err := s.details.ListDetails(ctx)
	if err != nil {
		return nil, s.StoreFailure("retrieve", err)
	}
	return rows, nil
}

func (s *Service) GetWithKantor(ctx context.Context, id int64) (*Detail, error) {
	d, err := s.details.GetDetail(ctx, id)
	if err != nil {
		return nil, s.StoreFailure("retrieve", err)
	}
	if d == nil {
		return nil, s.NotFound()
	}
	return d, nil
}

// CreateWithPhoto creates a karyawan and, when fh is set, stores its photo.
// The photo, content included, is checked before anything is written. The
// file is written only after the payload validates and is discarded if the
// insert fails.
func (s *Service) CreateWithPhoto(ctx context.Context, p *Payload, fh *multipart.FileHeader) (*karyawanDatamodel.Karyawan, error) {
	if fh != nil {
		if err := s.photos.Check(fh); err != nil {
			return nil, s.photoFailure(err)
		}
	}

	var saved *storage.Photo
	k, err := s.CreateWith(ctx, p, func(k *karyawanDatamodel.Karyawan) error {
		if fh == nil {
			return nil
		}
		photo, err := s.photos.Save(ctx, fh)
		if err != nil {
			return s.photoFailure(err)
		}
		saved = photo
		attachPhoto(k, photo)
		return nil
	})
	if err != nil {
		if saved != nil {
			s.discard(ctx, 0, saved.Path, events.ReasonWriteAbandoned)
		}
		return nil, err
	}
	return k, nil
}

// ReplacePhoto stores fh as the photo of karyawan id. The previous file is
// discarded only once the row references the new one.
func (s *Service) ReplacePhoto(ctx context.Context, id int64, fh *multipart.FileHeader) (*karyawanDatamodel.Karyawan, error) {
	if err := s.photos.Check(fh); err != nil {
		return nil, s.photoFailure(err)
	}

	k, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	photo, err := s.photos.Save(ctx, fh)
	if err != nil {
		return nil, s.photoFailure(err)
	}

	previous := k.FotoPath
	attachPhoto(k, photo)
	crud.Stamp(ctx, k, crud.OpUpdate)

	if err := s.store.Update(ctx, k); err != nil {
		s.discard(ctx, id, photo.Path, events.ReasonWriteAbandoned)
		return nil, s.WriteFailure("update", err)
	}

	if previous != nil && *previous != photo.Path {
		s.discard(ctx, id, *previous, events.ReasonReplaced)
	}
	return k, nil
}

// RemovePhoto clears the photo of karyawan id and then discards the file.
func (s *Service) RemovePhoto(ctx context.Context, id int64) (*karyawanDatamodel.Karyawan, error) {
	k, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if k.FotoPath == nil {
		return nil, internal.NewNotFoundError("Photo not found", internal.ErrCodeResourceNotFound).
			WithReasons("Karyawan tidak memiliki foto")
	}

	previous := *k.FotoPath
	detachPhoto(k)
	crud.Stamp(ctx, k, crud.OpUpdate)

	if err := s.store.Update(ctx, k); err != nil {
		return nil, s.StoreFailure("update", err)
	}

	s.discard(ctx, id, previous, events.ReasonRemoved)
	return k, nil
}

func (s *Service) discard(ctx context.Context, karyawanID int64, path, reason string) {
	publishDiscard(ctx, s.bus, s.logger, karyawanID, path, reason)
}

func (s *Service) photoFailure(err error) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	s.logger.Error("failed to store photo", "error", err)
	return internal.NewInternalError("Failed to upload photo", err).
		WithReasons("Gagal menyimpan file foto")
}
