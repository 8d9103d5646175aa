package karyawan

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/karyawan-management/internal"
	"github.com/frahmantamala/karyawan-management/internal/core/common/validation"
	karyawanDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/karyawan"
	"github.com/frahmantamala/karyawan-management/internal/core/events"
	"github.com/frahmantamala/karyawan-management/internal/crud"
	"github.com/frahmantamala/karyawan-management/internal/user"
)

// Payload is the body of POST and PUT /api/karyawans. Numeric fields arrive
// as strings; user_id is optional and a missing one is provisioned on create.
type Payload struct {
	Nama      string                   `json:"nama"`
	Gaji      validation.NumericString `json:"gaji"`
	KantorID  validation.NumericString `json:"kantor_id"`
	JabatanID validation.NumericString `json:"jabatan_id"`
	UserID    *int64                   `json:"user_id,omitempty"`
}

// Exister reports whether a row with the given id is present.
type Exister interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Provisioner interface {
	ProvisionForEmployee(ctx context.Context, name string) (int64, error)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// References resolves the rows a karyawan points at.
type References struct {
	Kantors  Exister
	Jabatans Exister
	Users    Exister
}

type Resource struct {
	refs   References
	users  Provisioner
	bus    Publisher
	logger *slog.Logger
}

func NewResource(refs References, users Provisioner, bus Publisher, logger *slog.Logger) *Resource {
	return &Resource{
		refs:   refs,
		users:  users,
		bus:    bus,
		logger: logger,
	}
}

func (*Resource) Name() string   { return "Karyawan" }
func (*Resource) Plural() string { return "karyawans" }

func (r *Resource) Validate(ctx context.Context, p *Payload, _ crud.Op) *internal.AppError {
	v := validation.NewValidator()
	v.Field("nama", strings.TrimSpace(p.Nama)).
		Required("Nama wajib diisi").
		Length(2, 50, "Nama harus antara 2-50 karakter").
		Custom(safeText("nama"))
	v.Field("gaji", p.Gaji.String()).Gaji()
	v.Field("kantor_id", p.KantorID.String()).PositiveID()
	v.Field("jabatan_id", p.JabatanID.String()).PositiveID()
	v.Field("user_id", p.UserID).Custom(func(value interface{}) *internal.AppError {
		if id, ok := value.(*int64); ok && id != nil && *id <= 0 {
			return internal.NewValidationFieldError("user_id", "user_id harus berupa angka positif yang valid", internal.ErrCodeInvalidReference)
		}
		return nil
	})
	if err := v.Validate(); err != nil {
		return err
	}

	return r.checkReferences(ctx, p)
}

// checkReferences confirms every referenced row exists before the write.
func (r *Resource) checkReferences(ctx context.Context, p *Payload) *internal.AppError {
	kantorID, _ := validation.ParsePositiveID("kantor_id", p.KantorID.String())
	jabatanID, _ := validation.ParsePositiveID("jabatan_id", p.JabatanID.String())

	checks := []struct {
		field   string
		id      int64
		store   Exister
		message string
	}{
		{"kantor_id", kantorID, r.refs.Kantors, "Kantor dengan ID tersebut tidak ditemukan"},
		{"jabatan_id", jabatanID, r.refs.Jabatans, "Jabatan dengan ID tersebut tidak ditemukan"},
	}
	if p.UserID != nil {
		checks = append(checks, struct {
			field   string
			id      int64
			store   Exister
			message string
		}{"user_id", *p.UserID, r.refs.Users, "User dengan ID tersebut tidak ditemukan"})
	}

	var missing []*internal.AppError
	for _, c := range checks {
		ok, err := c.store.Exists(ctx, c.id)
		if err != nil {
			return internal.NewInternalError("Failed to validate karyawan", err).
				WithReasons("Database error")
		}
		if !ok {
			missing = append(missing, internal.NewValidationFieldError(c.field, c.message, internal.ErrCodeInvalidReference))
		}
	}
	return validation.Merge(missing...)
}

func (r *Resource) ToEntity(ctx context.Context, p *Payload, k *karyawanDatamodel.Karyawan, op crud.Op) error {
	nama := strings.TrimSpace(p.Nama)
	gaji, _ := validation.ParseGaji(p.Gaji.String())
	kantorID, _ := validation.ParsePositiveID("kantor_id", p.KantorID.String())
	jabatanID, _ := validation.ParsePositiveID("jabatan_id", p.JabatanID.String())

	k.Nama = nama
	k.Gaji = gaji
	k.KantorID = kantorID
	k.JabatanID = jabatanID

	switch {
	case p.UserID != nil:
		id := *p.UserID
		k.UserID = &id
	case op == crud.OpCreate:
		id, err := r.users.ProvisionForEmployee(ctx, nama)
		if err != nil {
			if errors.Is(err, user.ErrUsernameTaken) {
				return internal.NewConflictError("Failed to create karyawan", internal.ErrCodeDuplicate).
					WithReasons("Username untuk karyawan sudah digunakan oleh akun lain").
					WithCause(err)
			}
			return internal.NewInternalError("Failed to create karyawan", err).
				WithReasons("Gagal membuat user untuk karyawan")
		}
		k.UserID = &id
	}
	return nil
}

func (*Resource) Present(k *karyawanDatamodel.Karyawan) interface{} {
	return FromDataModel(k)
}

func (*Resource) Constraints() crud.Constraints {
	return crud.Constraints{
		Reference: "Kantor atau jabatan yang dirujuk tidak ditemukan",
	}
}

// AfterDelete releases the photo of a deleted karyawan.
func (r *Resource) AfterDelete(ctx context.Context, k *karyawanDatamodel.Karyawan) {
	if k.FotoPath == nil {
		return
	}
	publishDiscard(ctx, r.bus, r.logger, k.ID, *k.FotoPath, events.ReasonOwnerDeleted)
}

// publishDiscard hands a no longer referenced file to the cleanup subscriber.
// A failure is logged and never reaches the caller.
func publishDiscard(ctx context.Context, bus Publisher, logger *slog.Logger, karyawanID int64, path, reason string) {
	if err := bus.Publish(ctx, events.NewPhotoDiscardedEvent(karyawanID, path, reason)); err != nil {
		logger.Warn("failed to publish photo discard", "karyawan_id", karyawanID, "path", path, "reason", reason, "error", err)
	}
}

func safeText(field string) func(interface{}) *internal.AppError {
	return func(value interface{}) *internal.AppError {
		s, _ := value.(string)
		if _, ok := validation.SanitizeText(s); !ok {
			return internal.NewValidationFieldError(field, "Input mengandung karakter yang tidak diizinkan", internal.ErrCodeSecurityCheck)
		}
		return nil
	}
}
