package jabatan

import (
	"context"
	"strings"

	"github.com/frahmantamala/karyawan-management/internal"
	"github.com/frahmantamala/karyawan-management/internal/core/common/validation"
	jabatanDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/jabatan"
	"github.com/frahmantamala/karyawan-management/internal/crud"
)

// Payload is the body of POST and PUT /api/jabatans.
type Payload struct {
	NamaJabatan string  `json:"nama_jabatan"`
	Deskripsi   *string `json:"deskripsi,omitempty"`
}

type Resource struct{}

func NewResource() *Resource {
	return &Resource{}
}

func (Resource) Name() string   { return "Jabatan" }
func (Resource) Plural() string { return "jabatan" }

func (Resource) Validate(_ context.Context, p *Payload, _ crud.Op) *internal.AppError {
	v := validation.NewValidator()
	v.Field("nama_jabatan", strings.TrimSpace(p.NamaJabatan)).
		Length(2, 100, "Nama jabatan harus antara 2-100 karakter")
	v.Field("deskripsi", p.Deskripsi).
		Length(0, 500, "Deskripsi maksimal 500 karakter")
	return v.Validate()
}

func (Resource) ToEntity(_ context.Context, p *Payload, j *jabatanDatamodel.Jabatan, _ crud.Op) error {
	j.NamaJabatan = strings.TrimSpace(p.NamaJabatan)
	j.Deskripsi = nil
	if p.Deskripsi != nil {
		if d := strings.TrimSpace(*p.Deskripsi); d != "" {
			j.Deskripsi = &d
		}
	}
	return nil
}

func (Resource) Present(j *jabatanDatamodel.Jabatan) interface{} {
	return FromDataModel(j)
}

func (Resource) Constraints() crud.Constraints {
	return crud.Constraints{
		Unique: "Nama jabatan sudah digunakan",
		InUse:  "Jabatan masih digunakan oleh karyawan",
	}
}
