package kantor

import (
	"context"
	"strings"

	"github.com/frahmantamala/karyawan-management/internal"
	"github.com/frahmantamala/karyawan-management/internal/core/common/validation"
	kantorDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/kantor"
	"github.com/frahmantamala/karyawan-management/internal/crud"
)

// Payload is the body of POST and PUT /api/kantors.
type Payload struct {
	Nama      string   `json:"nama"`
	Alamat    string   `json:"alamat"`
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`
}

type Resource struct{}

func NewResource() *Resource {
	return &Resource{}
}

func (Resource) Name() string   { return "Kantor" }
func (Resource) Plural() string { return "kantors" }

func (Resource) Validate(_ context.Context, p *Payload, _ crud.Op) *internal.AppError {
	v := validation.NewValidator()
	v.Field("nama", strings.TrimSpace(p.Nama)).
		Length(2, 100, "Nama kantor harus antara 2-100 karakter")
	v.Field("alamat", strings.TrimSpace(p.Alamat)).
		Length(5, 200, "Alamat kantor harus antara 5-200 karakter")
	v.Field("longitude", p.Longitude).
		Required("Longitude wajib diisi").
		FloatRange(-180, 180, "Longitude harus antara -180 hingga 180", internal.ErrCodeInvalidCoord)
	v.Field("latitude", p.Latitude).
		Required("Latitude wajib diisi").
		FloatRange(-90, 90, "Latitude harus antara -90 hingga 90", internal.ErrCodeInvalidCoord)
	return v.Validate()
}

func (Resource) ToEntity(_ context.Context, p *Payload, k *kantorDatamodel.Kantor, _ crud.Op) error {
	k.Nama = strings.TrimSpace(p.Nama)
	k.Alamat = strings.TrimSpace(p.Alamat)
	k.Longitude = RoundCoordinate(*p.Longitude)
	k.Latitude = RoundCoordinate(*p.Latitude)
	return nil
}

func (Resource) Present(k *kantorDatamodel.Kantor) interface{} {
	return FromDataModel(k)
}

func (Resource) Constraints() crud.Constraints {
	return crud.Constraints{
		InUse: "Kantor masih digunakan oleh karyawan",
	}
}
