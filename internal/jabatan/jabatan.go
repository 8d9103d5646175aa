package jabatan

import (
	"time"

	jabatanDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/jabatan"
)

type Jabatan struct {
	ID          int64     `json:"id"`
	NamaJabatan string    `json:"nama_jabatan"`
	Deskripsi   *string   `json:"deskripsi"`
	CreatedBy   *int64    `json:"created_by"`
	UpdatedBy   *int64    `json:"updated_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromDataModel(j *jabatanDatamodel.Jabatan) *Jabatan {
	return &Jabatan{
		ID:          j.ID,
		NamaJabatan: j.NamaJabatan,
		Deskripsi:   j.Deskripsi,
		CreatedBy:   j.CreatedBy,
		UpdatedBy:   j.UpdatedBy,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}
