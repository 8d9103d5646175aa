package kantor

import (
	"math"
	"time"

	kantorDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/kantor"
)

type Kantor struct {
	ID        int64     `json:"id"`
	Nama      string    `json:"nama"`
	Alamat    string    `json:"alamat"`
	Longitude float64   `json:"longitude"`
	Latitude  float64   `json:"latitude"`
	CreatedBy *int64    `json:"created_by"`
	UpdatedBy *int64    `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromDataModel(k *kantorDatamodel.Kantor) *Kantor {
	return &Kantor{
		ID:        k.ID,
		Nama:      k.Nama,
		Alamat:    k.Alamat,
		Longitude: k.Longitude,
		Latitude:  k.Latitude,
		CreatedBy: k.CreatedBy,
		UpdatedBy: k.UpdatedBy,
		CreatedAt: k.CreatedAt,
		UpdatedAt: k.UpdatedAt,
	}
}

// RoundCoordinate truncates a coordinate to the stored decimal(10,7) precision.
func RoundCoordinate(v float64) float64 {
	return math.Round(v*1e7) / 1e7
}
