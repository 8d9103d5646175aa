package kantor

import "time"

type Kantor struct {
	ID        int64     `gorm:"primaryKey"`
	Nama      string    `gorm:"column:nama;size:100;not null"`
	Alamat    string    `gorm:"column:alamat;size:200;not null"`
	Longitude float64   `gorm:"column:longitude;type:decimal(10,7);not null"`
	Latitude  float64   `gorm:"column:latitude;type:decimal(10,7);not null"`
	CreatedBy *int64    `gorm:"column:created_by"`
	UpdatedBy *int64    `gorm:"column:updated_by"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Kantor) TableName() string {
	return "kantor"
}

// Stamp records actor as updater, and as creator on first write.
func (r *Kantor) Stamp(actor *int64, creating bool) {
	if creating {
		r.CreatedBy = actor
	}
	r.UpdatedBy = actor
}
