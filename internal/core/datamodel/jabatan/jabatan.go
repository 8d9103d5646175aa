package jabatan

import "time"

type Jabatan struct {
	ID          int64     `gorm:"primaryKey"`
	NamaJabatan string    `gorm:"column:nama_jabatan;size:100;uniqueIndex;not null"`
	Deskripsi   *string   `gorm:"column:deskripsi;type:text"`
	CreatedBy   *int64    `gorm:"column:created_by"`
	UpdatedBy   *int64    `gorm:"column:updated_by"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Jabatan) TableName() string {
	return "jabatan"
}

// Stamp records actor as updater, and as creator on first write.
func (r *Jabatan) Stamp(actor *int64, creating bool) {
	if creating {
		r.CreatedBy = actor
	}
	r.UpdatedBy = actor
}
