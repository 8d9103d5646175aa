package karyawan

import (
	"time"

	jabatanDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/jabatan"
	kantorDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/kantor"
	userDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/user"
)

type Karyawan struct {
	ID               int64     `gorm:"primaryKey"`
	Nama             string    `gorm:"column:nama;size:50;not null"`
	Gaji             int64     `gorm:"column:gaji;not null"`
	KantorID         int64     `gorm:"column:kantor_id;not null;index"`
	JabatanID        int64     `gorm:"column:jabatan_id;not null;index"`
	UserID           *int64    `gorm:"column:user_id;index"`
	FotoPath         *string   `gorm:"column:foto_path;size:500"`
	FotoOriginalName *string   `gorm:"column:foto_original_name;size:255"`
	FotoSize         *int64    `gorm:"column:foto_size"`
	FotoMimeType     *string   `gorm:"column:foto_mime_type;size:100"`
	CreatedBy        *int64    `gorm:"column:created_by"`
	UpdatedBy        *int64    `gorm:"column:updated_by"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Associations exist to declare the foreign keys; writes omit them.
	Kantor  *kantorDatamodel.Kantor   `gorm:"foreignKey:KantorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Jabatan *jabatanDatamodel.Jabatan `gorm:"foreignKey:JabatanID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	User    *userDatamodel.User       `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (Karyawan) TableName() string {
	return "karyawan"
}

// All lists every row type in dependency order, for AutoMigrate in tests and tooling.
func All() []interface{} {
	return []interface{}{
		&userDatamodel.User{},
		&kantorDatamodel.Kantor{},
		&jabatanDatamodel.Jabatan{},
		&Karyawan{},
	}
}

// Stamp records actor as updater, and as creator on first write.
func (r *Karyawan) Stamp(actor *int64, creating bool) {
	if creating {
		r.CreatedBy = actor
	}
	r.UpdatedBy = actor
}
