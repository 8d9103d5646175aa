package karyawan

import (
	"time"

	karyawanDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/karyawan"
	"github.com/frahmantamala/karyawan-management/internal/jabatan"
	"github.com/frahmantamala/karyawan-management/internal/kantor"
	"github.com/frahmantamala/karyawan-management/internal/storage"
)

type Karyawan struct {
	ID               int64     `json:"id"`
	Nama             string    `json:"nama"`
	Gaji             int64     `json:"gaji"`
	KantorID         int64     `json:"kantor_id"`
	JabatanID        int64     `json:"jabatan_id"`
	UserID           *int64    `json:"user_id"`
	FotoPath         *string   `json:"foto_path"`
	FotoURL          *string   `json:"foto_url"`
	FotoOriginalName *string   `json:"foto_original_name"`
	FotoSize         *int64    `json:"foto_size"`
	FotoMimeType     *string   `json:"foto_mime_type"`
	CreatedBy        *int64    `json:"created_by"`
	UpdatedBy        *int64    `json:"updated_by"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Detail is a karyawan together with its office and position.
type Detail struct {
	Karyawan
	Kantor  *kantor.Kantor   `json:"kantor"`
	Jabatan *jabatan.Jabatan `json:"jabatan"`
}

func FromDataModel(k *karyawanDatamodel.Karyawan) *Karyawan {
	out := &Karyawan{
		ID:               k.ID,
		Nama:             k.Nama,
		Gaji:             k.Gaji,
		KantorID:         k.KantorID,
		JabatanID:        k.JabatanID,
		UserID:           k.UserID,
		FotoPath:         k.FotoPath,
		FotoOriginalName: k.FotoOriginalName,
		FotoSize:         k.FotoSize,
		FotoMimeType:     k.FotoMimeType,
		CreatedBy:        k.CreatedBy,
		UpdatedBy:        k.UpdatedBy,
		CreatedAt:        k.CreatedAt,
		UpdatedAt:        k.UpdatedAt,
	}
	if k.FotoPath != nil {
		url := storage.PublicURL(*k.FotoPath)
		out.FotoURL = &url
	}
	return out
}

func attachPhoto(k *karyawanDatamodel.Karyawan, p *storage.Photo) {
	k.FotoPath = &p.Path
	k.FotoOriginalName = &p.OriginalName
	k.FotoSize = &p.Size
	k.FotoMimeType = &p.MimeType
}

func detachPhoto(k *karyawanDatamodel.Karyawan) {
	k.FotoPath = nil
	k.FotoOriginalName = nil
	k.FotoSize = nil
	k.FotoMimeType = nil
}
