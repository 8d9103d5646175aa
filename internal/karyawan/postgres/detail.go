package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/frahmantamala/karyawan-management/internal/jabatan"
	"github.com/frahmantamala/karyawan-management/internal/kantor"
	"github.com/frahmantamala/karyawan-management/internal/karyawan"
	"github.com/frahmantamala/karyawan-management/internal/storage"
	"github.com/jmoiron/sqlx"
)

const detailSelect = `
SELECT
	k.id, k.nama, k.gaji, k.kantor_id, k.jabatan_id, k.user_id,
	k.foto_path, k.foto_original_name, k.foto_size, k.foto_mime_type,
	k.created_by, k.updated_by, k.created_at, k.updated_at,
	o.nama AS kantor_nama, o.alamat AS kantor_alamat,
	o.longitude AS kantor_longitude, o.latitude AS kantor_latitude,
	o.created_by AS kantor_created_by, o.updated_by AS kantor_updated_by,
	o.created_at AS kantor_created_at, o.updated_at AS kantor_updated_at,
	j.nama_jabatan AS jabatan_nama, j.deskripsi AS jabatan_deskripsi,
	j.created_by AS jabatan_created_by, j.updated_by AS jabatan_updated_by,
	j.created_at AS jabatan_created_at, j.updated_at AS jabatan_updated_at
FROM karyawan k
JOIN kantor o ON o.id = k.kantor_id
JOIN jabatan j ON j.id = k.jabatan_id`

type detailRow struct {
	ID               int64          `db:"id"`
	Nama             string         `db:"nama"`
	Gaji             int64          `db:"gaji"`
	KantorID         int64          `db:"kantor_id"`
	JabatanID        int64          `db:"jabatan_id"`
	UserID           sql.NullInt64  `db:"user_id"`
	FotoPath         sql.NullString `db:"foto_path"`
	FotoOriginalName sql.NullString `db:"foto_original_name"`
	FotoSize         sql.NullInt64  `db:"foto_size"`
	FotoMimeType     sql.NullString `db:"foto_mime_type"`
	CreatedBy        sql.NullInt64  `db:"created_by"`
	UpdatedBy        sql.NullInt64  `db:"updated_by"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`

	KantorNama      string        `db:"kantor_nama"`
	KantorAlamat    string        `db:"kantor_alamat"`
	KantorLongitude float64       `db:"kantor_longitude"`
	KantorLatitude  float64       `db:"kantor_latitude"`
	KantorCreatedBy sql.NullInt64 `db:"kantor_created_by"`
	KantorUpdatedBy sql.NullInt64 `db:"kantor_updated_by"`
	KantorCreatedAt time.Time     `db:"kantor_created_at"`
	KantorUpdatedAt time.Time     `db:"kantor_updated_at"`

	JabatanNama      string         `db:"jabatan_nama"`
	JabatanDeskripsi sql.NullString `db:"jabatan_deskripsi"`
	JabatanCreatedBy sql.NullInt64  `db:"jabatan_created_by"`
	JabatanUpdatedBy sql.NullInt64  `db:"jabatan_updated_by"`
	JabatanCreatedAt time.Time      `db:"jabatan_created_at"`
	JabatanUpdatedAt time.Time      `db:"jabatan_updated_at"`
}

// DetailReader serves the joined karyawan views with plain SQL.
type DetailReader struct {
	db *sqlx.DB
}

func NewDetailReader(db *sqlx.DB) *DetailReader {
	return &DetailReader{db: db}
}

func (r *DetailReader) ListDetails(ctx context.Context) ([]*karyawan.Detail, error) {
	var rows []detailRow
	if err := r.db.SelectContext(ctx, &rows, detailSelect+" ORDER BY k.id ASC"); err != nil {
		return nil, err
	}

	out := make([]*karyawan.Detail, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDetail())
	}
	return out, nil
}

func (r *DetailReader) GetDetail(ctx context.Context, id int64) (*karyawan.Detail, error) {
	var row detailRow
	query := r.db.Rebind(detailSelect + " WHERE k.id = ?")
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toDetail(), nil
}

func (row *detailRow) toDetail() *karyawan.Detail {
	d := &karyawan.Detail{
		Karyawan: karyawan.Karyawan{
			ID:               row.ID,
			Nama:             row.Nama,
			Gaji:             row.Gaji,
			KantorID:         row.KantorID,
			JabatanID:        row.JabatanID,
			UserID:           nullInt(row.UserID),
			FotoPath:         nullString(row.FotoPath),
			FotoOriginalName: nullString(row.FotoOriginalName),
			FotoSize:         nullInt(row.FotoSize),
			FotoMimeType:     nullString(row.FotoMimeType),
			CreatedBy:        nullInt(row.CreatedBy),
			UpdatedBy:        nullInt(row.UpdatedBy),
			CreatedAt:        row.CreatedAt,
			UpdatedAt:        row.UpdatedAt,
		},
		Kantor: &kantor.Kantor{
			ID:        row.KantorID,
			Nama:      row.KantorNama,
			Alamat:    row.KantorAlamat,
			Longitude: kantor.RoundCoordinate(row.KantorLongitude),
			Latitude:  kantor.RoundCoordinate(row.KantorLatitude),
			CreatedBy: nullInt(row.KantorCreatedBy),
			UpdatedBy: nullInt(row.KantorUpdatedBy),
			CreatedAt: row.KantorCreatedAt,
			UpdatedAt: row.KantorUpdatedAt,
		},
		Jabatan: &jabatan.Jabatan{
			ID:          row.JabatanID,
			NamaJabatan: row.JabatanNama,
			Deskripsi:   nullString(row.JabatanDeskripsi),
			CreatedBy:   nullInt(row.JabatanCreatedBy),
			UpdatedBy:   nullInt(row.JabatanUpdatedBy),
			CreatedAt:   row.JabatanCreatedAt,
			UpdatedAt:   row.JabatanUpdatedAt,
		},
	}
	if d.FotoPath != nil {
		url := storage.PublicURL(*d.FotoPath)
		d.FotoURL = &url
	}
	return d
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}
