package crud

import (
	"context"

	"github.com/frahmantamala/karyawan-management/internal"
)

type Op int

const (
	OpCreate Op = iota
	OpUpdate
)

// Constraints holds the messages reported when the store rejects a write.
type Constraints struct {
	Unique    string
	InUse     string
	Reference string
}

// Resource is the capability set that turns a row type M and a request
// payload P into a CRUD resource.
type Resource[M any, P any] interface {
	// Name is the singular display name, e.g. "Kantor".
	Name() string
	// Plural is used in list messages, e.g. "kantors".
	Plural() string
	Validate(ctx context.Context, payload *P, op Op) *internal.AppError
	ToEntity(ctx context.Context, payload *P, target *M, op Op) error
	Present(m *M) interface{}
	Constraints() Constraints
}

// AfterDeleter is implemented by resources that own side effects of a row,
// such as files, to release once the row is gone.
type AfterDeleter[M any] interface {
	AfterDelete(ctx context.Context, m *M)
}

// Auditable rows record who created and last updated them.
type Auditable interface {
	Stamp(actor *int64, creating bool)
}
