package catalog

import (
	"context"
	"errors"
)

// ErrCodeNotFound is returned when a code is absent from its catalog.
var ErrCodeNotFound = errors.New("code not found")

// ICDRepository provides access to ICD-10-GM reference codes.
type ICDRepository interface {
	Search(ctx context.Context, query string, limit int) ([]*ICDEntry, error)
	GetByCode(ctx context.Context, code string) (*ICDEntry, error)
	Count() int
}

// OPSRepository provides access to OPS procedure codes.
type OPSRepository interface {
	Search(ctx context.Context, query string, limit int) ([]*OPSEntry, error)
	GetByCode(ctx context.Context, code string) (*OPSEntry, error)
	Count() int
}

// LOINCRepository provides access to LOINC reference codes.
type LOINCRepository interface {
	Search(ctx context.Context, query string, limit int) ([]*LOINCEntry, error)
	GetByCode(ctx context.Context, code string) (*LOINCEntry, error)
	Count() int
}
