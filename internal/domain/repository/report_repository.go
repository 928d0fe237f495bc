package repository

import (
	"context"
	"errors"

	"campusfinder/internal/domain/entity"
)

// ReportFilter is the equality filter applied by the store. Empty fields
// match everything.
type ReportFilter struct {
	Type     entity.ReportType
	Category entity.Category
}

// ErrWriteUnconfirmed wraps a Create failure after which the report may still
// have been committed, such as a timeout or a dropped connection.
var ErrWriteUnconfirmed = errors.New("report write not confirmed")

type ReportRepository interface {
	// Create assigns ID, CreatedAt and UpdatedAt on report and persists it.
	Create(ctx context.Context, report *entity.Report) error
	// List returns matching reports, most recently created first.
	List(ctx context.Context, filter ReportFilter) ([]*entity.Report, error)
	GetByID(ctx context.Context, id string) (*entity.Report, error)
}
