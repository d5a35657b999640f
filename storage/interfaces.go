package storage

import (
	"context"

	"bikeshare-dashboard/models"
)

// TableSource is any backend the daily table can be loaded from.
type TableSource interface {
	Load(ctx context.Context) (*models.Table, error)
	Name() string
}

// TableWriter is the interface any export backend must satisfy.
type TableWriter interface {
	Write(table *models.Table) error
	Close() error
}
