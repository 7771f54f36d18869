// Package store defines the interface between dataset sources and the
// pipeline.
package store

import (
	"context"

	"github.com/oceanatlas/sstviz/internal/domain"
)

// DatasetLoader is the interface for loading a gridded SST dataset.
type DatasetLoader interface {
	// Load opens the source, extracts the dataset, and releases the
	// underlying handle before returning.
	Load(ctx context.Context) (*domain.Dataset, error)
}
