package ports

import (
	"context"

	"geolr/domain/reference"
)

// ReferenceSource loads the historical fixes recorded around one candidate
type ReferenceSource interface {
	// Load reads, parses and deduplicates the source. Malformed rows abort the load.
	Load(ctx context.Context) (*reference.Dataset, error)
	// Name identifies the source in logs and reports
	Name() string
}
