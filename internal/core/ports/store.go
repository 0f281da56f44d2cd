package ports

import "go.trai.ch/crate/internal/core/domain"

// RecordStore defines the interface for storing and retrieving package records.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type RecordStore interface {
	// Get retrieves the record for a package ID.
	// Returns nil, nil if not found.
	Get(id string) (*domain.PackageRecord, error)

	// Put stores the record.
	Put(record domain.PackageRecord) error
}
