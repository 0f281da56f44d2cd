package ports

import "go.trai.ch/crate/internal/core/domain"

// DescriptorLoader defines the interface for loading a package descriptor.
//
//go:generate go run go.uber.org/mock/mockgen -source=descriptor_loader.go -destination=mocks/mock_descriptor_loader.go -package=mocks
type DescriptorLoader interface {
	// Load reads the descriptor at path and returns the validated metadata.
	Load(path string) (*domain.PackageMetadata, error)
}
