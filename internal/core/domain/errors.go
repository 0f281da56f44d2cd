package domain

import "go.trai.ch/zerr"

var (
	// ErrFetch is returned when a source archive or repository cannot be retrieved.
	ErrFetch = zerr.New("failed to fetch sources")

	// ErrMissingSource is returned when a required pattern matches no file in the source tree.
	ErrMissingSource = zerr.New("no file matches pattern")

	// ErrIO is returned when the destination cannot be written.
	ErrIO = zerr.New("destination is not writable")

	// ErrMissingName is returned when a descriptor has no package name.
	ErrMissingName = zerr.New("package name is required")

	// ErrMissingVersion is returned when a descriptor has no package version.
	ErrMissingVersion = zerr.New("package version is required")

	// ErrInvalidVersion is returned when the package version cannot be parsed.
	ErrInvalidVersion = zerr.New("invalid package version")

	// ErrInvalidLicense is returned when the license is not a valid SPDX expression.
	ErrInvalidLicense = zerr.New("invalid SPDX license expression")

	// ErrInvalidPattern is returned when an export or copy pattern is malformed.
	ErrInvalidPattern = zerr.New("invalid glob pattern")

	// ErrUnknownSourceKind is returned when the descriptor names a source variant that does not exist.
	ErrUnknownSourceKind = zerr.New("unknown source kind, expected 'none', 'archive' or 'git'")

	// ErrUnsafeArchivePath is returned when an archive entry would be extracted outside the destination.
	ErrUnsafeArchivePath = zerr.New("archive entry escapes destination")

	// ErrUnsupportedArchive is returned when the archive format cannot be detected.
	ErrUnsupportedArchive = zerr.New("unsupported archive format")

	// ErrDescriptorRead is returned when the descriptor file cannot be read.
	ErrDescriptorRead = zerr.New("failed to read descriptor file")

	// ErrDescriptorParse is returned when the descriptor file cannot be parsed.
	ErrDescriptorParse = zerr.New("failed to parse descriptor file")

	// ErrRecordStoreRead is returned when the package record store cannot be read.
	ErrRecordStoreRead = zerr.New("failed to read package records")

	// ErrRecordStoreWrite is returned when the package record store cannot be written.
	ErrRecordStoreWrite = zerr.New("failed to write package records")

	// ErrNotPackaged is returned when no package record exists for a package.
	ErrNotPackaged = zerr.New("package has not been packaged yet")

	// ErrPackageModified is returned when a package destination no longer matches its record.
	ErrPackageModified = zerr.New("package destination differs from its record")
)
