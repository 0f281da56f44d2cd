package domain

import "path/filepath"

const (
	// DefaultDescriptorFile is the descriptor file looked up in the working directory.
	DefaultDescriptorFile = "crate.yaml"

	// DefaultStateDir holds crate's own bookkeeping inside the working directory.
	DefaultStateDir = ".crate"

	// DefaultIncludeDir is where header files land inside a package destination.
	DefaultIncludeDir = "include"

	// DirPerm is the permission used for directories created by crate.
	DirPerm = 0o750

	// FilePerm is the permission used for state files written by crate.
	FilePerm = 0o644
)

// DefaultRecordStorePath returns the path of the package record store.
func DefaultRecordStorePath() string {
	return filepath.Join(DefaultStateDir, "records.json")
}
