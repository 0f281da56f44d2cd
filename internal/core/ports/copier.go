package ports

// Copier defines the interface for writing files into a destination.
//
//go:generate go run go.uber.org/mock/mockgen -source=copier.go -destination=mocks/mock_copier.go -package=mocks
type Copier interface {
	// EnsureWritable creates dir if needed and checks that files can be written into it.
	EnsureWritable(dir string) error

	// CopyFile copies src to dst, creating parent directories.
	// It reports whether dst was written; identical content is left untouched.
	CopyFile(src, dst string) (bool, error)
}
