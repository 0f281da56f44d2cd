package ports

// PatternResolver defines the interface for matching export and copy patterns.
//
//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type PatternResolver interface {
	// Match returns the files below root matching pattern, as sorted slash-separated
	// paths relative to root. Entries whose base name matches one of ignores are skipped.
	Match(root, pattern string, ignores []string) ([]string, error)
}
