package ports

// Verifier defines the interface for verifying file existence.
//
//go:generate go run go.uber.org/mock/mockgen -source=verifier.go -destination=mocks/mock_verifier.go -package=mocks
type Verifier interface {
	// VerifyFiles checks if all files exist below the given root directory.
	VerifyFiles(root string, files []string) (bool, error)
}
