package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Read-only surfaces: audit GraphQL and health check
	return []string{"/graphql", "/healthz"}
}
