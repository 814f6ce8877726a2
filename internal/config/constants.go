package config

const (
	// DefaultDataDir holds every per-domain database when no explicit path is set
	DefaultDataDir = "./data"

	// DatabaseFilePrefix names domain database files: my-motiv-<domain>.db
	DatabaseFilePrefix = "my-motiv-"

	// DefaultJWTSecret is only acceptable for local development
	DefaultJWTSecret = "my-motiv-secret-key-2024"

	// DefaultAdminPassword is the seeded administrator's password unless overridden
	DefaultAdminPassword = "Admin123"
)
