// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// ports, TLS, logging, CORS and body limits; everything the dashboard
// itself needs lives here.
type AppConfig struct {
	SiteName string // Shown in the page header

	// Dataset
	DatasetPath         string        // Path of the CSV/XLSX file inside the storage backend
	DatasetWatch        bool          // Reload on file change (local storage only)
	DatasetPollInterval time.Duration // Re-read interval for the dataset; 0 disables polling

	// Dashboard behaviour
	DefaultCountry    string        // Selected initially and for unknown countries
	AnimationInterval time.Duration // Play tick
	TrackedCountries  []string      // Countries compared by the trend/mix/intensity charts
	AssetsHost        string        // Where echarts.min.js and maps/world.js are served from
	ViewerIdleTimeout time.Duration // Drop a viewer's dashboard after this long without requests

	// MongoDB (optional; saved views are disabled without it)
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Viewer cookie
	SessionKey    string        // Secret key for signing viewer cookies (must be strong in production)
	SessionName   string        // Cookie name (default: strataenergy-viewer)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Viewer cookie lifetime; also the saved view retention

	CSRFKey string // Secret key for CSRF token signing (32 bytes, must be strong in production)

	// API key for /api/v1. Leave empty to reject every API request.
	APIKey            string
	APIAllowedOrigins []string // CORS origins for /api/v1; empty allows any

	// Dataset storage
	StorageType      string // "local" or "s3"
	StorageLocalPath string // Base directory for local storage (e.g., "./data")

	// S3/CloudFront configuration (only used if StorageType is "s3")
	StorageS3Region    string
	StorageS3Bucket    string
	StorageS3Prefix    string
	StorageCFURL       string
	StorageCFKeyPairID string
	StorageCFKeyPath   string
}

// SavedViewsEnabled reports whether a database is configured.
func (c AppConfig) SavedViewsEnabled() bool {
	return c.MongoURI != ""
}
