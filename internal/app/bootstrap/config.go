// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/strataenergy/internal/app/system/normalize"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "STRATAENERGY"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: dataset_path, mongo_uri, etc.
//   - Environment variables: STRATAENERGY_DATASET_PATH, STRATAENERGY_MONGO_URI, etc.
//   - Command-line flags: --dataset_path, --mongo_uri, etc.
var appConfigKeys = []config.AppKey{
	{Name: "site_name", Default: "Strata Energy", Desc: "Site name shown in the page header"},

	// Dataset
	{Name: "dataset_path", Default: "energy.csv", Desc: "Dataset file (CSV or XLSX) relative to the storage root"},
	{Name: "dataset_watch", Default: true, Desc: "Reload the dataset when the file changes (local storage only)"},
	{Name: "dataset_poll_interval", Default: "0s", Desc: "Re-read the dataset on this interval (e.g., 10m); 0 disables"},

	// Dashboard
	{Name: "default_country", Default: "World", Desc: "Country selected when none (or an unknown one) is chosen"},
	{Name: "animation_interval", Default: "800ms", Desc: "Year step interval while playing"},
	{Name: "tracked_countries", Default: "United States,China,India,Germany,Brazil,Japan,Russia", Desc: "Comma-separated countries compared by trend and mix charts"},
	{Name: "assets_host", Default: "", Desc: "Host for echarts.min.js and maps/world.js (blank uses the go-echarts CDN)"},
	{Name: "viewer_idle_timeout", Default: "30m", Desc: "Close a viewer's dashboard after this long without requests"},

	// MongoDB (saved views)
	{Name: "mongo_uri", Default: "", Desc: "MongoDB connection URI (blank disables saved views)"},
	{Name: "mongo_database", Default: "strataenergy", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 50, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 2, Desc: "MongoDB min connection pool size"},

	// Viewer cookie + CSRF
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Viewer cookie signing key (must be strong in production)"},
	{Name: "session_name", Default: "strataenergy-viewer", Desc: "Viewer cookie name"},
	{Name: "session_domain", Default: "", Desc: "Viewer cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Viewer cookie max age (e.g., 24h, 720h)"},
	{Name: "csrf_key", Default: "dev-only-csrf-key-please-change-0123456789", Desc: "CSRF token signing key (32+ chars in production)"},

	{Name: "api_key", Default: "", Desc: "API key for /api/v1 (leave empty to disable the data API)"},
	{Name: "api_allowed_origins", Default: "", Desc: "Comma-separated CORS origins for /api/v1 (blank allows any)"},

	// Dataset storage
	{Name: "storage_type", Default: "local", Desc: "Dataset storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./data", Desc: "Local storage root"},
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "", Desc: "S3 key prefix"},
	{Name: "storage_cf_url", Default: "", Desc: "CloudFront distribution URL"},
	{Name: "storage_cf_keypair_id", Default: "", Desc: "CloudFront key pair ID"},
	{Name: "storage_cf_key_path", Default: "", Desc: "Path to CloudFront private key file"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, STRATAENERGY_* for app) and
// flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		SiteName: appValues.String("site_name"),

		DatasetPath:         appValues.String("dataset_path"),
		DatasetWatch:        appValues.Bool("dataset_watch"),
		DatasetPollInterval: appValues.Duration("dataset_poll_interval", 0),

		DefaultCountry:    normalize.Country(appValues.String("default_country")),
		AnimationInterval: appValues.Duration("animation_interval", 800*time.Millisecond),
		TrackedCountries:  splitList(appValues.String("tracked_countries")),
		AssetsHost:        appValues.String("assets_host"),
		ViewerIdleTimeout: appValues.Duration("viewer_idle_timeout", 30*time.Minute),

		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 720*time.Hour),
		CSRFKey:       appValues.String("csrf_key"),
		APIKey:        appValues.String("api_key"),

		APIAllowedOrigins: splitList(appValues.String("api_allowed_origins")),

		StorageType:        strings.ToLower(appValues.String("storage_type")),
		StorageLocalPath:   appValues.String("storage_local_path"),
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageCFURL:       appValues.String("storage_cf_url"),
		StorageCFKeyPairID: appValues.String("storage_cf_keypair_id"),
		StorageCFKeyPath:   appValues.String("storage_cf_key_path"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	var errs []error

	if appCfg.DatasetPath == "" {
		errs = append(errs, errors.New("dataset_path is required"))
	}
	switch appCfg.StorageType {
	case "local", "":
	case "s3":
		if appCfg.StorageS3Bucket == "" {
			errs = append(errs, errors.New("storage_s3_bucket is required for s3 storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage type: %s", appCfg.StorageType))
	}
	if appCfg.AnimationInterval <= 0 {
		errs = append(errs, errors.New("animation_interval must be positive"))
	}
	if appCfg.ViewerIdleTimeout <= 0 {
		errs = append(errs, errors.New("viewer_idle_timeout must be positive"))
	}
	if appCfg.DatasetPollInterval < 0 {
		errs = append(errs, errors.New("dataset_poll_interval must not be negative"))
	}
	if appCfg.SavedViewsEnabled() {
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			errs = append(errs, fmt.Errorf("invalid MongoDB URI: %w", err))
		}
	}

	return errors.Join(errs...)
}

// splitList parses a comma-separated list, collapsing inner whitespace and
// dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := normalize.Country(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
