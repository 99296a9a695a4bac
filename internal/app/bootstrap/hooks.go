// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks wires this app into the WAFFLE lifecycle.
// Each function is called in order by app.Run, from configuration
// loading through backend setup, dataset loading, HTTP handler
// construction, and finally graceful shutdown.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "strataenergy",
	LoadConfig:     LoadConfig,     // load core + app config
	ValidateConfig: ValidateConfig, // dataset, storage and MongoDB settings
	ConnectDB:      ConnectDB,      // dataset storage + optional MongoDB
	EnsureSchema:   EnsureSchema,   // saved view indexes
	Startup:        Startup,        // load templates and dataset, start jobs
	BuildHandler:   BuildHandler,   // build the HTTP router + middleware stack
	Shutdown:       Shutdown,       // stop jobs and watchers, disconnect MongoDB
}
