// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/strataenergy/internal/app/system/dataset"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backends this app talks to. It is created in ConnectDB
// and passed to EnsureSchema, Startup, BuildHandler and Shutdown.
type DBDeps struct {
	// MongoDB client and database. Both are nil when saved views are
	// disabled.
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// DatasetStorage holds the dataset file (local disk or S3).
	DatasetStorage storage.Store

	// Dataset serves the currently loaded dataset. It is empty until
	// Startup loads the file and stays empty if that load fails.
	Dataset *dataset.Holder
}
