// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"io"
	"path/filepath"

	"github.com/dalemusser/strataenergy/internal/app/resources"
	sysdash "github.com/dalemusser/strataenergy/internal/app/system/dashboard"
	"github.com/dalemusser/strataenergy/internal/app/system/dataset"
	"github.com/dalemusser/strataenergy/internal/app/system/tasks"
	"github.com/dalemusser/strataenergy/internal/app/system/timeouts"
	"github.com/dalemusser/strataenergy/internal/app/system/viewdata"
	"github.com/dalemusser/strataenergy/internal/app/system/widgets"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

var (
	// taskRunner runs the housekeeping jobs; stopped in Shutdown.
	taskRunner *tasks.Runner
	// registry holds one dashboard per viewer.
	registry *sysdash.Registry
	// datasetWatcher is nil unless a local dataset is watched.
	datasetWatcher *dataset.Watcher
)

// Startup runs once after backends are connected and before the HTTP
// handler is built. It loads the dataset, builds the viewer registry and
// starts the background jobs.
//
// A dataset that fails to load does not abort startup: the dashboard
// answers 503 until a reload (watcher or poll job) succeeds.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts configured from environment", zap.Int("count", n), zap.Any("timeouts", timeouts.Current()))
	}

	viewdata.Init(appCfg.SiteName, deps.MongoDatabase != nil)

	src := storageSource(deps.DatasetStorage)
	loadDataset(ctx, deps.Dataset, src, appCfg.DatasetPath, logger)

	registry = sysdash.NewRegistry(deps.Dataset, sysdash.Options{
		DefaultCountry: appCfg.DefaultCountry,
		Interval:       appCfg.AnimationInterval,
		Widgets:        widgetOptions(appCfg),
		Logger:         logger,
	})

	if appCfg.DatasetWatch && (appCfg.StorageType == "local" || appCfg.StorageType == "") {
		path := filepath.Join(appCfg.StorageLocalPath, appCfg.DatasetPath)
		w, err := dataset.Watch(context.Background(), path, deps.Dataset, logger)
		if err != nil {
			logger.Warn("dataset watcher not started", zap.String("path", path), zap.Error(err))
		} else {
			datasetWatcher = w
			logger.Info("watching dataset for changes", zap.String("path", path))
		}
	}

	startTaskRunner(appCfg, deps, src, logger)
	return nil
}

// widgetOptions builds the chart options shared by every viewer.
func widgetOptions(appCfg AppConfig) widgets.Options {
	return widgets.Options{
		Tracked:    appCfg.TrackedCountries,
		AssetsHost: appCfg.AssetsHost,
	}
}

// storageSource reads dataset files from the configured storage backend.
func storageSource(store storage.Store) dataset.Source {
	return dataset.SourceFunc(func(ctx context.Context, path string) (io.ReadCloser, error) {
		return store.Get(ctx, path)
	})
}

func loadDataset(ctx context.Context, holder *dataset.Holder, src dataset.Source, path string, logger *zap.Logger) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Dataset(), logger, "dataset load")
	defer cancel()

	if err := holder.Reload(ctx, src, path); err != nil {
		logger.Error("failed to load dataset; dashboard unavailable until it loads",
			zap.String("path", path),
			zap.Error(err))
		return
	}
	ds := holder.Get()
	logger.Info("dataset loaded",
		zap.String("path", path),
		zap.Int("records", ds.Len()),
		zap.Int("countries", len(ds.Countries())),
		zap.Int("min_year", ds.MinYear()),
		zap.Int("max_year", ds.MaxYear()))
}

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(appCfg AppConfig, deps DBDeps, src dataset.Source, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	taskRunner.Register(tasks.ViewerCleanupJob(registry, appCfg.ViewerIdleTimeout, logger))

	if appCfg.DatasetPollInterval > 0 {
		taskRunner.Register(tasks.DatasetReloadJob(deps.Dataset, src, appCfg.DatasetPath, appCfg.DatasetPollInterval, logger))
	}

	// A view is unreachable once its viewer cookie has expired.
	if deps.MongoDatabase != nil {
		taskRunner.Register(tasks.StaleViewCleanupJob(deps.MongoDatabase, appCfg.SessionMaxAge, logger))
	}

	taskRunner.Start()
}
