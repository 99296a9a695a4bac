// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown is invoked during WAFFLE's shutdown phase, after the HTTP
// server has drained. The context carries the shutdown timeout.
//
// Order: stop the jobs, stop watching the dataset, close every viewer's
// dashboard (ends animation tickers and websocket streams), then
// disconnect MongoDB.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var firstErr error

	if taskRunner != nil {
		logger.Info("stopping background task runner")
		if err := taskRunner.Stop(ctx); err != nil {
			logger.Warn("background task runner did not stop cleanly", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if datasetWatcher != nil {
		if err := datasetWatcher.Close(); err != nil {
			logger.Warn("dataset watcher close failed", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if registry != nil {
		logger.Info("closing viewer dashboards", zap.Int("viewers", registry.Len()))
		registry.Close()
	}

	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
