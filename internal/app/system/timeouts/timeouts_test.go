package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Short: 7 * time.Second, Export: time.Minute})

	got := Current()
	if got.Short != 7*time.Second {
		t.Errorf("Short = %v, want 7s", got.Short)
	}
	if got.Export != time.Minute {
		t.Errorf("Export = %v, want 1m", got.Export)
	}
	if got.Ping != DefaultPing || got.Dataset != DefaultDataset {
		t.Errorf("zero fields should keep defaults, got %+v", got)
	}
}

func TestConfigureFromEnv(t *testing.T) {
	t.Cleanup(Reset)
	t.Setenv("STRATAENERGY_TIMEOUT_DATASET", "45s")
	t.Setenv("STRATAENERGY_TIMEOUT_PING", "not-a-duration")
	t.Setenv("STRATAENERGY_TIMEOUT_EXPORT", "-5s")

	if n := ConfigureFromEnv(); n != 1 {
		t.Errorf("ConfigureFromEnv() = %d, want 1", n)
	}
	if Dataset() != 45*time.Second {
		t.Errorf("Dataset() = %v, want 45s", Dataset())
	}
	if Ping() != DefaultPing {
		t.Errorf("Ping() = %v, want default", Ping())
	}
	if Export() != DefaultExport {
		t.Errorf("Export() = %v, want default", Export())
	}
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test")
	<-ctx.Done()
	cancel()
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
	}
}
