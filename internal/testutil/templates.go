package testutil

import (
	"sync"

	"github.com/dalemusser/strataenergy/internal/app/resources"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

var (
	bootOnce sync.Once
	bootErr  error
)

// MustBootTemplates boots the waffle template engine once per test binary
// and fails the test if it cannot.
//
// The shared layout is registered here. Feature sets (dashboard, errors)
// register themselves in init, so importing the feature under test is
// enough to make its pages renderable.
func MustBootTemplates(t interface{ Fatalf(string, ...any) }) {
	bootOnce.Do(func() {
		resources.LoadSharedTemplates()
		eng := templates.New(false)
		if bootErr = eng.Boot(zap.NewNop()); bootErr == nil {
			templates.UseEngine(eng, zap.NewNop())
		}
	})
	if bootErr != nil {
		t.Fatalf("failed to boot templates: %v", bootErr)
	}
}
