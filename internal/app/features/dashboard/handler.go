// internal/app/features/dashboard/handler.go
package dashboard

import (
	"errors"
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/strataenergy/internal/app/features/errors"
	viewstore "github.com/dalemusser/strataenergy/internal/app/store/views"
	"github.com/dalemusser/strataenergy/internal/app/system/auth"
	sysdash "github.com/dalemusser/strataenergy/internal/app/system/dashboard"
	"github.com/dalemusser/strataenergy/internal/app/system/jsonutil"
	"github.com/dalemusser/strataenergy/internal/app/system/widgets"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DefaultAssetsHost serves echarts.min.js and the world map script when no
// host is configured.
const DefaultAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// Handler serves the dashboard page, its JSON control endpoints, the live
// stream, exports and saved views.
type Handler struct {
	reg        *sysdash.Registry
	views      *viewstore.Store // nil when saved views are disabled
	widgetOpts widgets.Options
	errLog     *errorsfeature.ErrorLogger
	errs       *errorsfeature.Handler
	logger     *zap.Logger
	upgrader   websocket.Upgrader
}

// NewHandler creates a dashboard handler. views may be nil.
func NewHandler(reg *sysdash.Registry, views *viewstore.Store, widgetOpts widgets.Options, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	if widgetOpts.AssetsHost == "" {
		widgetOpts.AssetsHost = DefaultAssetsHost
	}
	if len(widgetOpts.Tracked) == 0 {
		widgetOpts.Tracked = widgets.DefaultTracked
	}
	return &Handler{
		reg:        reg,
		views:      views,
		widgetOpts: widgetOpts,
		errLog:     errLog,
		errs:       errorsfeature.NewHandler(),
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// coordinator returns the viewer's coordinator or writes the error reply.
func (h *Handler) coordinator(w http.ResponseWriter, r *http.Request) (*sysdash.Coordinator, bool) {
	c, err := h.reg.Get(auth.ViewerID(r))
	if err != nil {
		if errors.Is(err, sysdash.ErrNoDataset) {
			h.errs.Unavailable(w, r)
			return nil, false
		}
		h.errLog.JSONInternal(w, r, "failed to load dashboard", err)
		return nil, false
	}
	return c, true
}

// reply sends snap as JSON.
func (h *Handler) reply(w http.ResponseWriter, snap sysdash.Snapshot) {
	jsonutil.OK(w, snap)
}

func assetURL(host, name string) string {
	if !strings.HasSuffix(host, "/") {
		host += "/"
	}
	return host + name
}
