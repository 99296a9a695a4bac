// internal/app/features/dashboard/page.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/strataenergy/internal/app/system/viewdata"
	"github.com/dalemusser/strataenergy/internal/app/system/widgets"
	"github.com/dalemusser/waffle/pantry/templates"
)

// ServePage renders the dashboard shell. Charts are drawn by the page
// script from /dashboard/state and the live stream.
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	snap := c.Snapshot()

	vm := PageVM{
		BaseVM:     viewdata.New(r),
		Year:       snap.State.Year,
		MinYear:    snap.MinYear,
		MaxYear:    snap.MaxYear,
		Country:    snap.State.Country,
		ViewMode:   string(snap.State.ViewMode),
		Playing:    snap.State.Playing,
		Countries:  c.Dataset().Countries(),
		KPIs:       snap.KPIs,
		EChartsJS:  assetURL(h.widgetOpts.AssetsHost, "echarts.min.js"),
		WorldMapJS: assetURL(h.widgetOpts.AssetsHost, "maps/world.js"),
	}
	vm.Title = "Dashboard"
	for _, cc := range snap.Charts {
		vm.Charts = append(vm.Charts, ChartPanelVM{
			Name:  cc.Name,
			Title: cc.Title,
			Wide:  cc.Name == "world-map",
			PNG:   widgets.IsTimeSeries(cc.Name),
		})
	}

	templates.Render(w, r, "dashboard/index", vm)
}
