package dashboard

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	viewstore "github.com/dalemusser/strataenergy/internal/app/store/views"
	"github.com/dalemusser/strataenergy/internal/app/system/indexes"
	"github.com/dalemusser/strataenergy/internal/domain/models"
	"github.com/dalemusser/strataenergy/internal/testutil"
	"go.uber.org/zap"
)

func TestViews_SaveApplyDelete(t *testing.T) {
	testutil.MustBootTemplates(t)
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := viewstore.New(db)
	h, reg := newTestHandler(t, testutil.Dataset(t), store)
	v := testutil.NewViewer()

	serve(h, testutil.NewViewerFormRequest("/country", "country=China", v)).AssertStatus(t, http.StatusOK)
	serve(h, testutil.NewViewerFormRequest("/year", "year=2019", v)).AssertStatus(t, http.StatusOK)

	rec := serve(h, testutil.WithCSRFToken(testutil.NewViewerFormRequest("/views",
		"name=%3Cb%3EChina%3C%2Fb%3E+2019&note=coal+heavy%3Cscript%3Ex%3C%2Fscript%3E", v)))
	rec.AssertRedirect(t, "/dashboard/views")

	saved, err := store.ListForViewer(ctx, v.ID, 10, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 1 {
		t.Fatalf("saved views = %d, want 1", len(saved))
	}
	got := saved[0]
	if got.Name != "China 2019" || got.Country != "China" || got.Year != 2019 {
		t.Errorf("saved view = %+v", got)
	}
	if strings.Contains(got.Note, "script") {
		t.Errorf("note not sanitized: %q", got.Note)
	}

	page := serve(h, testutil.NewViewerRequestWithCSRF(http.MethodGet, "/views", v))
	page.AssertStatus(t, http.StatusOK)
	page.AssertContains(t, "China 2019")

	// Move away, then apply the view to come back.
	c, _ := reg.Get(v.ID)
	c.SetCountry("United States")
	c.SetYear(2020)

	rec = serve(h, testutil.WithCSRFToken(testutil.NewViewerFormRequest("/views/"+got.ID.Hex()+"/apply", "", v)))
	rec.AssertRedirect(t, "/dashboard")
	st := c.State()
	if st.Country != "China" || st.Year != 2019 || st.ViewMode != models.ViewLines {
		t.Errorf("state after apply = %+v", st)
	}

	// Another viewer cannot touch it.
	other := testutil.NewViewer()
	serve(h, testutil.WithCSRFToken(testutil.NewViewerFormRequest("/views/"+got.ID.Hex()+"/delete", "", other))).
		AssertStatus(t, http.StatusNotFound)

	rec = serve(h, testutil.WithCSRFToken(testutil.NewViewerFormRequest("/views/"+got.ID.Hex()+"/delete", "", v)))
	rec.AssertRedirect(t, "/dashboard/views")
	if n, _ := store.CountForViewer(ctx, v.ID); n != 0 {
		t.Errorf("views after delete = %d, want 0", n)
	}
}

func TestViews_SaveRejectsDuplicateAndEmpty(t *testing.T) {
	testutil.MustBootTemplates(t)
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	h, _ := newTestHandler(t, testutil.Dataset(t), viewstore.New(db))
	v := testutil.NewViewer()

	serve(h, testutil.WithCSRFToken(testutil.NewViewerFormRequest("/views", "name=World", v))).
		AssertRedirect(t, "/dashboard/views")

	rec := serve(h, testutil.WithCSRFToken(testutil.NewViewerFormRequest("/views", "name=WORLD", v)))
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "already have a view with this name")

	rec = serve(h, testutil.WithCSRFToken(testutil.NewViewerFormRequest("/views", "name=%3Cscript%3E%3C%2Fscript%3E", v)))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Name is required.")
}

func TestViews_BadID(t *testing.T) {
	testutil.MustBootTemplates(t)
	db := testutil.SetupTestDB(t)
	h, _ := newTestHandler(t, testutil.Dataset(t), viewstore.New(db))

	serve(h, testutil.WithCSRFToken(testutil.NewViewerFormRequest("/views/not-an-id/apply", "", testutil.NewViewer()))).
		AssertStatus(t, http.StatusNotFound)
}

func TestViews_JSONResponses(t *testing.T) {
	testutil.MustBootTemplates(t)
	db := testutil.SetupTestDB(t)
	h, _ := newTestHandler(t, testutil.Dataset(t), viewstore.New(db))
	v := testutil.NewViewer()

	jsonReq := func(target, form string) *http.Request {
		req := testutil.WithCSRFToken(testutil.NewViewerFormRequest(target, form, v))
		req.Header.Set("Accept", "application/json")
		return req
	}

	rec := serve(h, jsonReq("/views", "name=Energy+mix"))
	rec.AssertStatus(t, http.StatusCreated)
	var created models.SavedView
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created view: %v", err)
	}
	if created.Name != "Energy mix" || created.ID.IsZero() {
		t.Errorf("created view = %+v", created)
	}

	rec = serve(h, jsonReq("/views", "name=ENERGY+MIX"))
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "already have a view with this name")

	rec = serve(h, jsonReq("/views", "name="))
	rec.AssertStatus(t, http.StatusBadRequest)
	var invalid struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &invalid); err != nil {
		t.Fatalf("decode validation error: %v", err)
	}
	if invalid.Fields["name"] == "" {
		t.Errorf("fields = %v, want a name entry", invalid.Fields)
	}

	rec = serve(h, jsonReq("/views/"+created.ID.Hex()+"/delete", ""))
	rec.AssertStatus(t, http.StatusNoContent)
	if rec.Body.Len() != 0 {
		t.Errorf("delete body = %q, want empty", rec.Body.String())
	}
}
