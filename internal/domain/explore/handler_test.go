package explore

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func performExplore(t *testing.T, fn echo.HandlerFunc, id, query string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+id+"/graph?"+query, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := fn(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestHandlerGraph(t *testing.T) {
	svc, sess := newTestExploreService(t)
	h := NewHandler(svc)

	rec := performExplore(t, h.Graph, sess.Summary.ID, "code=E11.9&neighbors=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var g Graph
	if err := json.Unmarshal(rec.Body.Bytes(), &g); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if g.Code != "E11.9" || len(g.Nodes) == 0 {
		t.Errorf("unexpected graph: %+v", g)
	}
}

func TestHandlerGraph_Errors(t *testing.T) {
	svc, sess := newTestExploreService(t)
	h := NewHandler(svc)

	if rec := performExplore(t, h.Graph, "missing", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown session: expected 404, got %d", rec.Code)
	}
	if rec := performExplore(t, h.Graph, sess.Summary.ID, "code=Z99.9"); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown code: expected 400, got %d", rec.Code)
	}
}

func TestHandlerCharts(t *testing.T) {
	svc, sess := newTestExploreService(t)
	h := NewHandler(svc)

	rec := performExplore(t, h.Charts, sess.Summary.ID, "code=E11.9")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ChartsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Code != "E11.9" || len(resp.Bars) == 0 || resp.Dendrogram == nil {
		t.Errorf("unexpected charts response: %+v", resp)
	}
}

func TestParamsFromQuery(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet,
		"/?code=ALL_CODES&level=2&top=7&neighbors=4&labels=false&highlight=E11.9", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	p := paramsFromQuery(c)
	want := GraphParams{Code: AllCodes, Level: 2, TopN: 7, Neighbors: 4, Labels: false, Highlight: "E11.9"}
	if p != want {
		t.Errorf("paramsFromQuery = %+v, want %+v", p, want)
	}

	// Labels default to on, numbers to zero for later normalization.
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/?level=abc", nil), httptest.NewRecorder())
	p = paramsFromQuery(c)
	if !p.Labels || p.Level != 0 || p.Code != "" {
		t.Errorf("unexpected defaults: %+v", p)
	}
}
