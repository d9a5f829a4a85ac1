package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func performRequest(h echo.HandlerFunc, target string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestHandlerStatus(t *testing.T) {
	h := NewHandler(newTestService())
	rec := performRequest(h.Status, "/api/v1/catalog/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var st Status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !st.ICD.Loaded || st.ICD.Count == 0 {
		t.Errorf("expected loaded ICD status, got %+v", st.ICD)
	}
}

func TestHandlerSearchICD(t *testing.T) {
	h := NewHandler(newTestService())
	rec := performRequest(h.SearchICD, "/api/v1/catalog/icd?q=diabetes")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data  []*ICDEntry `json:"data"`
		Total int         `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Total == 0 || len(resp.Data) == 0 {
		t.Error("expected search hits for 'diabetes'")
	}
}

func TestHandlerSearchICD_MissingQuery(t *testing.T) {
	h := NewHandler(newTestService())
	rec := performRequest(h.SearchICD, "/api/v1/catalog/icd")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandlerSearchOPS_NotLoaded(t *testing.T) {
	h := NewHandler(NewService(newMockICDRepo(), nil, newMockLOINCRepo()))
	rec := performRequest(h.SearchOPS, "/api/v1/catalog/ops?q=x")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 when OPS catalog missing, got %d", rec.Code)
	}
}

func TestHandlerSearchLOINC(t *testing.T) {
	h := NewHandler(newTestService())
	rec := performRequest(h.SearchLOINC, "/api/v1/catalog/loinc?q=718")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
