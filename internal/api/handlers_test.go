package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/scamwatch/scamwatch/internal/config"
	"github.com/scamwatch/scamwatch/internal/dashboard"
	"github.com/scamwatch/scamwatch/internal/logic"
	"github.com/scamwatch/scamwatch/internal/models"
	"github.com/scamwatch/scamwatch/internal/observability"
	"github.com/scamwatch/scamwatch/internal/reporting"
	"github.com/scamwatch/scamwatch/internal/upstream"
	"go.uber.org/zap"
)

const testPayload = `{"data":[
	{"id":"1","page_name":"Free Crypto","is_scam":true,"threat_level":"high","date_scraped":"2025-05-03","report_count":7},
	{"id":"2","page_name":"Plant Shop","is_scam":false,"threat_level":"low","date_scraped":"2025-05-02"},
	{"id":"3","page_name":"Quick Loans","is_scam":true,"threat_level":"medium","date_scraped":"2025-05-01"},
	{"id":"4","page_name":"Miracle Pills","is_scam":true,"threat_level":"high","reported":1}
]}`

func newTestServer(t *testing.T, reportStatus int) *Server {
	t.Helper()

	dataSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testPayload))
	}))
	t.Cleanup(dataSrv.Close)

	reportSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(reportStatus)
	}))
	t.Cleanup(reportSrv.Close)

	logger := zap.NewNop()
	metrics := observability.NewNoOpRegistry()
	source := upstream.NewClient(dataSrv.URL, time.Second, time.Minute, nil, logger, metrics)
	reporter := reporting.NewClient(reportSrv.URL, time.Second, logger, metrics)
	controller := dashboard.NewController(source, reporter, nil, nil, logger, metrics)
	if err := controller.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	return NewServer(logger, controller, nil, metrics, config.Config{})
}

func doRequest(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) logic.View {
	t.Helper()
	var view logic.View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return view
}

func TestRecordsHandler_Default(t *testing.T) {
	srv := newTestServer(t, http.StatusOK)

	rec := doRequest(t, srv, http.MethodGet, "/api/records")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	view := decodeView(t, rec)
	if view.TotalRecords != 4 {
		t.Fatalf("TotalRecords = %d, want 4", view.TotalRecords)
	}
	if view.Page != 1 || view.PageSize != logic.DefaultPageSize {
		t.Fatalf("unexpected pagination: page=%d size=%d", view.Page, view.PageSize)
	}
}

func TestRecordsHandler_ClassificationFilter(t *testing.T) {
	srv := newTestServer(t, http.StatusOK)

	rec := doRequest(t, srv, http.MethodGet, "/api/records?classification=SCAM_ONLY")
	view := decodeView(t, rec)
	if view.TotalRecords != 3 {
		t.Fatalf("TotalRecords = %d, want 3", view.TotalRecords)
	}
	for _, r := range view.Records {
		if !r.IsScam {
			t.Fatalf("record %s is not a scam", r.ID)
		}
	}
}

func TestRecordsHandler_ThreatFilter(t *testing.T) {
	srv := newTestServer(t, http.StatusOK)

	rec := doRequest(t, srv, http.MethodGet, "/api/records?threat=HIGH")
	view := decodeView(t, rec)
	if view.TotalRecords != 2 {
		t.Fatalf("TotalRecords = %d, want 2", view.TotalRecords)
	}
}

func TestRecordsHandler_InvalidThreat(t *testing.T) {
	srv := newTestServer(t, http.StatusOK)

	rec := doRequest(t, srv, http.MethodGet, "/api/records?threat=EXTREME")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRecordsHandler_DateRange(t *testing.T) {
	srv := newTestServer(t, http.StatusOK)

	// reversed bounds are swapped; undated record 4 excluded
	rec := doRequest(t, srv, http.MethodGet, "/api/records?start=2025-05-03&end=2025-05-02&include_undated=false")
	view := decodeView(t, rec)
	if view.TotalRecords != 2 {
		t.Fatalf("TotalRecords = %d, want 2", view.TotalRecords)
	}
}

func TestRecordsHandler_SortAndPaginate(t *testing.T) {
	srv := newTestServer(t, http.StatusOK)

	rec := doRequest(t, srv, http.MethodGet, "/api/records?sort=page_name&order=asc&page_size=10&page=1")
	view := decodeView(t, rec)
	if view.Records[0].PageName != "Free Crypto" {
		t.Fatalf("first record = %q, want Free Crypto", view.Records[0].PageName)
	}
	if view.PageSize != 10 {
		t.Fatalf("PageSize = %d, want 10", view.PageSize)
	}
}

func TestRecordHandler(t *testing.T) {
	srv := newTestServer(t, http.StatusOK)

	rec := doRequest(t, srv, http.MethodGet, "/api/records/2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var record models.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record.PageName != "Plant Shop" {
		t.Fatalf("PageName = %q, want Plant Shop", record.PageName)
	}
}

func TestRecordHandler_NotFound(t *testing.T) {
	srv := newTestServer(t, http.StatusOK)

	rec := doRequest(t, srv, http.MethodGet, "/api/records/999")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestReportHandler_Success(t *testing.T) {
	srv := newTestServer(t, http.StatusOK)

	rec := doRequest(t, srv, http.MethodPost, "/api/records/1/report")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	record, err := srv.Controller.Select("1")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !record.IsReported() {
		t.Fatal("record should be marked reported")
	}
}

func TestReportHandler_SinkRejects(t *testing.T) {
	srv := newTestServer(t, http.StatusInternalServerError)

	rec := doRequest(t, srv, http.MethodPost, "/api/records/1/report")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	record, _ := srv.Controller.Select("1")
	if record.IsReported() {
		t.Fatal("rejected submission must not mark the record")
	}
}

func TestRefreshHandler(t *testing.T) {
	srv := newTestServer(t, http.StatusOK)

	rec := doRequest(t, srv, http.MethodPost, "/api/refresh")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestStatsHandler(t *testing.T) {
	srv := newTestServer(t, http.StatusOK)

	rec := doRequest(t, srv, http.MethodGet, "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if resp.Summary.Total != 4 || resp.Summary.ScamCount != 3 {
		t.Fatalf("unexpected summary: %+v", resp.Summary)
	}
}

func TestExportHandler(t *testing.T) {
	srv := newTestServer(t, http.StatusOK)

	rec := doRequest(t, srv, http.MethodGet, "/api/export")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content type = %q, want text/csv", ct)
	}

	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want header + 4 records", len(rows))
	}
	if rows[0][0] != "id" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
}

func TestHealthHandler(t *testing.T) {
	srv := newTestServer(t, http.StatusOK)

	rec := doRequest(t, srv, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
