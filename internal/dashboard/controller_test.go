package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/scamwatch/scamwatch/internal/logic"
	"github.com/scamwatch/scamwatch/internal/logic/filters"
	"github.com/scamwatch/scamwatch/internal/logic/ratelimit"
	"github.com/scamwatch/scamwatch/internal/models"
	"github.com/scamwatch/scamwatch/internal/observability"
	"github.com/scamwatch/scamwatch/internal/reporting"
	"github.com/scamwatch/scamwatch/internal/upstream"
	"go.uber.org/zap"
)

const testPayload = `{"data":[
	{"id":"1","page_name":"Free Crypto","is_scam":true,"threat_level":"high","date_scraped":"2025-05-03"},
	{"id":"2","page_name":"Plant Shop","is_scam":false,"threat_level":"low","date_scraped":"2025-05-02"},
	{"id":"3","page_name":"Quick Loans","is_scam":true,"threat_level":"medium","date_scraped":"2025-05-01"},
	{"id":"4","page_name":"Miracle Pills","is_scam":true,"threat_level":"high","reported":1}
]}`

type env struct {
	controller  *Controller
	dataCalls   *int
	reportCalls *int
}

func newTestEnv(t *testing.T, reportStatus int, limiter *ratelimit.SubmissionLimiter) env {
	t.Helper()

	dataCalls := 0
	dataSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dataCalls++
		w.Write([]byte(testPayload))
	}))
	t.Cleanup(dataSrv.Close)

	reportCalls := 0
	reportSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reportCalls++
		w.WriteHeader(reportStatus)
	}))
	t.Cleanup(reportSrv.Close)

	logger := zap.NewNop()
	metrics := observability.NewNoOpRegistry()
	source := upstream.NewClient(dataSrv.URL, time.Second, time.Minute, nil, logger, metrics)
	reporter := reporting.NewClient(reportSrv.URL, time.Second, logger, metrics)

	return env{
		controller:  NewController(source, reporter, limiter, nil, logger, metrics),
		dataCalls:   &dataCalls,
		reportCalls: &reportCalls,
	}
}

func TestLoadPopulatesCollection(t *testing.T) {
	e := newTestEnv(t, http.StatusOK, nil)
	if err := e.controller.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	view := e.controller.View()
	if view.TotalRecords != 4 {
		t.Fatalf("TotalRecords = %d, want 4", view.TotalRecords)
	}
	// default sort is date scraped descending, undated records last
	if view.Records[0].ID != "1" {
		t.Fatalf("first record = %s, want 1", view.Records[0].ID)
	}
	if view.Records[3].ID != "4" {
		t.Fatalf("last record = %s, want the undated 4", view.Records[3].ID)
	}
}

func TestRefreshBypassesCacheAndResetsPage(t *testing.T) {
	e := newTestEnv(t, http.StatusOK, nil)
	if err := e.controller.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	e.controller.SetPage(7)

	if err := e.controller.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if *e.dataCalls != 2 {
		t.Fatalf("backend called %d times, want 2", *e.dataCalls)
	}
	if got := e.controller.Query().Page; got != 1 {
		t.Fatalf("page after refresh = %d, want 1", got)
	}
}

func TestLoadFailureLeavesCollectionUnchanged(t *testing.T) {
	e := newTestEnv(t, http.StatusOK, nil)
	if err := e.controller.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	failing := upstream.NewClient("http://127.0.0.1:1", time.Second, time.Minute, nil, zap.NewNop(), observability.NewNoOpRegistry())
	e.controller.source = failing

	if err := e.controller.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh failure")
	}
	if got := e.controller.View().TotalRecords; got != 4 {
		t.Fatalf("TotalRecords after failed refresh = %d, want 4", got)
	}
}

func TestSetCriteriaResetsPage(t *testing.T) {
	e := newTestEnv(t, http.StatusOK, nil)
	if err := e.controller.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	e.controller.SetPage(3)
	e.controller.SetCriteria(filters.Criteria{Classification: filters.ClassificationScam})

	q := e.controller.Query()
	if q.Page != 1 {
		t.Fatalf("page = %d, want 1 after criteria change", q.Page)
	}
	if got := e.controller.View().TotalRecords; got != 3 {
		t.Fatalf("TotalRecords = %d, want 3 scam records", got)
	}
}

func TestSetPageSizeRejectsUnsupported(t *testing.T) {
	e := newTestEnv(t, http.StatusOK, nil)
	e.controller.SetPageSize(37)
	if got := e.controller.Query().PageSize; got != logic.DefaultPageSize {
		t.Fatalf("page size = %d, want default %d", got, logic.DefaultPageSize)
	}
	e.controller.SetPageSize(50)
	if got := e.controller.Query().PageSize; got != 50 {
		t.Fatalf("page size = %d, want 50", got)
	}
}

func TestSelectByID(t *testing.T) {
	e := newTestEnv(t, http.StatusOK, nil)
	if err := e.controller.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	record, err := e.controller.Select("2")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if record.PageName != "Plant Shop" {
		t.Fatalf("PageName = %q, want Plant Shop", record.PageName)
	}

	if _, err := e.controller.Select("missing"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSubmitReportMarksRecord(t *testing.T) {
	e := newTestEnv(t, http.StatusOK, nil)
	if err := e.controller.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := e.controller.SubmitReport(context.Background(), "1"); err != nil {
		t.Fatalf("SubmitReport: %v", err)
	}
	if *e.reportCalls != 1 {
		t.Fatalf("report calls = %d, want 1", *e.reportCalls)
	}

	record, err := e.controller.Select("1")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !record.IsReported() {
		t.Fatal("record should be marked reported")
	}
}

func TestSubmitReportIdempotent(t *testing.T) {
	e := newTestEnv(t, http.StatusOK, nil)
	if err := e.controller.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// record 4 arrives already reported; no external call may be issued
	if err := e.controller.SubmitReport(context.Background(), "4"); err != nil {
		t.Fatalf("SubmitReport: %v", err)
	}
	if *e.reportCalls != 0 {
		t.Fatalf("report calls = %d, want 0 for an already-reported record", *e.reportCalls)
	}
}

func TestSubmitReportFailureLeavesRecordUntouched(t *testing.T) {
	e := newTestEnv(t, http.StatusInternalServerError, nil)
	if err := e.controller.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	err := e.controller.SubmitReport(context.Background(), "1")
	var serverErr *reporting.ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("err = %v, want ServerError", err)
	}

	record, _ := e.controller.Select("1")
	if record.IsReported() {
		t.Fatal("failed submission must not mark the record reported")
	}
}

func TestSubmitReportUnknownIDStillSucceeds(t *testing.T) {
	e := newTestEnv(t, http.StatusOK, nil)
	if err := e.controller.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := e.controller.SubmitReport(context.Background(), "ghost"); err != nil {
		t.Fatalf("SubmitReport: %v", err)
	}
	if *e.reportCalls != 1 {
		t.Fatalf("report calls = %d, want 1", *e.reportCalls)
	}
	if got := e.controller.View().TotalRecords; got != 4 {
		t.Fatalf("collection size changed to %d", got)
	}
}

func TestSubmitReportEmptyID(t *testing.T) {
	e := newTestEnv(t, http.StatusOK, nil)
	err := e.controller.SubmitReport(context.Background(), "")
	if !errors.Is(err, reporting.ErrInvalidIdentifier) {
		t.Fatalf("err = %v, want ErrInvalidIdentifier", err)
	}
	if *e.reportCalls != 0 {
		t.Fatal("no external call may be made for an empty id")
	}
}

func TestSubmitReportRateLimited(t *testing.T) {
	limiter := ratelimit.NewSubmissionLimiter(ratelimit.Config{
		Capacity:   1,
		RefillRate: 1,
		Enabled:    true,
	}, observability.NewNoOpRegistry())

	// intake rejects so the record stays unreported between attempts
	e := newTestEnv(t, http.StatusBadGateway, limiter)
	if err := e.controller.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := e.controller.SubmitReport(context.Background(), "1"); err == nil {
		t.Fatal("expected server error on first attempt")
	}
	if err := e.controller.SubmitReport(context.Background(), "1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}

func TestStats(t *testing.T) {
	e := newTestEnv(t, http.StatusOK, nil)
	if err := e.controller.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	summary, analytics := e.controller.Stats()
	if summary.Total != 4 || summary.ScamCount != 3 || summary.LegitCount != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.HighThreat != 2 {
		t.Fatalf("HighThreat = %d, want 2", summary.HighThreat)
	}
	if len(analytics.ThreatDistribution) == 0 {
		t.Fatal("expected threat distribution buckets")
	}
}
