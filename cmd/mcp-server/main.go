// Command mcp-server exposes the dashboard pipeline as MCP tools so
// investigation agents can query and report records over stdio.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/scamwatch/scamwatch/internal/config"
	"github.com/scamwatch/scamwatch/internal/dashboard"
	"github.com/scamwatch/scamwatch/internal/logic"
	"github.com/scamwatch/scamwatch/internal/logic/filters"
	"github.com/scamwatch/scamwatch/internal/models"
	"github.com/scamwatch/scamwatch/internal/observability"
	"github.com/scamwatch/scamwatch/internal/reporting"
	"github.com/scamwatch/scamwatch/internal/upstream"
	"go.uber.org/zap"
)

type ListRecordsInput struct {
	Classification string   `json:"classification,omitempty"`
	Threat         []string `json:"threat,omitempty"`
	Sort           string   `json:"sort,omitempty"`
	Order          string   `json:"order,omitempty"`
	Page           int      `json:"page,omitempty"`
	PageSize       int      `json:"page_size,omitempty"`
}

type ListRecordsOutput struct {
	Records      []models.Record `json:"records"`
	Page         int             `json:"page"`
	TotalPages   int             `json:"total_pages"`
	TotalRecords int             `json:"total_records"`
}

type GetRecordInput struct {
	ID string `json:"id"`
}

type GetRecordOutput struct {
	Record models.Record `json:"record"`
}

type ReportRecordInput struct {
	ID string `json:"id"`
}

type ReportRecordOutput struct {
	Status string `json:"status"`
}

type GetStatsOutput struct {
	Summary   logic.Summary   `json:"summary"`
	Analytics logic.Analytics `json:"analytics"`
}

// DashboardServer holds the tool dependencies.
type DashboardServer struct {
	controller *dashboard.Controller
	logger     *zap.Logger
}

// ListRecords runs the filter, sort and paginate pipeline for an agent query.
func (s *DashboardServer) ListRecords(ctx context.Context, req *mcp.CallToolRequest, input ListRecordsInput) (*mcp.CallToolResult, ListRecordsOutput, error) {
	criteria := filters.Criteria{
		Classification: filters.ParseClassification(input.Classification),
		IncludeUndated: true,
	}
	if len(input.Threat) > 0 {
		criteria.ThreatCategories = make(map[models.ThreatCategory]bool)
		for _, raw := range input.Threat {
			category := models.ThreatCategory(strings.ToUpper(strings.TrimSpace(raw)))
			switch category {
			case models.ThreatHigh, models.ThreatMedium, models.ThreatLow, models.ThreatOther:
				criteria.ThreatCategories[category] = true
			default:
				return nil, ListRecordsOutput{}, fmt.Errorf("unknown threat category %q", raw)
			}
		}
	}

	s.controller.SetCriteria(criteria)
	if input.Sort != "" {
		s.controller.SetSort(input.Sort, strings.EqualFold(input.Order, "asc"))
	}
	if input.PageSize > 0 {
		s.controller.SetPageSize(input.PageSize)
	}
	if input.Page > 0 {
		s.controller.SetPage(input.Page)
	}

	view := s.controller.View()
	return nil, ListRecordsOutput{
		Records:      view.Records,
		Page:         view.Page,
		TotalPages:   view.TotalPages,
		TotalRecords: view.TotalRecords,
	}, nil
}

// GetRecord looks up a single record by its global identifier.
func (s *DashboardServer) GetRecord(ctx context.Context, req *mcp.CallToolRequest, input GetRecordInput) (*mcp.CallToolResult, GetRecordOutput, error) {
	record, err := s.controller.Select(input.ID)
	if err != nil {
		return nil, GetRecordOutput{}, fmt.Errorf("record %q not found", input.ID)
	}
	return nil, GetRecordOutput{Record: record}, nil
}

// ReportRecord submits a record to the law enforcement intake endpoint.
func (s *DashboardServer) ReportRecord(ctx context.Context, req *mcp.CallToolRequest, input ReportRecordInput) (*mcp.CallToolResult, ReportRecordOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := s.controller.SubmitReport(ctx, input.ID); err != nil {
		return nil, ReportRecordOutput{}, err
	}
	return nil, ReportRecordOutput{Status: "reported"}, nil
}

// GetStats summarizes the collection for an agent overview.
func (s *DashboardServer) GetStats(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, GetStatsOutput, error) {
	summary, analytics := s.controller.Stats()
	return nil, GetStatsOutput{Summary: summary, Analytics: analytics}, nil
}

func main() {
	cfg := config.Load()

	logger, err := observability.InitLogger(cfg.ServiceName + "-mcp")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	metrics := observability.NewNoOpRegistry()
	source := upstream.NewClient(cfg.DataSourceURL, cfg.RequestTimeout, cfg.CacheTTL, nil, logger, metrics)
	reporter := reporting.NewClient(cfg.ReportSinkURL, cfg.RequestTimeout, logger, metrics)
	controller := dashboard.NewController(source, reporter, nil, nil, logger, metrics)

	loadCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	if err := controller.Load(loadCtx); err != nil {
		logger.Warn("initial load failed, starting with an empty collection", zap.Error(err))
	}
	cancel()

	dashSrv := &DashboardServer{controller: controller, logger: logger}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "scamwatch",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_records",
		Description: "List analyzed advertisement records with filtering, sorting and pagination",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"classification": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"ALL", "SCAM_ONLY", "LEGIT_ONLY"},
					"description": "Scam classification filter (optional, defaults to ALL)",
				},
				"threat": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Threat categories to include: HIGH, MEDIUM, LOW, OTHER (optional, empty means all)",
				},
				"sort": map[string]interface{}{
					"type":        "string",
					"description": "Sort field, e.g. date_scraped, threat_level, report_count (optional)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort direction (optional, defaults to desc)",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "1-based page number (optional)",
				},
				"page_size": map[string]interface{}{
					"type":        "integer",
					"enum":        []int{10, 20, 50, 100},
					"description": "Rows per page (optional, defaults to 20)",
				},
			},
		},
	}, dashSrv.ListRecords)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_record",
		Description: "Get the full analysis for a single record by id",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Record identifier",
				},
			},
			"required": []string{"id"},
		},
	}, dashSrv.GetRecord)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "report_record",
		Description: "Report a scam advertisement record to the law enforcement intake endpoint",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Record identifier",
				},
			},
			"required": []string{"id"},
		},
	}, dashSrv.ReportRecord)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_stats",
		Description: "Get overview metrics and chart data for the loaded collection",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	}, dashSrv.GetStats)

	logger.Info("MCP server running via stdio")

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
