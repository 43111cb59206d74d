// Package reporting submits scam advertisement reports to the law
// enforcement intake endpoint.
package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/scamwatch/scamwatch/internal/observability"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

var (
	// ErrInvalidIdentifier indicates a submission was attempted without a
	// record identifier. No request is sent in that case.
	ErrInvalidIdentifier = errors.New("report submission requires a record identifier")
	// ErrTimeout indicates the intake endpoint did not answer in time.
	// The report may still have been processed on the remote side.
	ErrTimeout = errors.New("report submission timed out")
	// ErrConnection indicates the intake endpoint could not be reached.
	ErrConnection = errors.New("report submission connection failed")
)

// ServerError indicates the intake endpoint answered with a non-success status.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("report sink returned status %d", e.StatusCode)
}

// submission is the intake request body.
type submission struct {
	ID string `json:"id"`
}

// Client submits reports to the law enforcement intake endpoint.
type Client struct {
	sinkURL    string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    observability.MetricsRegistry
}

// NewClient creates a new report submission client.
func NewClient(sinkURL string, timeout time.Duration, logger *zap.Logger, metrics observability.MetricsRegistry) *Client {
	return &Client{
		sinkURL: sinkURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger:  logger,
		metrics: metrics,
	}
}

// Submit reports the record with the given identifier. A 2xx response means
// the report was accepted; every failure maps to the package's error taxonomy.
func (c *Client) Submit(ctx context.Context, recordID string) error {
	if recordID == "" {
		c.metrics.IncrementReports("invalid")
		return ErrInvalidIdentifier
	}

	start := time.Now()
	outcome := "success"
	defer func() {
		c.metrics.RecordReportLatency(time.Since(start))
		c.metrics.IncrementReports(outcome)
	}()

	body, err := json.Marshal(submission{ID: recordID})
	if err != nil {
		outcome = "failure"
		return fmt.Errorf("marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sinkURL, bytes.NewReader(body))
	if err != nil {
		outcome = "failure"
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		classified := classifyTransportError(err)
		if errors.Is(classified, ErrTimeout) {
			outcome = "timeout"
		} else {
			outcome = "failure"
		}
		return classified
	}
	defer func() {
		if err := resp.Body.Close(); err != nil && c.logger != nil {
			c.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "server_error"
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &ServerError{StatusCode: resp.StatusCode, Body: string(detail)}
	}

	c.logger.Info("report submitted", zap.String("record_id", recordID))
	return nil
}

// classifyTransportError maps a transport failure onto the error taxonomy.
func classifyTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrConnection, err)
}
