package dac

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sockerless/dbexport/api"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options configures a Client.
type Options struct {
	HTTPClient *http.Client
	// PollInterval is the delay between status checks while waiting for an
	// export to finish. Zero submits the export and returns immediately.
	PollInterval time.Duration
	// WaitTimeout bounds the total wait. Zero waits until the service
	// reports a terminal status.
	WaitTimeout time.Duration
}

// Client talks to one or more DAC import/export endpoints.
type Client struct {
	http         *http.Client
	pollInterval time.Duration
	waitTimeout  time.Duration
	logger       zerolog.Logger
}

// NewClient creates a Client. Requests are traced through otelhttp.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout:   2 * time.Minute,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{
		http:         hc,
		pollInterval: opts.PollInterval,
		waitTimeout:  opts.WaitTimeout,
		logger:       logger,
	}
}

// NewExportInput converts an export request to its wire form.
func NewExportInput(req api.ExportRequest) ExportInput {
	return ExportInput{
		XSI: xmlSchemaInstance,
		BlobCredentials: BlobCredentials{
			Type:             accessKeyCredType,
			URI:              req.BlobURI,
			StorageAccessKey: req.StorageKey,
		},
		ConnectionInfo: ConnectionInfo{
			DatabaseName: req.DatabaseName,
			Password:     req.Password,
			ServerName:   req.ServerName,
			UserName:     req.UserName,
		},
	}
}

func checkRequest(req api.ExportRequest) error {
	switch {
	case req.Endpoint == "":
		return &api.ConfigurationError{Field: api.FieldSqlDacEndpoint}
	case req.DatabaseName == "":
		return &api.ConfigurationError{Field: api.FieldDatabaseName}
	case req.ServerName == "":
		return &api.ConfigurationError{Field: "ServerName"}
	case req.BlobURI == "":
		return &api.ConfigurationError{Field: "BlobUri"}
	case req.StorageKey == "":
		return &api.ConfigurationError{Field: "StorageKey"}
	}
	return nil
}

// Export implements api.Exporter. In dry-run mode the request is checked and
// serialised but not sent. Otherwise it is submitted once and, when a poll
// interval is configured, followed until the service reports completion.
func (c *Client) Export(ctx context.Context, req api.ExportRequest) (string, error) {
	if err := checkRequest(req); err != nil {
		return "", err
	}
	body, err := xml.Marshal(NewExportInput(req))
	if err != nil {
		return "", fmt.Errorf("encode export request: %w", err)
	}

	if req.DryRun {
		c.logger.Info().
			Str("endpoint", req.Endpoint).
			Str("database", req.DatabaseName).
			Str("blob", req.BlobURI).
			Int("bytes", len(body)).
			Msg("what-if: export request not submitted")
		return "", nil
	}

	id, err := c.submit(ctx, req.Endpoint, body)
	if err != nil {
		return "", err
	}
	c.logger.Info().Str("request_id", id).Str("database", req.DatabaseName).Msg("export request submitted")

	if c.pollInterval <= 0 {
		return "", nil
	}
	return c.wait(ctx, req, id)
}

func (c *Client) submit(ctx context.Context, endpoint string, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, serviceURL(endpoint, "Export"), bytes.NewReader(body))
	if err != nil {
		return "", &api.EndpointUnreachableError{Endpoint: endpoint, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/xml")

	data, err := c.do(endpoint, httpReq)
	if err != nil {
		return "", err
	}
	var g GUID
	if err := xml.Unmarshal(data, &g); err != nil {
		return "", &api.RemoteExportError{Code: "InvalidResponse", Message: "export response is not a request id: " + err.Error()}
	}
	id, err := uuid.Parse(strings.TrimSpace(g.Value))
	if err != nil {
		return "", &api.RemoteExportError{Code: "InvalidResponse", Message: fmt.Sprintf("request id %q: %v", g.Value, err)}
	}
	return id.String(), nil
}

// Status fetches the status of a request.
func (c *Client) Status(ctx context.Context, req api.ExportRequest, requestID string) (StatusInfo, error) {
	q := url.Values{}
	q.Set("servername", req.ServerName)
	q.Set("username", req.UserName)
	q.Set("password", req.Password)
	q.Set("reqId", requestID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, serviceURL(req.Endpoint, "Status")+"?"+q.Encode(), nil)
	if err != nil {
		return StatusInfo{}, &api.EndpointUnreachableError{Endpoint: req.Endpoint, Err: err}
	}
	data, err := c.do(req.Endpoint, httpReq)
	if err != nil {
		return StatusInfo{}, err
	}
	var list StatusList
	if err := xml.Unmarshal(data, &list); err != nil {
		return StatusInfo{}, &api.RemoteExportError{Code: "InvalidResponse", Message: "status response: " + err.Error()}
	}
	for _, st := range list.Items {
		if strings.EqualFold(st.RequestID, requestID) {
			return st, nil
		}
	}
	return StatusInfo{}, &api.RemoteExportError{Code: "RequestNotFound", Message: "no status for request " + requestID}
}

func (c *Client) wait(ctx context.Context, req api.ExportRequest, requestID string) (string, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if c.waitTimeout > 0 {
		timer := time.NewTimer(c.waitTimeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		st, err := c.Status(ctx, req, requestID)
		if err != nil {
			return "", err
		}
		switch {
		case strings.EqualFold(st.Status, StatusCompleted):
			return st.BlobURI, nil
		case strings.HasPrefix(strings.ToLower(st.Status), strings.ToLower(StatusFailed)):
			return "", classifyFault(req.Endpoint, Fault{Code: "ExportFailed", Message: st.ErrorMessage})
		}
		c.logger.Debug().Str("request_id", requestID).Str("status", st.Status).Msg("waiting for export")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline:
			return "", &api.RemoteExportError{Code: "Timeout", Message: fmt.Sprintf("request %s still %q after %s", requestID, st.Status, c.waitTimeout)}
		case <-ticker.C:
		}
	}
}

// do sends the request and classifies failures.
func (c *Client) do(endpoint string, req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &api.EndpointUnreachableError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &api.EndpointUnreachableError{Endpoint: endpoint, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}
	fault := parseFault(data)
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &api.AuthenticationError{Endpoint: endpoint, Message: fault.Message}
	}
	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		// Gateway statuses mean the service itself was never reached.
		return nil, &api.EndpointUnreachableError{Endpoint: endpoint, Err: fmt.Errorf("gateway returned %s", resp.Status)}
	}
	if fault.Code == "" {
		fault.Code = fmt.Sprintf("HTTP%d", resp.StatusCode)
	}
	return nil, classifyFault(endpoint, fault)
}

func parseFault(data []byte) Fault {
	var f Fault
	if err := xml.Unmarshal(data, &f); err == nil && (f.Code != "" || f.Message != "") {
		return f
	}
	return Fault{Message: strings.TrimSpace(string(data))}
}

// classifyFault reports SQL login failures as authentication errors.
func classifyFault(endpoint string, f Fault) error {
	if strings.Contains(f.Message, "Login failed") {
		return &api.AuthenticationError{Endpoint: endpoint, Message: f.Message}
	}
	return &api.RemoteExportError{Code: f.Code, Message: f.Message}
}

func serviceURL(endpoint, op string) string {
	return strings.TrimRight(endpoint, "/") + "/" + op
}
