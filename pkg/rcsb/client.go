// Package rcsb talks to the RCSB Protein Data Bank legacy REST service:
// an XML search endpoint that lists structure identifiers for an
// experimental method, and a custom-report endpoint that returns CSV rows
// for one structure at a time.
package rcsb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the production REST endpoint.
const DefaultBaseURL = "http://www.rcsb.org/pdb/rest"

// maxResponseSize caps how much of a single response body is read. Reports
// for one structure are small; anything past this is a misbehaving server.
const maxResponseSize = 32 * 1024 * 1024

const queryTemplate = `<?xml version="1.0" encoding="UTF-8"?>` +
	`<orgPdbQuery>` +
	`<version>B0907</version>` +
	`<queryType>org.pdb.query.simple.ExpTypeQuery</queryType>` +
	`<description>Experimental Method Search: Experimental Method=%s</description>` +
	`<mvStructure.expMethod.value>%s</mvStructure.expMethod.value>` +
	`</orgPdbQuery>`

// RemoteError reports a transport or service failure during a remote call.
// Both operations fail fast: one RemoteError aborts the whole run.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string { return fmt.Sprintf("rcsb %s: %v", e.Op, e.Err) }
func (e *RemoteError) Unwrap() error { return e.Err }

// Client issues requests against one base URL with a shared HTTP client.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.SugaredLogger
}

// NewClient creates a Client for baseURL. An empty baseURL selects the
// production endpoint; a nil logger disables progress output.
func NewClient(baseURL string, logger *zap.SugaredLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     logger,
	}
}

// ListIdentifiers returns the structure identifiers matching an experimental
// method. An empty result is not an error; the caller decides whether an
// empty run is fatal.
func (c *Client) ListIdentifiers(ctx context.Context, method string) ([]string, error) {
	query := fmt.Sprintf(queryTemplate, method, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", strings.NewReader(query))
	if err != nil {
		return nil, &RemoteError{Op: "search", Err: err}
	}
	req.Header.Set("Content-Type", "application/xml")

	body, err := c.do(req, "search")
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, line := range strings.Split(string(body), "\n") {
		if id := strings.TrimSpace(line); id != "" {
			ids = append(ids, id)
		}
	}
	c.log.Infow("identifier search complete", "method", method, "count", len(ids))
	return ids, nil
}

// FetchRecords retrieves the custom report for each identifier and returns
// the response bodies concatenated in identifier order. The service is
// queried once per identifier; this loop dominates run latency.
func (c *Client) FetchRecords(ctx context.Context, ids []string, keys []string) (string, error) {
	fields := strings.Join(keys, ",")
	c.log.Infow("fetching structure records", "count", len(ids))

	var sb strings.Builder
	for _, id := range ids {
		reportURL := fmt.Sprintf(
			"%s/customReport.csv?pdbids=%s&customReportColumns=%s&service=wsfile&format=csv",
			c.baseURL, url.QueryEscape(id), url.QueryEscape(fields),
		)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reportURL, nil)
		if err != nil {
			return "", &RemoteError{Op: "fetch " + id, Err: err}
		}
		body, err := c.do(req, "fetch "+id)
		if err != nil {
			return "", err
		}
		sb.Write(body)
	}
	return sb.String(), nil
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{Op: op, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &RemoteError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	return body, nil
}
