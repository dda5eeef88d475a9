// Package client provides an HTTP client for the portfolio-tracker REST API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sauma/portfolio-tracker/internal/alerts"
	"github.com/sauma/portfolio-tracker/internal/indicator"
	"github.com/sauma/portfolio-tracker/internal/property"
	"github.com/sauma/portfolio-tracker/internal/report"
	"github.com/sauma/portfolio-tracker/internal/visit"
)

// Client is an HTTP client for the portfolio-tracker API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ShowResponse is the response from GET /api/properties/{id}.
type ShowResponse struct {
	Property *property.Property `json:"property"`
	Visits   []*visit.Visit     `json:"visits"`
}

// LeaseConflict is returned when saving a property entering LEASED status
// while the winning client still has pending commitments.
type LeaseConflict struct {
	Winner              string         `json:"winner"`
	PendingWinnerVisits []*visit.Visit `json:"pending_winner_visits"`
}

// Error implements error.
func (c *LeaseConflict) Error() string {
	return fmt.Sprintf("winner %s has %d pending commitment(s); resolve them first",
		c.Winner, len(c.PendingWinnerVisits))
}

// ListProperties returns all properties.
func (c *Client) ListProperties() ([]*property.Property, error) {
	var props []*property.Property
	if err := c.get("/api/properties", &props); err != nil {
		return nil, err
	}
	return props, nil
}

// GetProperty returns a property with its visits.
func (c *Client) GetProperty(id string) (*ShowResponse, error) {
	var resp ShowResponse
	if err := c.get("/api/properties/"+id, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveProperty upserts a property. A save blocked on winner resolution
// returns a *LeaseConflict error carrying the blocking visits.
func (c *Client) SaveProperty(p *property.Property) (*property.Property, error) {
	path := "/api/properties"
	method := http.MethodPost
	if p.ID != "" {
		path += "/" + p.ID
		method = http.MethodPut
	}

	body, status, err := c.do(method, path, p)
	if err != nil {
		return nil, err
	}

	if status == http.StatusConflict {
		var conflict LeaseConflict
		if err := json.Unmarshal(body, &conflict); err == nil && conflict.Winner != "" {
			return nil, &conflict
		}
		return nil, apiErrorFrom(body, status)
	}
	if status != http.StatusOK {
		return nil, apiErrorFrom(body, status)
	}

	var saved property.Property
	if err := json.Unmarshal(body, &saved); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &saved, nil
}

// DeleteProperty removes a property and its visits.
func (c *Client) DeleteProperty(id string) error {
	body, status, err := c.do(http.MethodDelete, "/api/properties/"+id, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiErrorFrom(body, status)
	}
	return nil
}

// AddVisit records a new visit against a property.
func (c *Client) AddVisit(propertyID string, v *visit.Visit) (*visit.Visit, error) {
	body, status, err := c.do(http.MethodPost, "/api/properties/"+propertyID+"/visits", v)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, apiErrorFrom(body, status)
	}

	var saved visit.Visit
	if err := json.Unmarshal(body, &saved); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &saved, nil
}

// ListVisits returns all visits.
func (c *Client) ListVisits() ([]*visit.Visit, error) {
	var visits []*visit.Visit
	if err := c.get("/api/visits", &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

// ListPropertyVisits returns a property's visits.
func (c *Client) ListPropertyVisits(propertyID string) ([]*visit.Visit, error) {
	var visits []*visit.Visit
	if err := c.get("/api/properties/"+propertyID+"/visits", &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

// GetVisit returns a visit with its history.
func (c *Client) GetVisit(id string) (*visit.Visit, error) {
	var v visit.Visit
	if err := c.get("/api/visits/"+id, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// MarkDone completes a visit's active commitment.
func (c *Client) MarkDone(visitID string) (*visit.Visit, error) {
	return c.postVisit("/api/visits/" + visitID + "/done")
}

// ScheduleNewAction replaces a visit's active commitment.
func (c *Client) ScheduleNewAction(visitID, action, date, note string) (*visit.Visit, error) {
	req := map[string]string{"action": action, "date": date, "note": note}
	body, status, err := c.do(http.MethodPost, "/api/visits/"+visitID+"/schedule", req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiErrorFrom(body, status)
	}

	var v visit.Visit
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &v, nil
}

// Alerts returns the stale-property and commitment alert sets.
func (c *Client) Alerts() (*alerts.Result, error) {
	var result alerts.Result
	if err := c.get("/api/alerts", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ExecutiveReport returns per-executive visit counts.
func (c *Client) ExecutiveReport() ([]report.ExecutiveActivity, error) {
	var result []report.ExecutiveActivity
	if err := c.get("/api/reports/executives", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// StockReport returns the portfolio composition summary.
func (c *Client) StockReport() (*report.StockSummary, error) {
	var result report.StockSummary
	if err := c.get("/api/reports/stock", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UF returns the current UF reference value.
func (c *Client) UF() (*indicator.Value, error) {
	var v indicator.Value
	if err := c.get("/api/uf", &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) postVisit(path string) (*visit.Visit, error) {
	body, status, err := c.do(http.MethodPost, path, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiErrorFrom(body, status)
	}

	var v visit.Visit
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &v, nil
}

// get performs a GET and decodes a successful response into out.
func (c *Client) get(path string, out interface{}) error {
	body, status, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiErrorFrom(body, status)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// do performs a request and returns the raw body and status code.
func (c *Client) do(method, path string, payload interface{}) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Printf("warning: closing response body: %v\n", cerr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading response: %w", err)
	}

	return body, resp.StatusCode, nil
}

// apiErrorFrom extracts the server's error message from a failed response.
func apiErrorFrom(body []byte, status int) error {
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		return fmt.Errorf("%s (status %d)", resp.Error, status)
	}
	return fmt.Errorf("unexpected response (status %d)", status)
}
