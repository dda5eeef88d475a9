// Package indicator fetches the UF reference value used for display-time
// CLP conversion.
package indicator

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://mindicador.cl/api/uf"

// Value is one UF observation.
type Value struct {
	UF   decimal.Decimal `json:"uf"`
	Date string          `json:"date"`
}

// CLP converts a UF amount to pesos at this observation, rounded to whole pesos.
func (v *Value) CLP(uf decimal.Decimal) decimal.Decimal {
	return uf.Mul(v.UF).Round(0)
}

// Client fetches the current UF value. It remembers the last good value and
// serves it when a fetch fails, so the read path degrades instead of erroring.
type Client struct {
	httpClient *http.Client

	// Overridable URL for testing.
	baseURL string

	mu   sync.Mutex
	last *Value
}

// NewClient creates a UF indicator client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
	}
}

// apiResponse is the mindicador.cl response shape.
type apiResponse struct {
	Serie []struct {
		Fecha string  `json:"fecha"`
		Valor float64 `json:"valor"`
	} `json:"serie"`
}

// Latest returns the current UF value. On fetch failure the last known
// value is returned when one exists; without one the error is surfaced.
func (c *Client) Latest() (*Value, error) {
	v, err := c.fetch()
	if err != nil {
		c.mu.Lock()
		cached := c.last
		c.mu.Unlock()
		if cached != nil {
			slog.Warn("uf fetch failed, serving cached value", "error", err, "date", cached.Date)
			return cached, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.last = v
	c.mu.Unlock()
	return v, nil
}

func (c *Client) fetch() (*Value, error) {
	resp, err := c.httpClient.Get(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetching uf value: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing response body", "error", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("uf endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if len(parsed.Serie) == 0 {
		return nil, fmt.Errorf("uf response has no observations")
	}

	return &Value{
		UF:   decimal.NewFromFloat(parsed.Serie[0].Valor),
		Date: parsed.Serie[0].Fecha,
	}, nil
}
