// Package remote fetches the property snapshot from the hosted row store.
// Callers fall back to the local snapshot when the fetch fails; this client
// never touches local state.
package remote

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sauma/portfolio-tracker/internal/property"
)

// Client fetches properties from the hosted REST row store.
type Client struct {
	httpClient *http.Client
	apiKey     string

	// Overridable URL for testing.
	baseURL string
}

// NewClient creates a remote row-store client.
func NewClient(baseURL, apiKey string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("remote store URL is required")
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiKey:     apiKey,
		baseURL:    baseURL,
	}, nil
}

// row is the remote table shape: snake_case Spanish column names.
type row struct {
	ID                    string   `json:"id"`
	PropertyName          string   `json:"property_name"`
	Address               string   `json:"address"`
	Comuna                string   `json:"comuna"`
	OwnerName             *string  `json:"owner_name"`
	CondominiumName       *string  `json:"condominium_name"`
	PropertyType          *string  `json:"property_type"`
	Status                string   `json:"status"`
	FechaDisponibleDesde  *string  `json:"fecha_disponible_desde"`
	ArriendoPublicacionUF *float64 `json:"arriendo_publicacion_uf"`
	SuperficieTerreno     *float64 `json:"superficie_terreno"`
	SuperficieConstruida  *float64 `json:"superficie_construida"`
	SuperficieBodega      *float64 `json:"superficie_bodega"`
}

// statusFromRemote maps the remote store's Spanish status strings.
func statusFromRemote(s string) (property.Status, error) {
	switch s {
	case "Disponible":
		return property.StatusAvailable, nil
	case "Arrendado":
		return property.StatusLeased, nil
	case "Aviso entrega":
		return property.StatusNoticeGiven, nil
	}
	return "", fmt.Errorf("unknown remote status: %q", s)
}

// FetchProperties returns the remote property snapshot mapped into the
// local model. Rows with unknown statuses are skipped, not fatal.
func (c *Client) FetchProperties() ([]*property.Property, error) {
	req, err := http.NewRequest("GET", c.baseURL+"/rest/v1/properties?select=*&order=property_name.asc", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote properties: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing response body", "error", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote store returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var rows []row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	properties := make([]*property.Property, 0, len(rows))
	for _, r := range rows {
		p, err := mapRow(r)
		if err != nil {
			slog.Warn("skipping remote row", "id", r.ID, "error", err)
			continue
		}
		properties = append(properties, p)
	}

	return properties, nil
}

func mapRow(r row) (*property.Property, error) {
	status, err := statusFromRemote(r.Status)
	if err != nil {
		return nil, err
	}

	p := &property.Property{
		ID:      r.ID,
		Name:    r.PropertyName,
		Address: r.Address,
		Commune: r.Comuna,
		Status:  status,
	}
	if r.OwnerName != nil {
		p.Owner = *r.OwnerName
	}
	if r.CondominiumName != nil {
		p.Condominium = *r.CondominiumName
	}
	if r.PropertyType != nil {
		p.Type = *r.PropertyType
	}
	if r.ArriendoPublicacionUF != nil {
		p.PriceUF = decimal.NewFromFloat(*r.ArriendoPublicacionUF)
	}
	if r.SuperficieTerreno != nil {
		p.LandM2 = *r.SuperficieTerreno
	}
	if r.SuperficieConstruida != nil {
		p.BuiltM2 = *r.SuperficieConstruida
	}
	if r.SuperficieBodega != nil {
		p.StorageM2 = *r.SuperficieBodega
	}
	if status == property.StatusAvailable && r.FechaDisponibleDesde != nil {
		p.Availability = &property.Availability{VacancyStartDate: *r.FechaDisponibleDesde}
	}

	return p, nil
}
