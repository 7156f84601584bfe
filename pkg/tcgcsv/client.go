package tcgcsv

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tcgpulse/tcgpulse_api/internal/utils"
)

// Client is a minimal HTTP client for the tcgcsv price feed. The feed
// requires no authentication; all endpoints are plain JSON under
// {base}/{categoryId}/...
type Client struct {
	client     *resty.Client
	baseURL    string
	categoryID int
}

// NewClient constructs a feed client with sane defaults.
func NewClient(baseURL string, categoryID int) *Client {
	client := resty.New()
	client.SetTimeout(30 * time.Second)

	return &Client{
		client:     client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		categoryID: categoryID,
	}
}

// ListGroups fetches all card groups for the configured category.
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	url := fmt.Sprintf("%s/%d/groups", c.baseURL, c.categoryID)

	var envelope groupsEnvelope
	if err := c.getJSON(ctx, url, &envelope); err != nil {
		return nil, err
	}
	if envelope.Results == nil {
		return nil, fmt.Errorf("%w: groups response missing results array", utils.ErrUpstreamMalformed)
	}
	return *envelope.Results, nil
}

// ListProducts fetches all products for a group.
func (c *Client) ListProducts(ctx context.Context, groupID int) ([]Product, error) {
	url := fmt.Sprintf("%s/%d/%d/products", c.baseURL, c.categoryID, groupID)

	var envelope productsEnvelope
	if err := c.getJSON(ctx, url, &envelope); err != nil {
		return nil, err
	}
	if envelope.Results == nil {
		return nil, fmt.Errorf("%w: products response missing results array", utils.ErrUpstreamMalformed)
	}
	return *envelope.Results, nil
}

// ListPrices fetches all price quotes for a group. A product may appear
// several times, once per sub-type variant.
func (c *Client) ListPrices(ctx context.Context, groupID int) ([]Price, error) {
	url := fmt.Sprintf("%s/%d/%d/prices", c.baseURL, c.categoryID, groupID)

	var envelope pricesEnvelope
	if err := c.getJSON(ctx, url, &envelope); err != nil {
		return nil, err
	}
	if envelope.Results == nil {
		return nil, fmt.Errorf("%w: prices response missing results array", utils.ErrUpstreamMalformed)
	}
	return *envelope.Results, nil
}

// FetchGroupCSV downloads a group's ProductsAndPrices.csv snapshot and
// parses it into one map per row keyed by the header line.
func (c *Client) FetchGroupCSV(ctx context.Context, groupID int) ([]map[string]string, error) {
	url := fmt.Sprintf("%s/%d/%d/ProductsAndPrices.csv", c.baseURL, c.categoryID, groupID)

	resp, err := c.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrUpstreamUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: csv fetch returned status %d", utils.ErrUpstreamUnavailable, resp.StatusCode())
	}

	reader := csv.NewReader(strings.NewReader(string(resp.Body())))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid csv body: %v", utils.ErrUpstreamMalformed, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty csv body", utils.ErrUpstreamMalformed)
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				record[col] = row[i]
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// getJSON performs a GET and decodes the JSON body into result. Non-2xx
// statuses map to ErrUpstreamUnavailable, undecodable bodies to
// ErrUpstreamMalformed. The caller is responsible for shape checks beyond
// basic JSON validity.
func (c *Client) getJSON(ctx context.Context, url string, result any) error {
	resp, err := c.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrUpstreamUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: feed returned status %d for %s", utils.ErrUpstreamUnavailable, resp.StatusCode(), url)
	}

	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", utils.ErrUpstreamMalformed, err)
	}
	return nil
}
