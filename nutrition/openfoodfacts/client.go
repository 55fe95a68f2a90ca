package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/librediet/librediet-api/env"
	"github.com/librediet/librediet-api/nutrition"
)

// The subset of product fields requested from the API
const productFields = "code,product_name,brands,serving_size,nutriments,image_url"

// Maximum number of products requested per text search
const searchPageSize = 20

// Client implements the nutrition.Provider interface against the
// Open Food Facts HTTP API
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new client and loads values in from the environment
func NewClient() (*Client, error) {
	baseURL, err := env.GetEnv("Open Food Facts base URL", "OFF_BASE_URL")
	if err != nil {
		return nil, err
	}

	timeout, err := env.GetDurationEnv("Open Food Facts request timeout", "OFF_REQUEST_TIMEOUT")
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Expected JSON from the product lookup request
type productResponse struct {
	Status  int                      `json:"status"`
	Product *nutrition.RemoteProduct `json:"product"`
}

// Expected JSON from the text search request
type searchResponse struct {
	Count    int                       `json:"count"`
	Products []nutrition.RemoteProduct `json:"products"`
}

// LookupByBarcode fetches a single product record by its barcode.
// A product the remote database does not know returns (nil, nil).
func (c *Client) LookupByBarcode(ctx context.Context, barcode string) (*nutrition.RemoteProduct, error) {
	requestURL := fmt.Sprintf("%s/api/v2/product/%s?fields=%s",
		c.baseURL, url.PathEscape(barcode), productFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "barcode lookup request failed")
	}
	defer res.Body.Close()

	// The API reports unknown barcodes with a 404
	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("barcode lookup returned status %d", res.StatusCode)
	}

	// Parse JSON into expected shape
	result := productResponse{}
	err = json.NewDecoder(res.Body).Decode(&result)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode barcode lookup response")
	}

	// Status 0 means the product is not in the database
	if result.Status != 1 || result.Product == nil {
		return nil, nil
	}

	return result.Product, nil
}

// SearchByText fetches product records matching the free-text query
func (c *Client) SearchByText(ctx context.Context, query string) ([]nutrition.RemoteProduct, error) {
	params := url.Values{}
	params.Set("search_terms", query)
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("page_size", strconv.Itoa(searchPageSize))
	params.Set("fields", productFields)
	requestURL := fmt.Sprintf("%s/cgi/search.pl?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "text search request failed")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("text search returned status %d", res.StatusCode)
	}

	// Parse JSON into expected shape
	result := searchResponse{}
	err = json.NewDecoder(res.Body).Decode(&result)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode text search response")
	}

	return result.Products, nil
}
