// Package lookup resolves foods against the OpenFoodFacts public API.
package lookup

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/grubapp/grub/internal/storage"
)

const DefaultBaseURL = "https://world.openfoodfacts.org"

// Client queries OpenFoodFacts. Results are mapped to food insert
// payloads with source "openfoodfacts".
type Client struct {
	http *resty.Client
}

// NewClient builds a client with a 5s connect and 10s total timeout.
// baseURL is overridable for tests and self-hosted mirrors.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetTransport(&http.Transport{
			DialContext: (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		}).
		SetHeader("User-Agent", "grub/1.0 (https://github.com/grubapp/grub)")

	return &Client{http: c}
}

// Search runs a full-text product search, dropping products without a
// name or kcal figure.
func (c *Client) Search(ctx context.Context, query string) ([]storage.NewFood, error) {
	var result searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"search_terms":  query,
			"search_simple": "1",
			"action":        "process",
			"json":          "1",
			"page_size":     "20",
		}).
		SetResult(&result).
		Get("/cgi/search.pl")
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("product search returned status %d", resp.StatusCode())
	}

	foods := []storage.NewFood{}
	for i := range result.Products {
		if f := toFood(&result.Products[i]); f != nil {
			foods = append(foods, *f)
		}
	}
	return foods, nil
}

// LookupBarcode resolves a single barcode. A nil result means the
// product is unknown.
func (c *Client) LookupBarcode(ctx context.Context, code string) (*storage.NewFood, error) {
	var result productResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/api/v2/product/" + code + ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to look up barcode: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("barcode lookup returned status %d", resp.StatusCode())
	}
	if result.Status != 1 {
		return nil, nil
	}
	return toFood(result.Product), nil
}
