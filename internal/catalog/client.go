// Package catalog talks to the product service.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/buy01/order-service/pkg/http"
)

// Client adjusts product stock over the product service's REST API.
type Client struct {
	baseURL string
}

// NewClient creates a Client against the product API base URL, e.g.
// "http://localhost:8081/api/v1/products".
func NewClient(baseURL string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/")}
}

// AdjustQuantity applies a signed stock delta to a product:
// PUT {base}/{productID}/quantity?delta=n.
func (c *Client) AdjustQuantity(ctx context.Context, productID string, delta int) error {
	endpoint := fmt.Sprintf("%s/%s/quantity?delta=%d", c.baseURL, url.PathEscape(productID), delta)

	resp, err := http.Put(endpoint).
		Timeout(5 * time.Second).
		Retry(2, 250*time.Millisecond).
		WithContext(ctx).
		Send()
	if err != nil {
		return fmt.Errorf("catalog: adjust quantity for %s: %w", productID, err)
	}
	return resp.Throw()
}
