package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"woodoctor/pkg/models"
)

const (
	apiBasePath = "/wp-json/wc/v3"
	pageSize    = 100
)

// Client talks to one WooCommerce store over its v3 REST API using basic
// auth with the consumer key pair.
type Client struct {
	baseURL    string
	key        string
	secret     string
	httpClient *http.Client
	retrier    *Retrier
}

// NewClient builds a client for the given store connection.
func NewClient(store *models.StoreConnection) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(store.StoreURL, "/"),
		key:     store.ConsumerKey,
		secret:  store.ConsumerSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retrier: NewRetrier(nil),
	}
}

// do performs one API call, retrying transient failures, and decodes the
// response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	endpoint := c.baseURL + apiBasePath + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	resp, err := c.retrier.DoHTTP(ctx, method+" "+path, func(ctx context.Context) (*http.Response, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(c.key, c.secret)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return c.httpClient.Do(req)
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr := json.NewDecoder(resp.Body).Decode(apiErr); decodeErr != nil {
			apiErr.Message = resp.Status
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// TestConnection verifies the store URL and credentials with a minimal
// product listing.
func (c *Client) TestConnection(ctx context.Context) error {
	query := url.Values{"per_page": {"1"}}
	var products []Product
	return c.do(ctx, http.MethodGet, "/products", query, nil, &products)
}

// ListProducts returns one page of remote products, optionally filtered by a
// search term.
func (c *Client) ListProducts(ctx context.Context, page, perPage int, search string) ([]Product, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > pageSize {
		perPage = pageSize
	}
	query := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
	if search != "" {
		query.Set("search", search)
	}

	var products []Product
	if err := c.do(ctx, http.MethodGet, "/products", query, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// FetchAllProducts pages through the whole remote catalog.
func (c *Client) FetchAllProducts(ctx context.Context) ([]Product, error) {
	var all []Product
	for page := 1; ; page++ {
		products, err := c.ListProducts(ctx, page, pageSize, "")
		if err != nil {
			return nil, err
		}
		if len(products) == 0 {
			return all, nil
		}
		all = append(all, products...)
	}
}

// GetProductBySKU finds a product by exact SKU, falling back to a scan for
// SKUs that carry a generated uniqueness suffix. Returns nil when no product
// matches.
func (c *Client) GetProductBySKU(ctx context.Context, sku string) (*Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, nil
	}

	query := url.Values{"sku": {sku}}
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/products", query, nil, &products); err != nil {
		return nil, err
	}
	if len(products) > 0 {
		return &products[0], nil
	}

	// The suffix scan only inspects the first page of the catalog. Products
	// beyond it are treated as absent.
	candidates, err := c.ListProducts(ctx, 1, pageSize, "")
	if err != nil {
		return nil, err
	}
	suffixed := regexp.MustCompile("^" + regexp.QuoteMeta(sku) + "-[a-z0-9]{8}$")
	for i := range candidates {
		if suffixed.MatchString(candidates[i].SKU) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

// CreateProduct creates a remote product after applying the payload guards.
func (c *Client) CreateProduct(ctx context.Context, payload *ProductPayload) (*Product, error) {
	payload.prepareForCreate()

	var created Product
	if err := c.do(ctx, http.MethodPost, "/products", nil, payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct updates a remote product after applying the payload guards.
func (c *Client) UpdateProduct(ctx context.Context, productID int64, payload *ProductPayload) (*Product, error) {
	payload.prepareForUpdate()

	var updated Product
	path := fmt.Sprintf("/products/%d", productID)
	if err := c.do(ctx, http.MethodPut, path, nil, payload, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateProductFields patches arbitrary fields of a remote product without
// payload guards. Used for targeted edits like price adjustments.
func (c *Client) UpdateProductFields(ctx context.Context, productID int64, fields map[string]interface{}) (*Product, error) {
	var updated Product
	path := fmt.Sprintf("/products/%d", productID)
	if err := c.do(ctx, http.MethodPut, path, nil, fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProduct removes a remote product. Force skips the trash.
func (c *Client) DeleteProduct(ctx context.Context, productID int64, force bool) error {
	query := url.Values{"force": {strconv.FormatBool(force)}}
	path := fmt.Sprintf("/products/%d", productID)
	return c.do(ctx, http.MethodDelete, path, query, nil, nil)
}

// SearchCategories returns the categories matching a search term.
func (c *Client) SearchCategories(ctx context.Context, search string) ([]Category, error) {
	query := url.Values{"search": {search}}
	var categories []Category
	if err := c.do(ctx, http.MethodGet, "/products/categories", query, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory creates a category with the given name.
func (c *Client) CreateCategory(ctx context.Context, name string) (*Category, error) {
	body := map[string]string{"name": name}
	var created Category
	if err := c.do(ctx, http.MethodPost, "/products/categories", nil, body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// EnsureCategory returns the id of the category with the given name,
// creating it when no existing category matches case-insensitively. A blank
// name yields 0.
func (c *Client) EnsureCategory(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, nil
	}

	categories, err := c.SearchCategories(ctx, name)
	if err != nil {
		return 0, err
	}
	for _, cat := range categories {
		if strings.EqualFold(cat.Name, name) {
			return cat.ID, nil
		}
	}

	log.Debug().Str("category", name).Msg("creating missing category")
	created, err := c.CreateCategory(ctx, name)
	if err != nil {
		return 0, err
	}
	return created.ID, nil
}

// FetchAllCategories pages through every remote category.
func (c *Client) FetchAllCategories(ctx context.Context) ([]Category, error) {
	var all []Category
	for page := 1; ; page++ {
		query := url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(pageSize)},
		}
		var categories []Category
		if err := c.do(ctx, http.MethodGet, "/products/categories", query, nil, &categories); err != nil {
			return nil, err
		}
		if len(categories) == 0 {
			return all, nil
		}
		all = append(all, categories...)
	}
}

// UpdateCategory renames a category.
func (c *Client) UpdateCategory(ctx context.Context, categoryID int64, name string) (*Category, error) {
	body := map[string]string{"name": name}
	var updated Category
	path := fmt.Sprintf("/products/categories/%d", categoryID)
	if err := c.do(ctx, http.MethodPut, path, nil, body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCategory removes a category. The API requires force for categories.
func (c *Client) DeleteCategory(ctx context.Context, categoryID int64) error {
	query := url.Values{"force": {"true"}}
	path := fmt.Sprintf("/products/categories/%d", categoryID)
	return c.do(ctx, http.MethodDelete, path, query, nil, nil)
}

// FetchSchema retrieves the store's product schema document.
func (c *Client) FetchSchema(ctx context.Context) (*Schema, error) {
	var schema Schema
	if err := c.do(ctx, http.MethodGet, "/products/schema", nil, nil, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}
