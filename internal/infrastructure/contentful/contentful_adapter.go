// Package contentful fetches catalog snapshots from the Contentful Content Delivery API.
package contentful

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

// maxResponseSize is the maximum allowed size of one page (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Adapter implements catalog.CatalogSource over the Delivery API
type Adapter struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures an Adapter
type Option func(*Adapter)

// WithHTTPClient replaces the default HTTP client, e.g. with an instrumented transport
func WithHTTPClient(client *http.Client) Option {
	return func(a *Adapter) {
		a.httpClient = client
	}
}

// WithLogger sets the adapter logger
func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// NewAdapter creates a new Contentful adapter with the given configuration
func NewAdapter(config *Config, opts ...Option) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	a := &Adapter{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Fetch returns every entry of contentType, walking skip/limit pages until the
// reported total is reached. An empty contentType falls back to the configured one.
func (a *Adapter) Fetch(ctx context.Context, contentType string) ([]catalog.RawProduct, error) {
	if contentType == "" {
		contentType = a.config.ContentType
	}

	var products []catalog.RawProduct
	skip := 0
	for {
		page, err := a.fetchPage(ctx, contentType, skip)
		if err != nil {
			return nil, err
		}

		for i := range page.Items {
			item := &page.Items[i]
			if strings.TrimSpace(item.Sys.ID) == "" {
				return nil, fmt.Errorf("%w: entry at position %d has no sys.id", catalog.ErrSourceMalformed, skip+i)
			}
			products = append(products, toRawProduct(item))
		}

		a.logger.Debug("Fetched catalog page",
			zap.String("content_type", contentType),
			zap.Int("skip", skip),
			zap.Int("items", len(page.Items)),
			zap.Int("total", page.Total),
		)

		skip += len(page.Items)
		if len(page.Items) == 0 || skip >= page.Total {
			break
		}
	}

	if products == nil {
		products = []catalog.RawProduct{}
	}
	return products, nil
}

// fetchPage performs one GET against the entries endpoint
func (a *Adapter) fetchPage(ctx context.Context, contentType string, skip int) (*entryCollection, error) {
	query := url.Values{}
	if contentType != "" {
		query.Set("content_type", contentType)
	}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(a.config.PageSize))

	endpoint := fmt.Sprintf("%s/spaces/%s/environments/%s/entries?%s",
		strings.TrimRight(a.config.BaseURL, "/"),
		url.PathEscape(a.config.SpaceID),
		url.PathEscape(a.config.Environment),
		query.Encode(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("contentful: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.config.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", catalog.ErrSourceUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", catalog.ErrSourceUnavailable, describeHTTPError(resp.StatusCode, body))
	}
	if len(body) > maxResponseSize {
		return nil, fmt.Errorf("%w: page exceeds %d bytes", catalog.ErrSourceMalformed, maxResponseSize)
	}

	var page entryCollection
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", catalog.ErrSourceMalformed, err)
	}
	if page.Sys.Type != "" && page.Sys.Type != "Array" {
		return nil, fmt.Errorf("%w: unexpected response type %q", catalog.ErrSourceMalformed, page.Sys.Type)
	}
	return &page, nil
}

func describeHTTPError(status int, body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Sys.ID != "" {
		return fmt.Sprintf("HTTP %d %s: %s", status, apiErr.Sys.ID, apiErr.Message)
	}
	return fmt.Sprintf("HTTP %d", status)
}

func toRawProduct(e *entry) catalog.RawProduct {
	return catalog.RawProduct{
		ExternalID: e.Sys.ID,
		CreatedAt:  e.Sys.CreatedAt,
		UpdatedAt:  e.Sys.UpdatedAt,
		Fields: catalog.RawFields{
			SKU:      e.field("sku"),
			Name:     e.field("name"),
			Brand:    e.field("brand"),
			Model:    e.field("model"),
			Category: e.field("category"),
			Color:    e.field("color"),
			Price:    e.field("price"),
			Currency: e.field("currency"),
			Stock:    e.field("stock"),
		},
	}
}

// Ensure Adapter implements catalog.CatalogSource
var _ catalog.CatalogSource = (*Adapter)(nil)
