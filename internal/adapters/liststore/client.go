// internal/adapters/liststore/client.go
package liststore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pduarte/feira-be/internal/core/domain"
	"github.com/pduarte/feira-be/internal/core/ports"
)

// Config holds list store client configuration
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is the HTTP adapter for the upstream list store. The store's
// contract is small and blunt: full list reads, whole-collection
// replaces, single-item quantity patches, single-item deletes. Nothing
// here adds retries; the retry-once-on-stale policy lives in the
// service layer where the matching context is.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// Statically assert that *Client implements the ListStore port.
var _ ports.ListStore = (*Client)(nil)

// NewClient creates a new list store client
func NewClient(cfg *Config, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid list store base URL %q: %w", cfg.BaseURL, err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With(slog.String("adapter", "liststore")),
	}, nil
}

// Wire DTOs. The store speaks a flat quantity vocabulary; status and
// final quantity are derived server-side.

type itemDTO struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	ReceivedQuantity  decimal.Decimal `json:"received_quantity"`
	DefectiveQuantity decimal.Decimal `json:"defective_quantity"`
	ReturnedQuantity  decimal.Decimal `json:"returned_quantity"`
	Status            string          `json:"status"`
	Notes             string          `json:"notes,omitempty"`
}

type listDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Items       []itemDTO `json:"items"`
}

func (d *itemDTO) toDomain() domain.Item {
	status := domain.ItemStatus(d.Status)
	if status == "" {
		status = domain.ItemStatusPending
	}
	return domain.Item{
		ID:                d.ID,
		ProductID:         d.ProductID,
		OrderedQuantity:   d.Quantity,
		ReceivedQuantity:  d.ReceivedQuantity,
		DefectiveQuantity: d.DefectiveQuantity,
		ReturnedQuantity:  d.ReturnedQuantity,
		FinalQuantity:     d.ReceivedQuantity.Sub(d.ReturnedQuantity),
		Status:            status,
		Notes:             d.Notes,
	}
}

func (d *listDTO) toDomain() *domain.ShoppingList {
	list := &domain.ShoppingList{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Items:       make([]domain.Item, len(d.Items)),
	}
	for i := range d.Items {
		list.Items[i] = d.Items[i].toDomain()
	}
	return list
}

// GetList fetches a list with the complete current state of its items.
func (c *Client) GetList(ctx context.Context, listID string) (*domain.ShoppingList, error) {
	var dto listDTO
	if err := c.do(ctx, http.MethodGet, "/lists/"+url.PathEscape(listID), nil, &dto, ""); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

// ReplaceList replaces the entire item collection of a list. The store
// assigns fresh ids and resets every item to pristine pending state,
// regardless of prior purchases.
func (c *Client) ReplaceList(ctx context.Context, listID string, req ports.ReplaceListRequest) (*domain.ShoppingList, error) {
	var dto listDTO
	if err := c.do(ctx, http.MethodPut, "/lists/"+url.PathEscape(listID), req, &dto, ""); err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "list replaced",
		slog.String("list_id", listID),
		slog.Int("items", len(dto.Items)))

	return dto.toDomain(), nil
}

// PatchItemQuantities updates the quantity breakdown of one item id. A
// 404 means the id died in a replace since it was obtained and is
// surfaced as a StaleReferenceError.
func (c *Client) PatchItemQuantities(ctx context.Context, itemID string, patch ports.ItemQuantityPatch) (*domain.Item, error) {
	var dto itemDTO
	if err := c.do(ctx, http.MethodPatch, "/items/"+url.PathEscape(itemID), patch, &dto, itemID); err != nil {
		return nil, err
	}
	item := dto.toDomain()
	return &item, nil
}

// DeleteItem removes a single item without touching the rest of the
// list.
func (c *Client) DeleteItem(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/items/"+url.PathEscape(itemID), nil, nil, itemID)
}

// Ping checks upstream reachability for health reporting.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, "")
}

// do executes one request. staleID, when non-empty, names the item id a
// 404 response should be attributed to.
func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}, staleID string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL.JoinPath(path).String()
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("list store request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound && staleID != "":
		io.Copy(io.Discard, resp.Body)
		return &domain.StaleReferenceError{ItemID: staleID}
	case resp.StatusCode >= 400:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("list store responded %d to %s %s: %s",
			resp.StatusCode, method, path, string(detail))
	}

	if dest == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode list store response: %w", err)
	}
	return nil
}
