// internal/adapters/liststore/client_test.go
package liststore_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pduarte/feira-be/internal/adapters/liststore"
	"github.com/pduarte/feira-be/internal/core/domain"
	"github.com/pduarte/feira-be/internal/core/ports"
	"github.com/pduarte/feira-be/test/helpers"
)

func newTestClient(t *testing.T, handler http.Handler) *liststore.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := liststore.NewClient(&liststore.Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}, helpers.TestLogger().Logger)
	require.NoError(t, err)
	return client
}

func TestClient_GetList(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/lists/feira-01", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "feira-01",
			"name": "Feira da semana",
			"items": []map[string]any{
				{
					"id":                "item-1",
					"product_id":        "prod-arroz",
					"quantity":          "5",
					"received_quantity": "2",
					"status":            "RECEIVED",
				},
				{
					"id":         "item-2",
					"product_id": "prod-feijao",
					"quantity":   "1.5",
				},
			},
		})
	}))

	list, err := client.GetList(context.Background(), "feira-01")

	require.NoError(t, err)
	assert.Equal(t, "feira-01", list.ID)
	require.Len(t, list.Items, 2)

	first := list.Items[0]
	assert.True(t, first.OrderedQuantity.Equal(decimal.NewFromInt(5)))
	assert.True(t, first.ReceivedQuantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, domain.ItemStatusReceived, first.Status)

	// A missing status on the wire means pristine pending.
	second := list.Items[1]
	assert.Equal(t, domain.ItemStatusPending, second.Status)
	assert.True(t, second.OrderedQuantity.Equal(decimal.RequireFromString("1.5")))
}

func TestClient_ReplaceListSendsWholeCollection(t *testing.T) {
	var received struct {
		Name  string `json:"name"`
		Items []struct {
			ProductID     string          `json:"product_id"`
			Quantity      decimal.Decimal `json:"quantity"`
			CorrelationID string          `json:"correlation_id"`
		} `json:"items"`
	}

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/lists/feira-01", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "feira-01",
			"name": received.Name,
			"items": []map[string]any{
				{"id": "fresh-1", "product_id": "prod-arroz", "quantity": "5"},
			},
		})
	}))

	list, err := client.ReplaceList(context.Background(), "feira-01", ports.ReplaceListRequest{
		Name: "Feira da semana",
		Items: []ports.ReplaceItem{
			{ProductID: "prod-arroz", Quantity: decimal.NewFromInt(5), CorrelationID: uuid.New()},
		},
	})

	require.NoError(t, err)
	require.Len(t, received.Items, 1)
	assert.Equal(t, "prod-arroz", received.Items[0].ProductID)
	assert.NotEmpty(t, received.Items[0].CorrelationID,
		"correlation ids travel with every replace payload")

	require.Len(t, list.Items, 1)
	assert.Equal(t, "fresh-1", list.Items[0].ID)
	assert.Equal(t, domain.ItemStatusPending, list.Items[0].Status)
}

func TestClient_PatchNotFoundIsStaleReference(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		http.Error(w, "not found", http.StatusNotFound)
	}))

	_, err := client.PatchItemQuantities(context.Background(), "dead-id", ports.ItemQuantityPatch{
		Received: decimal.NewFromInt(2),
	})

	var stale *domain.StaleReferenceError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, "dead-id", stale.ItemID)
}

func TestClient_DeleteNotFoundIsStaleReference(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		http.Error(w, "not found", http.StatusNotFound)
	}))

	err := client.DeleteItem(context.Background(), "dead-id")

	var stale *domain.StaleReferenceError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, "dead-id", stale.ItemID)
}

func TestClient_ListNotFoundIsPlainError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such list", http.StatusNotFound)
	}))

	_, err := client.GetList(context.Background(), "missing")

	require.Error(t, err)
	var stale *domain.StaleReferenceError
	assert.False(t, errors.As(err, &stale), "a missing list is not a stale item id")
	assert.Contains(t, err.Error(), "404")
}

func TestClient_ServerErrorIncludesBodyDetail(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "replica out of sync", http.StatusInternalServerError)
	}))

	_, err := client.GetList(context.Background(), "feira-01")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "replica out of sync")
}

func TestClient_Ping(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	assert.NoError(t, client.Ping(context.Background()))
}

func TestClient_InvalidBaseURL(t *testing.T) {
	_, err := liststore.NewClient(&liststore.Config{BaseURL: "://bad"},
		helpers.TestLogger().Logger)
	assert.Error(t, err)
}
