//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/pduarte/feira-be/internal/adapters/db"
	"github.com/pduarte/feira-be/internal/adapters/liststore"
	redis_a "github.com/pduarte/feira-be/internal/adapters/redis_adapter"
	"github.com/pduarte/feira-be/internal/core/domain"
	"github.com/pduarte/feira-be/internal/core/ports"
	"github.com/pduarte/feira-be/internal/core/services"
	"github.com/pduarte/feira-be/internal/handlers"
	"github.com/pduarte/feira-be/test/helpers"
)

// ListWorkflowE2ESuite runs the whole engine stack: real HTTP handlers,
// the real upstream client talking to an in-process store shim with
// destructive replace semantics, a real redis cache/locker and the
// real audit repository.
type ListWorkflowE2ESuite struct {
	suite.Suite
	api       *httptest.Server
	upstream  *httptest.Server
	client    *http.Client
	baseURL   string
	testDB    *helpers.TestDB
	testRedis *helpers.TestRedis
	store     *helpers.FakeListStore
}

func (s *ListWorkflowE2ESuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())
	s.store = helpers.NewFakeListStore()

	s.upstream = httptest.NewServer(s.upstreamShim())

	log := helpers.TestLogger()

	storeClient, err := liststore.NewClient(&liststore.Config{
		BaseURL: s.upstream.URL,
		Timeout: 5 * time.Second,
	}, log.Logger)
	s.Require().NoError(err)

	cache := redis_a.NewCache(s.testRedis.Client, time.Hour, log.Logger)
	auditRepo := db.NewAuditRepository(s.testDB.Database, log.Logger)
	service := services.NewListService(storeClient, cache, auditRepo, cache,
		30*time.Second, log.Logger)
	handler := handlers.NewListHandler(service, auditRepo, log.Logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/lists/{id}", handler.GetList)
	mux.HandleFunc("PUT /api/v1/lists/{id}", handler.SaveList)
	mux.HandleFunc("POST /api/v1/lists/{id}/items/{itemId}/purchase", handler.RecordPurchase)
	mux.HandleFunc("POST /api/v1/lists/{id}/items/{itemId}/transfer", handler.Transfer)
	mux.HandleFunc("GET /api/v1/lists/{id}/reconciliations", handler.Reconciliations)

	s.api = httptest.NewServer(mux)
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.api.URL + "/api/v1"
}

func (s *ListWorkflowE2ESuite) TearDownSuite() {
	s.api.Close()
	s.upstream.Close()
}

// upstreamShim exposes the fake store over the upstream wire contract.
func (s *ListWorkflowE2ESuite) upstreamShim() http.Handler {
	mux := http.NewServeMux()

	writeList := func(w http.ResponseWriter, list *domain.ShoppingList) {
		items := make([]map[string]any, len(list.Items))
		for i, item := range list.Items {
			items[i] = map[string]any{
				"id":                 item.ID,
				"product_id":         item.ProductID,
				"quantity":           item.OrderedQuantity,
				"received_quantity":  item.ReceivedQuantity,
				"defective_quantity": item.DefectiveQuantity,
				"returned_quantity":  item.ReturnedQuantity,
				"status":             string(item.Status),
				"notes":              item.Notes,
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          list.ID,
			"name":        list.Name,
			"description": list.Description,
			"items":       items,
		})
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("GET /lists/{id}", func(w http.ResponseWriter, r *http.Request) {
		list, err := s.store.GetList(r.Context(), r.PathValue("id"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeList(w, list)
	})

	mux.HandleFunc("PUT /lists/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req ports.ReplaceListRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		list, err := s.store.ReplaceList(r.Context(), r.PathValue("id"), req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeList(w, list)
	})

	mux.HandleFunc("PATCH /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		var patch ports.ItemQuantityPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		item, err := s.store.PatchItemQuantities(r.Context(), r.PathValue("id"), patch)
		if err != nil {
			var stale *domain.StaleReferenceError
			if errors.As(err, &stale) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":                 item.ID,
			"product_id":         item.ProductID,
			"quantity":           item.OrderedQuantity,
			"received_quantity":  item.ReceivedQuantity,
			"defective_quantity": item.DefectiveQuantity,
			"returned_quantity":  item.ReturnedQuantity,
			"status":             string(item.Status),
		})
	})

	mux.HandleFunc("DELETE /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.DeleteItem(r.Context(), r.PathValue("id")); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

type wireItem struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	OrderedQuantity  decimal.Decimal `json:"ordered_quantity"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
	Status           string          `json:"status"`
}

type wireList struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Status string     `json:"status"`
	Items  []wireItem `json:"items"`
}

func (s *ListWorkflowE2ESuite) TestCompleteListWorkflow() {
	// 1. Create the list through a full edit.
	resp := s.makeRequest("PUT", "/lists/feira-e2e", map[string]any{
		"name": "Feira da semana",
		"items": []map[string]any{
			{"product_id": "prod-arroz", "quantity": "5"},
			{"product_id": "prod-feijao", "quantity": "2"},
			{"product_id": "prod-leite", "quantity": "6"},
		},
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	var list wireList
	s.decodeResponse(resp, &list)
	s.Equal("pendente", list.Status)
	s.Len(list.Items, 3)

	// 2. Record a partial purchase.
	arroz := s.itemByProduct(list, "prod-arroz")
	resp = s.makeRequest("POST",
		fmt.Sprintf("/lists/feira-e2e/items/%s/purchase", arroz.ID),
		map[string]any{"total_purchased": "2"})
	s.Equal(http.StatusOK, resp.StatusCode)

	list = s.getList("feira-e2e")
	s.Equal("comprando", list.Status)
	arroz = s.itemByProduct(list, "prod-arroz")
	s.True(arroz.ReceivedQuantity.Equal(decimal.NewFromInt(2)))

	// 3. Edit the list: drop leite, add cafe. The purchase on arroz must
	// survive the destructive replace, on a fresh id.
	oldArrozID := arroz.ID
	resp = s.makeRequest("PUT", "/lists/feira-e2e", map[string]any{
		"name": "Feira da semana",
		"items": []map[string]any{
			{"product_id": "prod-feijao", "quantity": "2"},
			{"product_id": "prod-cafe", "quantity": "1"},
		},
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	list = s.getList("feira-e2e")
	s.Len(list.Items, 3, "feijao, cafe, and the carried-over arroz")
	arroz = s.itemByProduct(list, "prod-arroz")
	s.NotEqual(oldArrozID, arroz.ID, "the replace minted a fresh id")
	s.True(arroz.ReceivedQuantity.Equal(decimal.NewFromInt(2)), "purchase state restored")
	s.Nil(s.tryItemByProduct(list, "prod-leite"))

	// 4. Buying more than ordered raises the ordered quantity.
	resp = s.makeRequest("POST",
		fmt.Sprintf("/lists/feira-e2e/items/%s/purchase", arroz.ID),
		map[string]any{"total_purchased": "7"})
	s.Equal(http.StatusOK, resp.StatusCode)

	list = s.getList("feira-e2e")
	arroz = s.itemByProduct(list, "prod-arroz")
	s.True(arroz.OrderedQuantity.Equal(decimal.NewFromInt(7)))
	s.True(arroz.ReceivedQuantity.Equal(decimal.NewFromInt(7)))

	// 5. Transfer part of feijao into a second list.
	resp = s.makeRequest("PUT", "/lists/feira-sitio", map[string]any{
		"name":  "Feira do sitio",
		"items": []map[string]any{},
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	feijao := s.itemByProduct(list, "prod-feijao")
	resp = s.makeRequest("POST",
		fmt.Sprintf("/lists/feira-e2e/items/%s/transfer", feijao.ID),
		map[string]any{"quantity": "1", "target_list_id": "feira-sitio", "mode": "move"})
	s.Equal(http.StatusOK, resp.StatusCode)

	target := s.getList("feira-sitio")
	moved := s.itemByProduct(target, "prod-feijao")
	s.True(moved.OrderedQuantity.Equal(decimal.NewFromInt(1)))

	list = s.getList("feira-e2e")
	feijao = s.itemByProduct(list, "prod-feijao")
	s.True(feijao.OrderedQuantity.Equal(decimal.NewFromInt(1)), "2 - 1 stays at the source")

	// 6. The audit trail recorded the reconciliation passes.
	resp = s.makeRequest("GET", "/lists/feira-e2e/reconciliations", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var trail struct {
		ListID string                      `json:"list_id"`
		Events []ports.ReconciliationEvent `json:"events"`
	}
	s.decodeResponse(resp, &trail)
	s.Equal("feira-e2e", trail.ListID)
	s.NotEmpty(trail.Events)

	ops := map[ports.ReconciliationOp]bool{}
	for _, event := range trail.Events {
		s.Zero(event.Failed, "no reconciliation pass lost purchase state")
		ops[event.Operation] = true
	}
	s.True(ops[ports.OpListEdit])
	s.True(ops[ports.OpPurchase])
}

func (s *ListWorkflowE2ESuite) TestInvalidPurchaseRejectedWithoutSideEffects() {
	resp := s.makeRequest("PUT", "/lists/feira-invalid", map[string]any{
		"name": "Feira",
		"items": []map[string]any{
			{"product_id": "prod-arroz", "quantity": "5"},
		},
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	var list wireList
	s.decodeResponse(resp, &list)
	item := s.itemByProduct(list, "prod-arroz")

	resp = s.makeRequest("POST",
		fmt.Sprintf("/lists/feira-invalid/items/%s/purchase", item.ID),
		map[string]any{"total_purchased": "0.5", "reorder_policy": "raiseOrderedToPurchased"})
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)

	after := s.getList("feira-invalid")
	s.Equal(item.ID, s.itemByProduct(after, "prod-arroz").ID,
		"a rejected purchase never triggers the destructive replace")
}

// Helpers

func (s *ListWorkflowE2ESuite) makeRequest(method, path string, body any) *http.Response {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reader)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *ListWorkflowE2ESuite) decodeResponse(resp *http.Response, dest any) {
	defer resp.Body.Close()
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(dest))
}

func (s *ListWorkflowE2ESuite) getList(listID string) wireList {
	resp := s.makeRequest("GET", "/lists/"+listID, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var list wireList
	s.decodeResponse(resp, &list)
	return list
}

func (s *ListWorkflowE2ESuite) itemByProduct(list wireList, productID string) wireItem {
	item := s.tryItemByProduct(list, productID)
	s.Require().NotNil(item, "product %s not found in list %s", productID, list.ID)
	return *item
}

func (s *ListWorkflowE2ESuite) tryItemByProduct(list wireList, productID string) *wireItem {
	for i := range list.Items {
		if list.Items[i].ProductID == productID {
			return &list.Items[i]
		}
	}
	return nil
}

func TestListWorkflowE2E(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e tests in short mode")
	}
	suite.Run(t, new(ListWorkflowE2ESuite))
}
