// internal/handlers/lists.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/pduarte/feira-be/internal/core/domain"
	"github.com/pduarte/feira-be/internal/core/ports"
)

// ListHandler handles shopping list HTTP requests
type ListHandler struct {
	service ports.ListService
	audit   ports.AuditRepository
	logger  *slog.Logger
}

// NewListHandler creates a new list handler
func NewListHandler(service ports.ListService, audit ports.AuditRepository, logger *slog.Logger) *ListHandler {
	return &ListHandler{
		service: service,
		audit:   audit,
		logger:  logger.With(slog.String("handler", "lists")),
	}
}

// listResponse wraps a list with its derived status for the wire.
type listResponse struct {
	*domain.ShoppingList
	Status domain.ListStatus `json:"status"`
}

func newListResponse(list *domain.ShoppingList) listResponse {
	return listResponse{ShoppingList: list, Status: list.Status()}
}

// GetList handles GET /api/v1/lists/{id}
func (h *ListHandler) GetList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listID := r.PathValue("id")
	if listID == "" {
		h.respondError(w, http.StatusBadRequest, "list id is required")
		return
	}

	list, err := h.service.GetList(ctx, listID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get list",
			slog.String("list_id", listID),
			slog.String("error", err.Error()))
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, newListResponse(list))
}

// SaveList handles PUT /api/v1/lists/{id}
func (h *ListHandler) SaveList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listID := r.PathValue("id")
	if listID == "" {
		h.respondError(w, http.StatusBadRequest, "list id is required")
		return
	}

	var req SaveListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	list, err := h.service.Save(ctx, listID, req.ToPort())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to save list",
			slog.String("list_id", listID),
			slog.String("error", err.Error()))
		h.respondServiceError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "list saved",
		slog.String("list_id", listID),
		slog.Int("items", len(list.Items)))

	h.respondJSON(w, http.StatusOK, newListResponse(list))
}

// RecordPurchase handles POST /api/v1/lists/{id}/items/{itemId}/purchase
func (h *ListHandler) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listID := r.PathValue("id")
	itemID := r.PathValue("itemId")
	if listID == "" || itemID == "" {
		h.respondError(w, http.StatusBadRequest, "list id and item id are required")
		return
	}

	var req RecordPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.respondServiceError(w, err)
		return
	}

	item, err := h.service.RecordPurchase(ctx, listID, itemID, req.TotalPurchased, req.Policy())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to record purchase",
			slog.String("list_id", listID),
			slog.String("item_id", itemID),
			slog.String("error", err.Error()))
		h.respondServiceError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "purchase recorded",
		slog.String("list_id", listID),
		slog.String("item_id", item.ID),
		slog.String("total_purchased", req.TotalPurchased.String()))

	h.respondJSON(w, http.StatusOK, item)
}

// Transfer handles POST /api/v1/lists/{id}/items/{itemId}/transfer
func (h *ListHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listID := r.PathValue("id")
	itemID := r.PathValue("itemId")
	if listID == "" || itemID == "" {
		h.respondError(w, http.StatusBadRequest, "list id and item id are required")
		return
	}

	var req TransferItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Transfer(ctx, req.ToPort(listID, itemID))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to transfer item",
			slog.String("source_list_id", listID),
			slog.String("item_id", itemID),
			slog.String("target_list_id", req.TargetListID),
			slog.String("error", err.Error()))
		h.respondServiceError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "item transferred",
		slog.String("source_list_id", listID),
		slog.String("target_list_id", req.TargetListID),
		slog.String("mode", req.Mode))

	h.respondJSON(w, http.StatusOK, result)
}

// Reconciliations handles GET /api/v1/lists/{id}/reconciliations
func (h *ListHandler) Reconciliations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listID := r.PathValue("id")
	if listID == "" {
		h.respondError(w, http.StatusBadRequest, "list id is required")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	events, err := h.audit.FindByListID(ctx, listID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list reconciliation events",
			slog.String("list_id", listID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "failed to list reconciliation events")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"list_id": listID,
		"events":  events,
	})
}

// respondServiceError maps engine errors onto HTTP statuses. Validation
// problems are 422, state conflicts and lost purchase history are 409,
// invalidated ids are 404.
func (h *ListHandler) respondServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr *domain.ValidationError
		conflictErr   *domain.ConflictError
		matchingErr   *domain.MatchingError
		staleErr      *domain.StaleReferenceError
	)

	switch {
	case errors.As(err, &validationErr):
		h.respondJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
	case errors.As(err, &matchingErr):
		h.respondJSON(w, http.StatusConflict, map[string]interface{}{
			"error":    "purchased items could not be re-identified after the list was replaced",
			"list_id":  matchingErr.ListID,
			"failures": matchingErr.Failures,
		})
	case errors.As(err, &conflictErr):
		h.respondJSON(w, http.StatusConflict, map[string]string{
			"error": conflictErr.Message,
		})
	case errors.As(err, &staleErr):
		h.respondJSON(w, http.StatusNotFound, map[string]string{
			"error": staleErr.Error(),
		})
	default:
		h.respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// Helper methods

func (h *ListHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *ListHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// Request DTOs

// SaveListRequest represents the request body for a full list edit
type SaveListRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Items       []SaveItemBody `json:"items"`
}

// SaveItemBody is one submitted item of a list edit
type SaveItemBody struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Notes     string          `json:"notes,omitempty"`
}

// ToPort converts the request to the service port type
func (r *SaveListRequest) ToPort() ports.SaveListRequest {
	drafts := make([]ports.ItemDraft, len(r.Items))
	for i, item := range r.Items {
		drafts[i] = ports.ItemDraft{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Notes:     item.Notes,
		}
	}
	return ports.SaveListRequest{
		Name:        r.Name,
		Description: r.Description,
		Items:       drafts,
	}
}

// RecordPurchaseRequest represents the request body for recording a purchase
type RecordPurchaseRequest struct {
	TotalPurchased decimal.Decimal `json:"total_purchased"`
	ReorderPolicy  string          `json:"reorder_policy,omitempty"`
}

// Validate validates the purchase request
func (r *RecordPurchaseRequest) Validate() error {
	if !r.TotalPurchased.IsPositive() {
		return &domain.ValidationError{Field: "total_purchased", Message: "total_purchased must be positive"}
	}
	if r.ReorderPolicy != "" && !domain.ValidReorderPolicy(domain.ReorderPolicy(r.ReorderPolicy)) {
		return &domain.ValidationError{Field: "reorder_policy", Message: "unknown reorder policy"}
	}
	return nil
}

// Policy returns the requested reorder policy, defaulting to keepOriginal.
func (r *RecordPurchaseRequest) Policy() domain.ReorderPolicy {
	if r.ReorderPolicy == "" {
		return domain.ReorderKeepOriginal
	}
	return domain.ReorderPolicy(r.ReorderPolicy)
}

// TransferItemRequest represents the request body for transferring an item
type TransferItemRequest struct {
	Quantity          decimal.Decimal `json:"quantity"`
	TargetListID      string          `json:"target_list_id"`
	Mode              string          `json:"mode"`
	MergeTargetItemID string          `json:"merge_target_item_id,omitempty"`
}

// ToPort converts the request to the service port type
func (r *TransferItemRequest) ToPort(sourceListID, itemID string) ports.TransferRequest {
	return ports.TransferRequest{
		SourceListID:      sourceListID,
		ItemID:            itemID,
		Quantity:          r.Quantity,
		TargetListID:      r.TargetListID,
		Mode:              domain.TransferMode(r.Mode),
		MergeTargetItemID: r.MergeTargetItemID,
	}
}
