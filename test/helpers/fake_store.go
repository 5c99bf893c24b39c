// test/helpers/fake_store.go
package helpers

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pduarte/feira-be/internal/core/domain"
	"github.com/pduarte/feira-be/internal/core/ports"
)

// FakeListStore is an in-memory stand-in for the upstream list store
// that reproduces its destructive semantics: every ReplaceList discards
// the stored items and recreates the submitted set with fresh ids and
// no purchase state, preserving submission order. Quantity patches and
// deletes address items by id and fail with a StaleReferenceError once
// a replace has invalidated the id, exactly like the real store's 404.
type FakeListStore struct {
	mu    sync.Mutex
	lists map[string]*domain.ShoppingList

	// ReplaceCalls counts destructive replaces across all lists.
	ReplaceCalls int

	// FailNextReplace, when set, is returned by the next ReplaceList
	// call and then cleared.
	FailNextReplace error
}

var _ ports.ListStore = (*FakeListStore)(nil)

// NewFakeListStore creates an empty fake store.
func NewFakeListStore() *FakeListStore {
	return &FakeListStore{lists: make(map[string]*domain.ShoppingList)}
}

// Seed installs a list with the given items as the store's current
// state, bypassing the destructive replace. Item ids are kept as given.
func (f *FakeListStore) Seed(t *testing.T, listID, name string, items ...domain.Item) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range items {
		require.NotEmpty(t, items[i].ID, "seeded items need explicit ids")
	}
	f.lists[listID] = &domain.ShoppingList{
		ID:    listID,
		Name:  name,
		Items: append([]domain.Item(nil), items...),
	}
}

// Current returns a copy of the stored list for assertions.
func (f *FakeListStore) Current(t *testing.T, listID string) *domain.ShoppingList {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	list, ok := f.lists[listID]
	require.True(t, ok, "list %s not present in fake store", listID)
	return copyList(list)
}

// GetList implements ports.ListStore.
func (f *FakeListStore) GetList(_ context.Context, listID string) (*domain.ShoppingList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list, ok := f.lists[listID]
	if !ok {
		return nil, fmt.Errorf("list %s not found", listID)
	}
	return copyList(list), nil
}

// ReplaceList implements ports.ListStore with the destructive contract:
// all previous items are gone, the new set carries fresh ids and no
// purchase state.
func (f *FakeListStore) ReplaceList(_ context.Context, listID string, req ports.ReplaceListRequest) (*domain.ShoppingList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailNextReplace != nil {
		err := f.FailNextReplace
		f.FailNextReplace = nil
		return nil, err
	}
	f.ReplaceCalls++

	items := make([]domain.Item, len(req.Items))
	for i, submitted := range req.Items {
		items[i] = domain.Item{
			ID:              uuid.NewString(),
			ProductID:       submitted.ProductID,
			CorrelationID:   submitted.CorrelationID,
			OrderedQuantity: submitted.Quantity,
			Notes:           submitted.Notes,
			Status:          domain.ItemStatusPending,
		}
	}

	f.lists[listID] = &domain.ShoppingList{
		ID:          listID,
		Name:        req.Name,
		Description: req.Description,
		Items:       items,
	}
	return copyList(f.lists[listID]), nil
}

// PatchItemQuantities implements ports.ListStore.
func (f *FakeListStore) PatchItemQuantities(_ context.Context, itemID string, patch ports.ItemQuantityPatch) (*domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item := f.findItem(itemID)
	if item == nil {
		return nil, &domain.StaleReferenceError{ItemID: itemID}
	}

	breakdown := domain.QuantityBreakdown{
		Ordered:   item.OrderedQuantity,
		Received:  patch.Received,
		Defective: patch.Defective,
		Returned:  patch.Returned,
	}
	resolution, err := breakdown.Validate()
	if err != nil {
		return nil, err
	}
	item.Apply(breakdown, resolution)

	copied := *item
	return &copied, nil
}

// DeleteItem implements ports.ListStore.
func (f *FakeListStore) DeleteItem(_ context.Context, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, list := range f.lists {
		for i := range list.Items {
			if list.Items[i].ID == itemID {
				list.Items = append(list.Items[:i], list.Items[i+1:]...)
				return nil
			}
		}
	}
	return &domain.StaleReferenceError{ItemID: itemID}
}

// Ping implements ports.ListStore.
func (f *FakeListStore) Ping(context.Context) error {
	return nil
}

func (f *FakeListStore) findItem(itemID string) *domain.Item {
	for _, list := range f.lists {
		for i := range list.Items {
			if list.Items[i].ID == itemID {
				return &list.Items[i]
			}
		}
	}
	return nil
}

func copyList(list *domain.ShoppingList) *domain.ShoppingList {
	copied := *list
	copied.Items = append([]domain.Item(nil), list.Items...)
	return &copied
}
