// internal/core/services/service_test.go
package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/pduarte/feira-be/internal/core/domain"
	"github.com/pduarte/feira-be/internal/core/ports"
	"github.com/pduarte/feira-be/internal/core/services"
	"github.com/pduarte/feira-be/test/helpers"
	"github.com/pduarte/feira-be/test/mocks"
)

// newTestService wires a service over the given store with permissive
// lock, cache and audit collaborators. Tests that assert on those
// collaborators build their own strict mocks instead.
func newTestService(t *testing.T, store ports.ListStore) *services.ListService {
	t.Helper()
	ctrl := gomock.NewController(t)

	locker := mocks.NewMockListLocker(ctrl)
	locker.EXPECT().AcquireListLock(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()
	locker.EXPECT().ReleaseListLock(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cache := mocks.NewMockCacheRepository(ctrl)
	cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).AnyTimes()
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	audit := mocks.NewMockAuditRepository(ctrl)
	audit.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return services.NewListService(store, locker, audit, cache, time.Minute, helpers.TestLogger().Logger)
}

func TestGetList_CacheMissFetchesStore(t *testing.T) {
	ctx := context.Background()
	store := helpers.NewFakeListStore()
	store.Seed(t, "feira-01", "Feira da semana",
		helpers.PendingItem(t, "prod-arroz", "2"),
	)
	service := newTestService(t, store)

	list, err := service.GetList(ctx, "feira-01")

	require.NoError(t, err)
	assert.Equal(t, "feira-01", list.ID)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "prod-arroz", list.Items[0].ProductID)
}

func TestGetList_ServedFromCache(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	cached := domain.ShoppingList{ID: "feira-01", Name: "Feira da semana"}

	cache := mocks.NewMockCacheRepository(ctrl)
	cache.EXPECT().Get(gomock.Any(), "list:feira-01", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, dest any) error {
			*dest.(*domain.ShoppingList) = cached
			return nil
		})

	locker := mocks.NewMockListLocker(ctrl)
	audit := mocks.NewMockAuditRepository(ctrl)

	// An empty fake store: a cache hit must not reach it.
	service := services.NewListService(helpers.NewFakeListStore(), locker, audit, cache,
		time.Minute, helpers.TestLogger().Logger)

	list, err := service.GetList(ctx, "feira-01")

	require.NoError(t, err)
	assert.Equal(t, "Feira da semana", list.Name)
}

func TestGetList_EmptyID(t *testing.T) {
	service := newTestService(t, helpers.NewFakeListStore())

	_, err := service.GetList(context.Background(), "")

	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "list_id", validation.Field)
}

func TestSave_RejectedWhenLeaseHeldElsewhere(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	locker := mocks.NewMockListLocker(ctrl)
	locker.EXPECT().AcquireListLock(gomock.Any(), "feira-01", gomock.Any()).Return(false, nil)

	cache := mocks.NewMockCacheRepository(ctrl)
	audit := mocks.NewMockAuditRepository(ctrl)
	store := helpers.NewFakeListStore()
	store.Seed(t, "feira-01", "Feira da semana")

	service := services.NewListService(store, locker, audit, cache,
		time.Minute, helpers.TestLogger().Logger)

	_, err := service.Save(ctx, "feira-01", ports.SaveListRequest{
		Name:  "Feira da semana",
		Items: []ports.ItemDraft{{ProductID: "prod-arroz", Quantity: helpers.Dec(t, "2")}},
	})

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 0, store.ReplaceCalls, "a rejected writer must not touch the store")
}

func TestSave_MatchingFailuresCollectedBeforeAnyPatch(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	purchased := helpers.PurchasedItem(t, "prod-feijao", "3", "2")
	purchased.ID = "old-feijao"

	current := &domain.ShoppingList{
		ID:   "feira-01",
		Name: "Feira da semana",
		Items: []domain.Item{
			purchased,
			helpers.PendingItem(t, "prod-arroz", "2"),
		},
	}

	// The recreated set comes back without any entry matching the
	// purchased item's product and ordered quantity.
	recreated := &domain.ShoppingList{
		ID:   "feira-01",
		Name: "Feira da semana",
		Items: []domain.Item{
			helpers.PendingItem(t, "prod-arroz", "2"),
			helpers.PendingItem(t, "prod-feijao", "1"),
		},
	}

	store := mocks.NewMockListStore(ctrl)
	store.EXPECT().GetList(gomock.Any(), "feira-01").Return(current, nil)
	store.EXPECT().ReplaceList(gomock.Any(), "feira-01", gomock.Any()).Return(recreated, nil)
	// No PatchItemQuantities expectation: restoring any state on a
	// partial match would misattribute purchase history.

	locker := mocks.NewMockListLocker(ctrl)
	locker.EXPECT().AcquireListLock(gomock.Any(), "feira-01", gomock.Any()).Return(true, nil)
	locker.EXPECT().ReleaseListLock(gomock.Any(), "feira-01").Return(nil)

	cache := mocks.NewMockCacheRepository(ctrl)
	cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	var recorded *ports.ReconciliationEvent
	audit := mocks.NewMockAuditRepository(ctrl)
	audit.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event *ports.ReconciliationEvent) error {
			recorded = event
			return nil
		})

	service := services.NewListService(store, locker, audit, cache,
		time.Minute, helpers.TestLogger().Logger)

	_, err := service.Save(ctx, "feira-01", ports.SaveListRequest{
		Name:  "Feira da semana",
		Items: []ports.ItemDraft{{ProductID: "prod-arroz", Quantity: helpers.Dec(t, "2")}},
	})

	var matching *domain.MatchingError
	require.ErrorAs(t, err, &matching)
	require.Len(t, matching.Failures, 1)
	assert.Equal(t, "old-feijao", matching.Failures[0].ItemID)
	assert.Equal(t, "prod-feijao", matching.Failures[0].ProductID)

	require.NotNil(t, recorded, "a failed reconciliation must leave an audit event")
	assert.Equal(t, ports.OpListEdit, recorded.Operation)
	assert.Equal(t, 1, recorded.Failed)
}

func TestRecordPurchase_StaleIdRetriedAgainstRefetchedList(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	before := helpers.PendingItem(t, "prod-arroz", "5")
	before.ID = "stale-arroz"
	current := &domain.ShoppingList{ID: "feira-01", Name: "Feira da semana", Items: []domain.Item{before}}

	// A concurrent replace invalidated the id between the fetch and the
	// patch; the refreshed list holds the same item under a new one.
	refetched := helpers.PendingItem(t, "prod-arroz", "5")
	refetched.ID = "fresh-arroz"
	refreshed := &domain.ShoppingList{ID: "feira-01", Name: "Feira da semana", Items: []domain.Item{refetched}}

	restored := refetched
	restored.ReceivedQuantity = helpers.Dec(t, "2")
	restored.FinalQuantity = helpers.Dec(t, "2")
	restored.Status = domain.ItemStatusReceived

	store := mocks.NewMockListStore(ctrl)
	gomock.InOrder(
		store.EXPECT().GetList(gomock.Any(), "feira-01").Return(current, nil),
		store.EXPECT().PatchItemQuantities(gomock.Any(), "stale-arroz", gomock.Any()).
			Return(nil, &domain.StaleReferenceError{ItemID: "stale-arroz"}),
		store.EXPECT().GetList(gomock.Any(), "feira-01").Return(refreshed, nil),
		store.EXPECT().PatchItemQuantities(gomock.Any(), "fresh-arroz", gomock.Any()).
			Return(&restored, nil),
	)

	locker := mocks.NewMockListLocker(ctrl)
	locker.EXPECT().AcquireListLock(gomock.Any(), "feira-01", gomock.Any()).Return(true, nil)
	locker.EXPECT().ReleaseListLock(gomock.Any(), "feira-01").Return(nil)

	cache := mocks.NewMockCacheRepository(ctrl)
	cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	var recorded *ports.ReconciliationEvent
	audit := mocks.NewMockAuditRepository(ctrl)
	audit.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event *ports.ReconciliationEvent) error {
			recorded = event
			return nil
		})

	service := services.NewListService(store, locker, audit, cache,
		time.Minute, helpers.TestLogger().Logger)

	item, err := service.RecordPurchase(ctx, "feira-01", "stale-arroz",
		helpers.Dec(t, "2"), domain.ReorderKeepOriginal)

	require.NoError(t, err)
	assert.Equal(t, "fresh-arroz", item.ID)
	assert.Equal(t, domain.ItemStatusReceived, item.Status)
	assert.True(t, item.ReceivedQuantity.Equal(helpers.Dec(t, "2")))

	require.NotNil(t, recorded, "a survived stale id must leave an audit event")
	assert.Equal(t, ports.OpPurchase, recorded.Operation)
	assert.Equal(t, 1, recorded.StaleRetries)
	assert.Equal(t, 1, recorded.Matched)
}

func TestRecordPurchase_SecondStaleIdEscalatesToMatchingError(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	before := helpers.PendingItem(t, "prod-arroz", "5")
	before.ID = "stale-arroz"
	current := &domain.ShoppingList{ID: "feira-01", Name: "Feira da semana", Items: []domain.Item{before}}

	refetched := helpers.PendingItem(t, "prod-arroz", "5")
	refetched.ID = "fresh-arroz"
	refreshed := &domain.ShoppingList{ID: "feira-01", Name: "Feira da semana", Items: []domain.Item{refetched}}

	// Exactly one re-fetch and retry: the mock holds no third patch
	// expectation, so another attempt would fail the test.
	store := mocks.NewMockListStore(ctrl)
	gomock.InOrder(
		store.EXPECT().GetList(gomock.Any(), "feira-01").Return(current, nil),
		store.EXPECT().PatchItemQuantities(gomock.Any(), "stale-arroz", gomock.Any()).
			Return(nil, &domain.StaleReferenceError{ItemID: "stale-arroz"}),
		store.EXPECT().GetList(gomock.Any(), "feira-01").Return(refreshed, nil),
		store.EXPECT().PatchItemQuantities(gomock.Any(), "fresh-arroz", gomock.Any()).
			Return(nil, &domain.StaleReferenceError{ItemID: "fresh-arroz"}),
	)

	locker := mocks.NewMockListLocker(ctrl)
	locker.EXPECT().AcquireListLock(gomock.Any(), "feira-01", gomock.Any()).Return(true, nil)
	locker.EXPECT().ReleaseListLock(gomock.Any(), "feira-01").Return(nil)

	cache := mocks.NewMockCacheRepository(ctrl)
	cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	audit := mocks.NewMockAuditRepository(ctrl)

	service := services.NewListService(store, locker, audit, cache,
		time.Minute, helpers.TestLogger().Logger)

	_, err := service.RecordPurchase(ctx, "feira-01", "stale-arroz",
		helpers.Dec(t, "2"), domain.ReorderKeepOriginal)

	var matching *domain.MatchingError
	require.ErrorAs(t, err, &matching)
	require.Len(t, matching.Failures, 1)
	assert.Equal(t, "stale-arroz", matching.Failures[0].ItemID)
	assert.Equal(t, "prod-arroz", matching.Failures[0].ProductID)
}

func TestTransfer_StaleSourceIdRecoveredOnDelete(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	moved := helpers.PendingItem(t, "prod-arroz", "4")
	moved.ID = "stale-arroz"
	source := &domain.ShoppingList{ID: "feira-casa", Name: "Feira da casa", Items: []domain.Item{moved}}

	refetched := helpers.PendingItem(t, "prod-arroz", "4")
	refetched.ID = "fresh-arroz"
	refreshedSource := &domain.ShoppingList{ID: "feira-casa", Name: "Feira da casa", Items: []domain.Item{refetched}}

	target := &domain.ShoppingList{ID: "feira-sitio", Name: "Feira do sitio"}
	landed := helpers.PendingItem(t, "prod-arroz", "4")
	landed.ID = "sitio-arroz"
	recreatedTarget := &domain.ShoppingList{ID: "feira-sitio", Name: "Feira do sitio", Items: []domain.Item{landed}}

	store := mocks.NewMockListStore(ctrl)
	gomock.InOrder(
		store.EXPECT().GetList(gomock.Any(), "feira-casa").Return(source, nil),
		store.EXPECT().GetList(gomock.Any(), "feira-sitio").Return(target, nil),
		store.EXPECT().ReplaceList(gomock.Any(), "feira-sitio", gomock.Any()).Return(recreatedTarget, nil),
		store.EXPECT().DeleteItem(gomock.Any(), "stale-arroz").
			Return(&domain.StaleReferenceError{ItemID: "stale-arroz"}),
		store.EXPECT().GetList(gomock.Any(), "feira-casa").Return(refreshedSource, nil),
		store.EXPECT().DeleteItem(gomock.Any(), "fresh-arroz").Return(nil),
	)

	locker := mocks.NewMockListLocker(ctrl)
	locker.EXPECT().AcquireListLock(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()
	locker.EXPECT().ReleaseListLock(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cache := mocks.NewMockCacheRepository(ctrl)
	cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	var events []*ports.ReconciliationEvent
	audit := mocks.NewMockAuditRepository(ctrl)
	audit.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event *ports.ReconciliationEvent) error {
			events = append(events, event)
			return nil
		}).AnyTimes()

	service := services.NewListService(store, locker, audit, cache,
		time.Minute, helpers.TestLogger().Logger)

	result, err := service.Transfer(ctx, ports.TransferRequest{
		SourceListID: "feira-casa",
		TargetListID: "feira-sitio",
		ItemID:       "stale-arroz",
		Quantity:     helpers.Dec(t, "4"),
		Mode:         domain.TransferModeMove,
	})

	require.NoError(t, err)
	assert.Nil(t, result.SourceItem, "a whole move removes the source item")
	require.NotNil(t, result.TargetItem)
	assert.Equal(t, "sitio-arroz", result.TargetItem.ID)

	var out *ports.ReconciliationEvent
	for _, e := range events {
		if e.Operation == ports.OpTransferOut {
			out = e
		}
	}
	require.NotNil(t, out, "the survived stale delete must leave an audit event")
	assert.Equal(t, 1, out.StaleRetries)
}

func TestSave_StoreFailurePropagated(t *testing.T) {
	ctx := context.Background()
	store := helpers.NewFakeListStore()
	store.Seed(t, "feira-01", "Feira da semana")
	store.FailNextReplace = errors.New("upstream unavailable")
	service := newTestService(t, store)

	_, err := service.Save(ctx, "feira-01", ports.SaveListRequest{
		Name:  "Feira da semana",
		Items: []ports.ItemDraft{{ProductID: "prod-arroz", Quantity: helpers.Dec(t, "2")}},
	})

	require.ErrorContains(t, err, "upstream unavailable")
}
