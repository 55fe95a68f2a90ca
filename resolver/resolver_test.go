package resolver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/librediet/librediet-api/db"
	"github.com/librediet/librediet-api/nutrition"
	"github.com/librediet/librediet-api/types"
)

// memoryStore is an in-memory implementation of the db.FoodItemProvider
// interface for testing
type memoryStore struct {
	items       []types.FoodItem
	upsertCount int
	failReads   bool
}

func (s *memoryStore) GetFoodItem(ctx context.Context, id string) (*types.FoodItem, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i], nil
		}
	}
	return nil, db.NewNotFoundError(id)
}

func (s *memoryStore) GetFoodItemByBarcode(ctx context.Context, barcode string) (*types.FoodItem, error) {
	if s.failReads {
		return nil, errors.New("store read failed")
	}
	for i := range s.items {
		if s.items[i].Barcode == barcode {
			return &s.items[i], nil
		}
	}
	return nil, db.NewNotFoundError(barcode)
}

func (s *memoryStore) SearchFoodItems(ctx context.Context, query string, limit int) ([]types.FoodItem, error) {
	if s.failReads {
		return nil, errors.New("store read failed")
	}
	query = strings.ToLower(query)
	results := []types.FoodItem{}
	for _, item := range s.items {
		if strings.Contains(strings.ToLower(item.Name), query) ||
			strings.Contains(strings.ToLower(item.Brand), query) {
			results = append(results, item)
		}
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

func (s *memoryStore) GetAllFoodItems(ctx context.Context) ([]types.FoodItem, error) {
	return s.items, nil
}

func (s *memoryStore) UpsertFoodItem(ctx context.Context, item types.FoodItem) error {
	s.upsertCount++
	for i := range s.items {
		if s.items[i].IdentityKey() == item.IdentityKey() {
			s.items[i] = item
			return nil
		}
	}
	s.items = append(s.items, item)
	return nil
}

func (s *memoryStore) UpdateFoodItem(ctx context.Context, id string, update map[string]interface{}) (*types.FoodItem, error) {
	return nil, db.NewNotFoundError(id)
}

func (s *memoryStore) DeleteCustomFoodItems(ctx context.Context) (int64, error) {
	return 0, nil
}

// mockRemote is a scriptable implementation of the nutrition.Provider
// interface for testing
type mockRemote struct {
	product     *nutrition.RemoteProduct
	products    []nutrition.RemoteProduct
	err         error
	lookupCalls int
	searchCalls int
}

func (m *mockRemote) LookupByBarcode(ctx context.Context, barcode string) (*nutrition.RemoteProduct, error) {
	m.lookupCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.product, nil
}

func (m *mockRemote) SearchByText(ctx context.Context, query string) ([]nutrition.RemoteProduct, error) {
	m.searchCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func TestResolveByBarcode(t *testing.T) {
	ctx := context.Background()

	t.Run("CacheHitSkipsRemote", func(t *testing.T) {
		store := &memoryStore{items: []types.FoodItem{
			{ID: "local-1", Name: "Oat Crunch", Barcode: "123"},
		}}
		remote := &mockRemote{}
		r := NewResolver(store, remote)

		item, err := r.ResolveByBarcode(ctx, "123")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if item == nil || item.ID != "local-1" {
			t.Fatalf("expected cached item 'local-1', got %+v", item)
		}
		if remote.lookupCalls != 0 {
			t.Errorf("expected no remote call on a cache hit, got %d", remote.lookupCalls)
		}
	})

	t.Run("RemoteHitIsPersistedAndIdempotent", func(t *testing.T) {
		store := &memoryStore{}
		remote := &mockRemote{product: &nutrition.RemoteProduct{
			Code:        "456",
			ProductName: "Dark Chocolate",
			ServingSize: "25g",
			Nutriments:  nutrition.Nutriments{EnergyKcal: 530, Sodium: 0.5},
		}}
		r := NewResolver(store, remote)

		first, err := r.ResolveByBarcode(ctx, "456")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if first == nil {
			t.Fatal("expected a resolved item, got nil")
		}
		if first.Sodium != 500 {
			t.Errorf("expected sodium converted to 500 mg, got %v", first.Sodium)
		}
		if first.ServingSize != 25 || first.ServingUnit != "g" {
			t.Errorf("expected serving (25, g), got (%v, %q)", first.ServingSize, first.ServingUnit)
		}
		if first.IsCustom {
			t.Error("remote-sourced items must not be flagged as custom")
		}
		if store.upsertCount != 1 {
			t.Fatalf("expected the remote hit to be persisted once, got %d upserts", store.upsertCount)
		}

		// Second resolution must be served from the cache
		second, err := r.ResolveByBarcode(ctx, "456")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if second == nil || second.ID != first.ID {
			t.Fatalf("expected the cached item %q, got %+v", first.ID, second)
		}
		if remote.lookupCalls != 1 {
			t.Errorf("expected exactly one remote call across both resolutions, got %d", remote.lookupCalls)
		}
	})

	t.Run("RemoteMissIsNotAnError", func(t *testing.T) {
		store := &memoryStore{}
		remote := &mockRemote{product: nil}
		r := NewResolver(store, remote)

		item, err := r.ResolveByBarcode(ctx, "000")
		if err != nil {
			t.Fatalf("a miss must not be an error, got %v", err)
		}
		if item != nil {
			t.Fatalf("expected no item, got %+v", item)
		}
	})

	t.Run("RemoteFailureDegradesToMiss", func(t *testing.T) {
		store := &memoryStore{}
		remote := &mockRemote{err: errors.New("connection reset")}
		r := NewResolver(store, remote)

		item, err := r.ResolveByBarcode(ctx, "000")
		if err != nil {
			t.Fatalf("a remote failure must not surface as an error, got %v", err)
		}
		if item != nil {
			t.Fatalf("expected no item, got %+v", item)
		}
	})

	t.Run("NamelessPayloadIsNotPersisted", func(t *testing.T) {
		store := &memoryStore{}
		remote := &mockRemote{product: &nutrition.RemoteProduct{Code: "789"}}
		r := NewResolver(store, remote)

		item, err := r.ResolveByBarcode(ctx, "789")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if item != nil {
			t.Fatalf("a payload without a name cannot be mapped, got %+v", item)
		}
		if store.upsertCount != 0 {
			t.Errorf("expected no upsert for an unmappable payload, got %d", store.upsertCount)
		}
	})

	t.Run("StoreReadFailurePropagates", func(t *testing.T) {
		store := &memoryStore{failReads: true}
		remote := &mockRemote{}
		r := NewResolver(store, remote)

		_, err := r.ResolveByBarcode(ctx, "123")
		if err == nil {
			t.Fatal("expected the store failure to propagate")
		}
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("DedupPrefersLocalValue", func(t *testing.T) {
		store := &memoryStore{items: []types.FoodItem{
			{ID: "local-1", Name: "Local Oats", Barcode: "123"},
		}}
		remote := &mockRemote{products: []nutrition.RemoteProduct{
			{Code: "123", ProductName: "Remote Oats"},
		}}
		r := NewResolver(store, remote)

		results, err := r.Search(ctx, "oats", 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("expected exactly one result for barcode '123', got %d", len(results))
		}
		if results[0].Name != "Local Oats" {
			t.Errorf("expected the local item to win the dedup, got %q", results[0].Name)
		}
	})

	t.Run("DedupByNameIsCaseInsensitive", func(t *testing.T) {
		store := &memoryStore{items: []types.FoodItem{
			{ID: "local-1", Name: "Banana"},
		}}
		remote := &mockRemote{products: []nutrition.RemoteProduct{
			{ProductName: "banana"},
		}}
		r := NewResolver(store, remote)

		results, err := r.Search(ctx, "banana", 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("expected one deduplicated result, got %d", len(results))
		}
		if results[0].ID != "local-1" {
			t.Errorf("expected the local item to win, got %+v", results[0])
		}
	})

	t.Run("RemoteFailureKeepsLocalResults", func(t *testing.T) {
		store := &memoryStore{items: []types.FoodItem{
			{ID: "local-1", Name: "Egg"},
		}}
		remote := &mockRemote{err: errors.New("timeout")}
		r := NewResolver(store, remote)

		results, err := r.Search(ctx, "egg", 0)
		if err != nil {
			t.Fatalf("a remote failure must never fail the whole search, got %v", err)
		}
		if len(results) != 1 || results[0].ID != "local-1" {
			t.Fatalf("expected the local result to survive the remote failure, got %+v", results)
		}
	})

	t.Run("LocalResultsComeFirst", func(t *testing.T) {
		store := &memoryStore{items: []types.FoodItem{
			{ID: "local-1", Name: "Rye Bread"},
			{ID: "local-2", Name: "Bread Rolls"},
		}}
		remote := &mockRemote{products: []nutrition.RemoteProduct{
			{Code: "900", ProductName: "Remote Bread"},
		}}
		r := NewResolver(store, remote)

		results, err := r.Search(ctx, "bread", 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		if results[0].ID != "local-1" || results[1].ID != "local-2" {
			t.Errorf("expected local results first in store order, got %+v", results)
		}
		if results[2].Name != "Remote Bread" {
			t.Errorf("expected the remote result last, got %+v", results[2])
		}
	})

	t.Run("TruncatesToLimit", func(t *testing.T) {
		store := &memoryStore{items: []types.FoodItem{
			{ID: "local-1", Name: "Tea One"},
			{ID: "local-2", Name: "Tea Two"},
		}}
		remote := &mockRemote{products: []nutrition.RemoteProduct{
			{Code: "901", ProductName: "Tea Three"},
			{Code: "902", ProductName: "Tea Four"},
		}}
		r := NewResolver(store, remote)

		results, err := r.Search(ctx, "tea", 3)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("expected the result list truncated to 3, got %d", len(results))
		}
	})

	t.Run("DoesNotPersistRemoteHits", func(t *testing.T) {
		store := &memoryStore{}
		remote := &mockRemote{products: []nutrition.RemoteProduct{
			{Code: "903", ProductName: "Granola"},
		}}
		r := NewResolver(store, remote)

		_, err := r.Search(ctx, "granola", 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if store.upsertCount != 0 {
			t.Errorf("search results are ephemeral; expected no upserts, got %d", store.upsertCount)
		}
	})
}
