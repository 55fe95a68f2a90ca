package resolver

import (
	"context"
	"log"

	"github.com/segmentio/ksuid"

	"github.com/librediet/librediet-api/db"
	"github.com/librediet/librediet-api/nutrition"
	"github.com/librediet/librediet-api/types"
)

// DefaultSearchLimit caps a combined search when the caller
// does not supply a limit
const DefaultSearchLimit = 50

// Cap on the number of results taken from the local store
// before remote results are appended
const localSearchLimit = 20

// Resolver resolves food identity from a barcode or a free-text query,
// consulting the local store before the remote nutrition database and
// keeping the store warm with remote barcode hits.
//
// Remote failures never escape a resolution: they degrade to a miss
// (barcode) or an empty remote contribution (search). Store write
// failures do propagate, since silently losing a cached resolution
// would turn every future lookup into a network call.
type Resolver struct {
	store  db.FoodItemProvider
	remote nutrition.Provider
}

// NewResolver creates a new resolver around the given collaborators
func NewResolver(store db.FoodItemProvider, remote nutrition.Provider) *Resolver {
	return &Resolver{
		store:  store,
		remote: remote,
	}
}

// ResolveByBarcode resolves a food item by its barcode,
// returning the locally cached item when one exists and otherwise
// falling back to the remote database, persisting the mapped record
// before returning it so the next lookup is a cache hit.
//
// A nil item with a nil error means the barcode could not be resolved
// anywhere; that is a normal outcome (the caller should offer manual
// entry), not an error.
func (r *Resolver) ResolveByBarcode(ctx context.Context, barcode string) (*types.FoodItem, error) {
	item, err := r.store.GetFoodItemByBarcode(ctx, barcode)
	if err == nil {
		return item, nil
	}
	if !db.IsNotFound(err) {
		return nil, err
	}

	product, err := r.remote.LookupByBarcode(ctx, barcode)
	if err != nil {
		// Degrade transient remote failures to a miss
		log.Printf("remote barcode lookup for '%s' failed, treating as not found: %v\n", barcode, err)
		return nil, nil
	}

	mapped := product.FoodItem()
	if mapped == nil {
		return nil, nil
	}

	id, err := ksuid.NewRandom()
	if err != nil {
		return nil, err
	}
	mapped.ID = id.String()

	err = r.store.UpsertFoodItem(ctx, *mapped)
	if err != nil {
		return nil, err
	}

	return mapped, nil
}

// Search resolves a free-text query into a deduplicated candidate list:
// local matches first (capped at an internal limit), then remote
// matches, deduplicated by identity key preserving first-seen order and
// truncated to the given limit (DefaultSearchLimit when non-positive).
//
// Remote hits are ephemeral; they are not persisted until the caller
// explicitly saves a selection through the food item create path.
func (r *Resolver) Search(ctx context.Context, query string, limit int) ([]types.FoodItem, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	local, err := r.store.SearchFoodItems(ctx, query, localSearchLimit)
	if err != nil {
		return nil, err
	}

	products, err := r.remote.SearchByText(ctx, query)
	if err != nil {
		// Degrade transient remote failures to an empty contribution;
		// the local results still stand
		log.Printf("remote text search for '%s' failed, continuing with local results: %v\n", query, err)
		products = nil
	}

	results := make([]types.FoodItem, 0, len(local)+len(products))
	seen := make(map[string]struct{})
	for _, item := range local {
		key := item.IdentityKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		results = append(results, item)
	}
	for _, product := range products {
		mapped := product.FoodItem()
		if mapped == nil {
			continue
		}

		key := mapped.IdentityKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		results = append(results, *mapped)
	}

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}
