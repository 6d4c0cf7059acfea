package cart

import (
	"context"
	"fmt"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/repo/kv"
)

// KVCartRepository keeps the cart as one JSON array under kv.KeyCart.
type KVCartRepository struct {
	store kv.Store
}

var _ Repository = (*KVCartRepository)(nil)

// KVCartRepositoryFactory creates a factory function that returns a new KVCartRepository on store.
func KVCartRepositoryFactory(store kv.Store) RepositoryFactory {
	return func(context.Context) (Repository, error) {
		return NewKVCartRepository(store), nil
	}
}

// NewKVCartRepository creates a repository on store. It does not own the store.
func NewKVCartRepository(store kv.Store) *KVCartRepository {
	return &KVCartRepository{store: store}
}

// Load implements Repository.Load.
func (r *KVCartRepository) Load(ctx context.Context) ([]domain.CartLine, error) {
	var lines []domain.CartLine

	if _, err := kv.GetJSON(ctx, r.store, kv.KeyCart, &lines); err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return lines, nil
}

// Save implements Repository.Save. An empty cart removes the key.
func (r *KVCartRepository) Save(ctx context.Context, lines []domain.CartLine) error {
	if len(lines) == 0 {
		if err := r.store.Remove(ctx, kv.KeyCart); err != nil {
			return fmt.Errorf("remove cart: %w", err)
		}

		return nil
	}

	if err := kv.SetJSON(ctx, r.store, kv.KeyCart, lines); err != nil {
		return fmt.Errorf("set cart: %w", err)
	}

	return nil
}

// Close implements Repository.Close. The store is owned by the caller.
func (r *KVCartRepository) Close() error {
	return nil
}
