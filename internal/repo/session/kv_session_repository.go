package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/repo/kv"
)

// KVSessionRepository keeps the session user under kv.KeyCurrentUser and the token under kv.KeyAuthToken.
type KVSessionRepository struct {
	store kv.Store
}

var _ Repository = (*KVSessionRepository)(nil)

// KVSessionRepositoryFactory creates a factory function that returns a new KVSessionRepository on store.
func KVSessionRepositoryFactory(store kv.Store) RepositoryFactory {
	return func(context.Context) (Repository, error) {
		return NewKVSessionRepository(store), nil
	}
}

// NewKVSessionRepository creates a repository on store. It does not own the store.
func NewKVSessionRepository(store kv.Store) *KVSessionRepository {
	return &KVSessionRepository{store: store}
}

// GetCurrentUser implements Repository.GetCurrentUser.
func (r *KVSessionRepository) GetCurrentUser(ctx context.Context) (*domain.User, bool, error) {
	var user domain.User

	ok, err := kv.GetJSON(ctx, r.store, kv.KeyCurrentUser, &user)
	if err != nil {
		return nil, false, fmt.Errorf("get current user: %w", err)
	}

	if !ok {
		return nil, false, nil
	}

	return &user, true, nil
}

// GetAuthToken implements Repository.GetAuthToken.
func (r *KVSessionRepository) GetAuthToken(ctx context.Context) (string, bool, error) {
	token, ok, err := r.store.Get(ctx, kv.KeyAuthToken)
	if err != nil {
		return "", false, fmt.Errorf("get auth token: %w", err)
	}

	return string(token), ok, nil
}

// Save implements Repository.Save.
func (r *KVSessionRepository) Save(ctx context.Context, user domain.User, token string) error {
	if err := r.SaveCurrentUser(ctx, user); err != nil {
		return err
	}

	if err := r.store.Set(ctx, kv.KeyAuthToken, []byte(token)); err != nil {
		return fmt.Errorf("set auth token: %w", err)
	}

	return nil
}

// SaveCurrentUser implements Repository.SaveCurrentUser.
func (r *KVSessionRepository) SaveCurrentUser(ctx context.Context, user domain.User) error {
	if err := kv.SetJSON(ctx, r.store, kv.KeyCurrentUser, user); err != nil {
		return fmt.Errorf("set current user: %w", err)
	}

	return nil
}

// Clear implements Repository.Clear. Both keys are attempted even if the first removal fails.
func (r *KVSessionRepository) Clear(ctx context.Context) error {
	var errs []error

	if err := r.store.Remove(ctx, kv.KeyCurrentUser); err != nil {
		errs = append(errs, fmt.Errorf("remove current user: %w", err))
	}

	if err := r.store.Remove(ctx, kv.KeyAuthToken); err != nil {
		errs = append(errs, fmt.Errorf("remove auth token: %w", err))
	}

	return errors.Join(errs...)
}

// Close implements Repository.Close. The store stays open for its other users.
func (r *KVSessionRepository) Close() error {
	return nil
}
