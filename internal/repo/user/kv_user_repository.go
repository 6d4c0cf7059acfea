package user

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/kv"
)

// KVUserRepository keeps all user records as one JSON array under kv.KeyUsers.
type KVUserRepository struct {
	store kv.Store
	log   logging.Logger
	mu    sync.Mutex // serializes read-modify-write of the array
}

var _ Repository = (*KVUserRepository)(nil)

// KVUserRepositoryFactory creates a factory function that returns a new KVUserRepository on store.
func KVUserRepositoryFactory(store kv.Store) RepositoryFactory {
	return func(context.Context) (Repository, error) {
		return NewKVUserRepository(store), nil
	}
}

// NewKVUserRepository creates a repository on store. It does not own the store.
func NewKVUserRepository(store kv.Store) *KVUserRepository {
	return &KVUserRepository{
		store: store,
		log:   logging.GetLogger("repo.user.kv_user_repository"),
	}
}

func (r *KVUserRepository) load(ctx context.Context) ([]domain.UserRecord, error) {
	var users []domain.UserRecord

	if _, err := kv.GetJSON(ctx, r.store, kv.KeyUsers, &users); err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	return users, nil
}

func (r *KVUserRepository) save(ctx context.Context, users []domain.UserRecord) error {
	if err := kv.SetJSON(ctx, r.store, kv.KeyUsers, users); err != nil {
		return fmt.Errorf("set users: %w", err)
	}

	return nil
}

// checkUnique reports whether candidate collides with any record other than itself.
func checkUnique(users []domain.UserRecord, candidate domain.UserRecord) error {
	for _, other := range users {
		if other.ID == candidate.ID {
			continue
		}

		if other.Email == candidate.Email {
			return domain.ErrDuplicateEmail
		}

		if other.PhoneNumber == candidate.PhoneNumber {
			return domain.ErrDuplicatePhone
		}
	}

	return nil
}

// CreateUser implements Repository.CreateUser.
func (r *KVUserRepository) CreateUser(ctx context.Context, user domain.UserRecord) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return err
	}

	// Email conflicts are reported before phone conflicts across all records.
	if slices.ContainsFunc(users, func(u domain.UserRecord) bool { return u.Email == user.Email }) {
		return domain.ErrDuplicateEmail
	}

	if slices.ContainsFunc(users, func(u domain.UserRecord) bool { return u.PhoneNumber == user.PhoneNumber }) {
		return domain.ErrDuplicatePhone
	}

	return r.save(ctx, append(users, user))
}

func (r *KVUserRepository) find(ctx context.Context, match func(domain.UserRecord) bool) (*domain.UserRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return nil, false, err
	}

	idx := slices.IndexFunc(users, match)
	if idx < 0 {
		return nil, false, nil
	}

	return &users[idx], true, nil
}

// GetUserByID implements Repository.GetUserByID.
func (r *KVUserRepository) GetUserByID(ctx context.Context, id string) (*domain.UserRecord, bool, error) {
	return r.find(ctx, func(u domain.UserRecord) bool { return u.ID == id })
}

// GetUserByEmail implements Repository.GetUserByEmail.
func (r *KVUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.UserRecord, bool, error) {
	return r.find(ctx, func(u domain.UserRecord) bool { return u.Email == email })
}

// GetUserByPhoneNumber implements Repository.GetUserByPhoneNumber.
func (r *KVUserRepository) GetUserByPhoneNumber(
	ctx context.Context,
	phoneNumber string,
) (*domain.UserRecord, bool, error) {
	return r.find(ctx, func(u domain.UserRecord) bool { return u.PhoneNumber == phoneNumber })
}

// ListUsers implements Repository.ListUsers.
func (r *KVUserRepository) ListUsers(ctx context.Context) ([]domain.UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load(ctx)
}

// UpdateUser implements Repository.UpdateUser.
func (r *KVUserRepository) UpdateUser(
	ctx context.Context,
	id string,
	fn func(*domain.UserRecord) error,
) (_ *domain.UserRecord, err error) {
	defer func() {
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			r.log.DebugContext(ctx, "update user failed", "error", err)
		}
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(users, func(u domain.UserRecord) bool { return u.ID == id })
	if idx < 0 {
		return nil, domain.ErrUserNotFound
	}

	updated := users[idx]
	if err := fn(&updated); err != nil {
		return nil, err
	}

	updated.ID = id

	if err := checkUnique(users, updated); err != nil {
		return nil, err
	}

	users[idx] = updated

	if err := r.save(ctx, users); err != nil {
		return nil, err
	}

	return &updated, nil
}

// Close implements Repository.Close. The store stays open for its other users.
func (r *KVUserRepository) Close() error {
	return nil
}
