// Package kv is the local record store: a persistent map from string keys to JSON documents.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Well-known keys.
const (
	KeyUsers       = "users"
	KeyCurrentUser = "currentUser"
	KeyAuthToken   = "authToken"
	KeyCart        = "cart"
)

// ErrStoreClosed is returned by operations on a closed store.
var ErrStoreClosed = errors.New("store closed")

// Store defines the interface for the local record store.
type Store interface {
	// Get returns the value stored under key and true, or nil and false if the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys lists the stored keys starting with prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

// StoreFactory is a function that creates a new Store instance.
type StoreFactory func(ctx context.Context) (Store, error)

// GetJSON decodes the value under key into dst. It reports false without touching dst
// when the key is absent.
func GetJSON(ctx context.Context, store Store, key string, dst any) (bool, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}

	return true, nil
}

// SetJSON stores the JSON encoding of value under key.
func SetJSON(ctx context.Context, store Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	return store.Set(ctx, key, raw)
}
