package authclient

import (
	"context"
	"fmt"
)

// Authorizer is the part of the auth service LocalClient needs.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (string, error)
}

// LocalClient validates tokens against an in-process auth service.
type LocalClient struct {
	authorizer Authorizer
}

var _ AuthClient = (*LocalClient)(nil)

// NewLocalClient creates a LocalClient backed by authorizer.
func NewLocalClient(authorizer Authorizer) *LocalClient {
	return &LocalClient{authorizer: authorizer}
}

// Validate implements AuthClient.Validate.
func (c *LocalClient) Validate(ctx context.Context, token string) (string, error) {
	userID, err := c.authorizer.Authorize(ctx, token)
	if err != nil {
		return "", fmt.Errorf("authorize: %w", err)
	}

	return userID, nil
}
