package main

import (
	"context"
	"fmt"

	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/blob"
	"github.com/mkrupp/storefront/internal/repo/cart"
	"github.com/mkrupp/storefront/internal/repo/kv"
	"github.com/mkrupp/storefront/internal/repo/session"
	"github.com/mkrupp/storefront/internal/repo/user"
	"github.com/mkrupp/storefront/internal/svc/authsvc"
	"github.com/mkrupp/storefront/internal/svc/authsvc/authclient"
	"github.com/mkrupp/storefront/internal/svc/avatarsvc"
)

// services holds the record store and the services every command needs.
type services struct {
	store      kv.Store
	auth       *authsvc.AuthService
	authClient authclient.AuthClient
	carts      cart.RepositoryFactory
	log        logging.Logger
}

func newServices(ctx context.Context, cfg Config) (*services, error) {
	store, err := kv.SQLiteStoreFactory(cfg.Store)(ctx)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	avatars, err := avatarsvc.NewBlobAvatarService(ctx, blob.FileSystemBlobRepositoryFactory(cfg.Blob), cfg.Avatar)
	if err != nil {
		_ = store.Close()

		return nil, fmt.Errorf("new avatar service: %w", err)
	}

	authSvc, err := authsvc.NewAuthService(
		ctx,
		user.KVUserRepositoryFactory(store),
		session.KVSessionRepositoryFactory(store),
		avatars,
		cfg.Auth,
	)
	if err != nil {
		_ = store.Close()

		return nil, fmt.Errorf("new auth service: %w", err)
	}

	var authClient authclient.AuthClient = authclient.NewLocalClient(authSvc)
	if cfg.AuthCli.AuthURL != "" {
		authClient = authclient.NewHTTPClient(cfg.AuthCli, nil)
	}

	return &services{
		store:      store,
		auth:       authSvc,
		authClient: authClient,
		carts:      cart.KVCartRepositoryFactory(store),
		log:        logging.GetLogger("cmd.storefrontsvc.services"),
	}, nil
}

func (s *services) closer(ctx context.Context, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		s.log.WarnContext(ctx, "close failed", "component", name, "error", err)
	}
}

func (s *services) close(ctx context.Context) {
	s.closer(ctx, "auth service", s.auth.Close)
	s.closer(ctx, "store", s.store.Close)
}
