package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkrupp/storefront/internal/infra/config"
	"github.com/mkrupp/storefront/internal/infra/logging"
	http_ "github.com/mkrupp/storefront/internal/infra/transport/http"
	"github.com/mkrupp/storefront/internal/repo/blob"
	"github.com/mkrupp/storefront/internal/repo/kv"
	"github.com/mkrupp/storefront/internal/svc/authsvc"
	"github.com/mkrupp/storefront/internal/svc/authsvc/authclient"
	"github.com/mkrupp/storefront/internal/svc/avatarsvc"
	"github.com/mkrupp/storefront/internal/svc/cartsvc"
	"github.com/mkrupp/storefront/internal/svc/catalogsvc"
	"github.com/mkrupp/storefront/internal/svc/checkoutsvc"
)

const (
	appName = "storefront"
	svcName = "storefrontsvc"
)

type Config struct {
	config.EnvConfig

	Log      logging.LoggerConfig                `envPrefix:"LOG_"`
	HTTP     http_.HTTPTransportConfig           `envPrefix:"HTTP_"`
	Store    kv.SQLiteStoreConfig                `envPrefix:"STORE_"`
	Blob     blob.FileSystemBlobRepositoryConfig `envPrefix:"BLOB_"`
	Auth     authsvc.AuthConfig                  `envPrefix:"AUTH_"`
	AuthHTTP authsvc.HTTPTransportConfig         `envPrefix:"AUTH_HTTP_"`
	AuthCli  authclient.HTTPClientConfig         `envPrefix:"AUTH_CLIENT_"`
	Avatar   avatarsvc.AvatarConfig              `envPrefix:"AVATAR_"`
	Cart     cartsvc.CartConfig                  `envPrefix:"CART_"`
	Checkout checkoutsvc.CheckoutConfig          `envPrefix:"CHECKOUT_"`
	Catalog  catalogsvc.CatalogConfig            `envPrefix:"CATALOG_"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1) //nolint:gocritic
	}
}

func newRootCmd() *cobra.Command {
	var cfg Config

	//nolint:exhaustruct
	root := &cobra.Command{
		Use:           svcName,
		Short:         "Storefront accounts, cart and checkout over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var (
				ctx = cmd.Context()

				configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
				loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
			)

			if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
				return fmt.Errorf("parse config: %w", err)
			}

			if err := logging.Configure(ctx, cfg.Log, loggerName); err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	root.AddCommand(newUsersCmd(&cfg), newRecordsCmd(&cfg))

	return root
}

func run(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.storefrontsvc")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)

			return
		}

		log.InfoContext(ctx, "shutdown")
	}()

	log.InfoContext(ctx, "starting", "namespace", cfg.Namespace(), "addr", cfg.HTTP.ServerAddr)

	svcs, err := newServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svcs.close(ctx)

	catalog, err := catalogsvc.NewCatalog(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("new catalog: %w", err)
	}

	cartSvc, err := cartsvc.NewCartService(ctx, svcs.carts, cfg.Cart)
	if err != nil {
		return fmt.Errorf("new cart service: %w", err)
	}
	defer svcs.closer(ctx, "cart service", cartSvc.Close)

	checkoutSvc := checkoutsvc.NewCheckoutService(cartSvc, cfg.Checkout)

	mux := http_.NewMux(
		authsvc.NewHTTPTransport(svcs.auth, svcs.authClient, cfg.AuthHTTP),
		catalogsvc.NewHTTPTransport(catalog),
		cartsvc.NewHTTPTransport(cartSvc, catalog),
		checkoutsvc.NewHTTPTransport(checkoutSvc, svcs.authClient),
	)

	if err := http_.ListenAndServe(ctx, mux, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
