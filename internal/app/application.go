// Package app wires the storefront client's components together: config,
// logging, local state, session, API client, and the domain services.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Mohamedmnem11/ivita/internal/api"
	"github.com/Mohamedmnem11/ivita/internal/auth"
	"github.com/Mohamedmnem11/ivita/internal/cart"
	"github.com/Mohamedmnem11/ivita/internal/catalog"
	"github.com/Mohamedmnem11/ivita/internal/config"
	"github.com/Mohamedmnem11/ivita/internal/storage"
	"github.com/Mohamedmnem11/ivita/pkg/logger"
)

// Application ties the storefront services together for one client session.
type Application struct {
	Config  *config.Config
	Session *auth.Session
	Client  *api.Client
	Auth    *auth.Service
	Cart    *cart.Service
	Catalog *catalog.Service

	log *logger.Logger
}

// New builds an application persisting state under cfg.StateDir.
func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		cfg = config.LoadOrDefault()
	}

	store, err := storage.NewFileStore(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("app: open state directory: %w", err)
	}
	return NewWithStore(cfg, store)
}

// NewWithStore builds an application over an explicit blob store. Tests
// pass storage.NewMemory().
func NewWithStore(cfg *config.Config, store storage.Store) (*Application, error) {
	if cfg == nil {
		cfg = config.LoadOrDefault()
	}

	log := logger.New("ivita", cfg.LogLevel)
	session := auth.NewSession(store, log.WithField("scope", "session"))

	client, err := api.New(api.Config{
		BaseURL:     cfg.BaseURL,
		HTTPClient:  &http.Client{Timeout: cfg.Timeout},
		Credentials: session,
		Logger:      log.WithField("scope", "api"),
	})
	if err != nil {
		return nil, err
	}

	cartStore := cart.NewBlobStore(store, log.WithField("scope", "cart"))

	return &Application{
		Config:  cfg,
		Session: session,
		Client:  client,
		Auth:    auth.NewService(client, session, log.WithField("scope", "auth")),
		Cart:    cart.NewService(cartStore, client, log.WithField("scope", "cart")),
		Catalog: catalog.NewService(client, cfg.Locale, log.WithField("scope", "catalog")),
		log:     log,
	}, nil
}

// Logout tears the session down: credentials are cleared first so the cart
// reset that follows stays local, then the cart blob is reset to empty.
func (a *Application) Logout() {
	a.Auth.Logout()
	a.Cart.Clear(context.Background())
}

// Close drains in-flight best-effort work. Call before process exit.
func (a *Application) Close() {
	a.Cart.Flush()
}
