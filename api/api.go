// Package api provides HTTP handlers for the datagrid listing engine.
package api

import (
	"context"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/datagrid"
)

// CapabilityResolver supplies the capabilities held by an identity. The
// host platform owns capability storage; the API only consults it.
type CapabilityResolver interface {
	Capabilities(ctx context.Context, identityID string) ([]string, error)
}

// API wires all datagrid HTTP handlers together.
type API struct {
	eng        *datagrid.Engine
	router     forge.Router
	caps       CapabilityResolver
	registered bool
}

// APIOption configures the API.
type APIOption func(*API)

// WithCapabilityResolver sets the capability resolver consulted for
// identities that arrive without capabilities in context.
func WithCapabilityResolver(r CapabilityResolver) APIOption {
	return func(a *API) { a.caps = r }
}

// New creates an API from an Engine and a Forge router.
func New(eng *datagrid.Engine, router forge.Router, opts ...APIOption) *API {
	a := &API{eng: eng, router: router}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handler returns the fully assembled http.Handler with all routes.
func (a *API) Handler() http.Handler {
	if a.router == nil {
		a.router = forge.NewRouter()
	}
	if err := a.RegisterRoutes(a.router); err != nil {
		panic("datagrid: register routes: " + err.Error())
	}
	return a.router.Handler()
}

// RegisterRoutes registers all API routes into the given Forge router.
// Repeated calls are no-ops.
func (a *API) RegisterRoutes(router forge.Router) error {
	if a.registered {
		return nil
	}
	registerers := []func(forge.Router) error{
		a.registerGridRoutes,
		a.registerRelationRoutes,
		a.registerCacheRoutes,
		a.registerQueryLogRoutes,
	}
	for _, fn := range registerers {
		if err := fn(router); err != nil {
			return err
		}
	}
	a.registered = true
	return nil
}
