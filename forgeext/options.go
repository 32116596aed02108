package forgeext

import (
	"log/slog"

	"github.com/xraph/datagrid"
	"github.com/xraph/datagrid/api"
	"github.com/xraph/datagrid/entity"
	"github.com/xraph/datagrid/store"
)

// ExtOption configures the datagrid Forge extension.
type ExtOption func(*Extension)

// WithStore sets the persistence backend.
func WithStore(s store.Store) ExtOption {
	return func(e *Extension) {
		e.engOpts = append(e.engOpts, datagrid.WithStore(s))
	}
}

// WithConfig sets the extension configuration.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithEngineOptions adds engine-level options.
func WithEngineOptions(opts ...datagrid.Option) ExtOption {
	return func(e *Extension) {
		e.engOpts = append(e.engOpts, opts...)
	}
}

// WithEntity registers an entity descriptor when the engine initializes.
func WithEntity(d *entity.Descriptor) ExtOption {
	return func(e *Extension) {
		e.entities = append(e.entities, d)
	}
}

// WithCapabilityResolver sets the API's capability resolver.
func WithCapabilityResolver(r api.CapabilityResolver) ExtOption {
	return func(e *Extension) {
		e.apiOpts = append(e.apiOpts, api.WithCapabilityResolver(r))
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ExtOption {
	return func(e *Extension) {
		e.logger = l
	}
}

// WithDisableRoutes disables the registration of HTTP routes.
func WithDisableRoutes() ExtOption {
	return func(e *Extension) {
		e.config.DisableRoutes = true
	}
}

// WithDisableMigrate disables auto-migration on start.
func WithDisableMigrate() ExtOption {
	return func(e *Extension) {
		e.config.DisableMigrate = true
	}
}
