// Package forgeext provides a Forge extension entry point for datagrid.
package forgeext

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/datagrid"
	"github.com/xraph/datagrid/api"
	"github.com/xraph/datagrid/entity"
	"github.com/xraph/datagrid/store"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "datagrid"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Permission-scoped server-side tabular query engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts datagrid as a Forge extension.
type Extension struct {
	config     Config
	eng        *datagrid.Engine
	apiHandler *api.API
	logger     *slog.Logger
	engOpts    []datagrid.Option
	apiOpts    []api.APIOption
	entities   []*entity.Descriptor
}

// New creates a datagrid Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return ExtensionName }

// Description returns the extension description.
func (e *Extension) Description() string { return ExtensionDescription }

// Version returns the extension version.
func (e *Extension) Version() string { return ExtensionVersion }

// Dependencies returns the list of extension names this extension depends on.
func (e *Extension) Dependencies() []string { return []string{} }

// Engine returns the underlying datagrid engine.
func (e *Extension) Engine() *datagrid.Engine { return e.eng }

// API returns the API handler.
func (e *Extension) API() *api.API { return e.apiHandler }

// Register implements [forge.Extension]. It initializes the engine,
// registers it in the DI container, and optionally registers HTTP routes.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.init(fapp); err != nil {
		return err
	}

	// Register the engine in the DI container so other modules can declare
	// entities and extension hooks against it.
	if err := vessel.Provide(fapp.Container(), func() (*datagrid.Engine, error) {
		return e.eng, nil
	}); err != nil {
		return fmt.Errorf("datagrid: register engine in container: %w", err)
	}

	return nil
}

func (e *Extension) init(fapp forge.App) error {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := make([]datagrid.Option, 0, len(e.engOpts)+2)
	opts = append(opts, datagrid.WithLogger(logger))

	// Try to resolve store from DI container, fall back to option-provided store.
	if s, err := forge.Inject[store.Store](fapp.Container()); err == nil {
		opts = append(opts, datagrid.WithStore(s))
	}

	// Append user-provided options (may override store).
	opts = append(opts, e.engOpts...)

	eng, err := datagrid.NewEngine(opts...)
	if err != nil {
		return fmt.Errorf("datagrid: create engine: %w", err)
	}
	e.eng = eng

	for _, d := range e.entities {
		if err := eng.RegisterEntity(d); err != nil {
			return fmt.Errorf("datagrid: register entity %q: %w", d.Name, err)
		}
	}

	e.apiHandler = api.New(eng, fapp.Router(), e.apiOpts...)

	if !e.config.DisableRoutes {
		if err := e.apiHandler.RegisterRoutes(fapp.Router()); err != nil {
			return fmt.Errorf("datagrid: register routes: %w", err)
		}
	}

	return nil
}

// Start begins the datagrid engine and runs migrations if enabled.
func (e *Extension) Start(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("datagrid: extension not initialized")
	}

	if !e.config.DisableMigrate {
		s := e.eng.Store()
		if s != nil {
			if err := s.Migrate(ctx); err != nil {
				return fmt.Errorf("datagrid: migration failed: %w", err)
			}
		}
	}

	return e.eng.Start(ctx)
}

// Stop gracefully shuts down the datagrid engine.
func (e *Extension) Stop(ctx context.Context) error {
	if e.eng == nil {
		return nil
	}
	return e.eng.Stop(ctx)
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("datagrid: extension not initialized")
	}
	s := e.eng.Store()
	if s == nil {
		return errors.New("datagrid: no store configured")
	}
	return s.Ping(ctx)
}

// Handler returns the HTTP handler for all API routes.
func (e *Extension) Handler() http.Handler {
	if e.apiHandler == nil {
		return http.NotFoundHandler()
	}
	return e.apiHandler.Handler()
}

// RegisterRoutes registers all datagrid API routes into a Forge router.
func (e *Extension) RegisterRoutes(router forge.Router) error {
	if e.apiHandler != nil {
		return e.apiHandler.RegisterRoutes(router)
	}
	return nil
}
