package datagrid

import (
	"log/slog"

	"github.com/xraph/datagrid/querylog"
	"github.com/xraph/datagrid/store"
)

// Option is a functional option for the Engine.
type Option func(*Engine)

// WithStore sets the composite store.
func WithStore(s store.Store) Option { return func(e *Engine) { e.store = s } }

// WithCache sets the relation and count cache.
func WithCache(c Cache) Option { return func(e *Engine) { e.cache = c } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithConfig sets the engine configuration.
func WithConfig(c Config) Option { return func(e *Engine) { e.config = c } }

// WithPolicy sets the relation-to-actions grant table.
func WithPolicy(p Policy) Option { return func(e *Engine) { e.policy = p } }

// WithTokenValidator sets the anti-forgery token validator. Without one the
// engine runs standalone and skips token checks.
func WithTokenValidator(v TokenValidator) Option { return func(e *Engine) { e.tokens = v } }

// WithRecorder sets the query log recorder.
func WithRecorder(r querylog.Recorder) Option { return func(e *Engine) { e.recorder = r } }
