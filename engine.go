package datagrid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/xraph/datagrid/entity"
	"github.com/xraph/datagrid/extension"
	"github.com/xraph/datagrid/id"
	"github.com/xraph/datagrid/querylog"
	"github.com/xraph/datagrid/store"
)

// TokenValidator checks the anti-forgery token attached to listing
// requests. A nil validator disables the check (standalone mode).
type TokenValidator interface {
	// Validate reports whether the token is acceptable for this request.
	Validate(ctx context.Context, token string) bool
}

// Engine is the central listing engine. It owns the entity registry and the
// extension registry, resolves access relations, builds and executes
// queries, and formats response rows.
type Engine struct {
	store    store.Store
	cache    Cache
	logger   *slog.Logger
	config   Config
	policy   Policy
	tokens   TokenValidator
	recorder querylog.Recorder

	entities *entity.Registry
	hooks    *extension.Registry
}

// NewEngine creates a new datagrid engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger:   slog.Default(),
		config:   DefaultConfig(),
		policy:   DefaultPolicy(),
		entities: entity.NewRegistry(),
		hooks:    extension.NewRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, errors.New("datagrid: store is required")
	}
	return e, nil
}

// Store returns the underlying composite store.
func (e *Engine) Store() store.Store { return e.store }

// Extensions returns the extension registry other modules register
// mutators against.
func (e *Engine) Extensions() *extension.Registry { return e.hooks }

// Entities returns the names of all registered entities, sorted.
func (e *Engine) Entities() []string { return e.entities.Names() }

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop performs graceful shutdown.
func (e *Engine) Stop(_ context.Context) error { return nil }

// RegisterEntity validates and registers an entity descriptor. Identical
// re-registration is a no-op; a conflicting one fails.
func (e *Engine) RegisterEntity(d *entity.Descriptor) error {
	if err := e.entities.Register(d); err != nil {
		return err
	}
	e.logger.Debug("entity registered", "entity", d.Name, "table", d.Table)
	return nil
}

// Resolve computes the access relation between an identity and an entity,
// optionally pinned to one instance (0 resolves against any instance the
// identity is linked to). Checks run most-common-relation first and stop at
// the first match; no relation at all is a valid fail-closed result, not an
// error.
func (e *Engine) Resolve(ctx context.Context, ident Identity, entityName string, instanceID int64) (Relation, error) {
	d, ok := e.entities.Get(entityName)
	if !ok {
		return noRelation, fmt.Errorf("%w: %s", ErrUnknownEntity, entityName)
	}

	key := RelationKey(entityName, ident.ID, instanceID)
	if e.cache != nil {
		if cached, hit := e.cache.GetRelation(ctx, key); hit {
			return cached, nil
		}
	}

	rel, err := e.resolve(ctx, ident, d, instanceID)
	if err != nil {
		e.logger.Error("relation resolution failed",
			"entity", entityName, "identity", ident.ID, "error", err)
		return noRelation, fmt.Errorf("%w: relation lookup", ErrDataAccess)
	}

	if e.cache != nil {
		e.cache.SetRelation(ctx, key, rel)
	}
	return rel, nil
}

func (e *Engine) resolve(ctx context.Context, ident Identity, d *entity.Descriptor, instanceID int64) (Relation, error) {
	admin, err := e.store.IsAdministrator(ctx, ident.ID)
	if err != nil {
		return noRelation, fmt.Errorf("administrator check: %w", err)
	}
	if admin {
		return Relation{IsAdministrator: true, HasAccess: true, AccessType: AccessAdmin, InstanceID: instanceID}, nil
	}

	matched, found, err := e.store.IsMember(ctx, ident.ID, d.Name, instanceID)
	if err != nil {
		return noRelation, fmt.Errorf("member check: %w", err)
	}
	if found {
		return Relation{IsMember: true, HasAccess: true, AccessType: AccessMember, InstanceID: matched}, nil
	}

	matched, found, err = e.store.IsDelegate(ctx, ident.ID, d.Name, instanceID)
	if err != nil {
		return noRelation, fmt.Errorf("delegate check: %w", err)
	}
	if found {
		return Relation{IsDelegate: true, HasAccess: true, AccessType: AccessDelegate, InstanceID: matched}, nil
	}

	matched, found, err = e.store.IsOwner(ctx, ident.ID, d.Name, instanceID)
	if err != nil {
		return noRelation, fmt.Errorf("owner check: %w", err)
	}
	if found {
		return Relation{IsOwner: true, HasAccess: true, AccessType: AccessOwner, InstanceID: matched}, nil
	}

	if len(d.PlatformRoles) > 0 {
		roles, err := e.store.PlatformRoles(ctx, ident.ID)
		if err != nil {
			return noRelation, fmt.Errorf("platform role check: %w", err)
		}
		for _, held := range roles {
			for _, allowed := range d.PlatformRoles {
				if held == allowed {
					return Relation{PlatformRole: held, HasAccess: true, AccessType: AccessPlatform, InstanceID: instanceID}, nil
				}
			}
		}
	}

	return noRelation, nil
}

// scopeWhere translates a resolved relation into row-scoping predicates.
// Administrators and platform roles see everything; members and delegates
// are pinned to their matched instance; owners to their own rows. No
// relation injects an unsatisfiable predicate so the query still runs and
// returns zero rows.
func scopeWhere(d *entity.Descriptor, ident Identity, rel Relation) []entity.Where {
	switch rel.AccessType {
	case AccessAdmin, AccessPlatform:
		return nil
	case AccessMember, AccessDelegate:
		if d.ScopeColumn != "" && rel.InstanceID != 0 {
			return []entity.Where{{Expr: qualify(d, d.ScopeColumn) + " = ?", Args: []any{rel.InstanceID}}}
		}
		return nil
	case AccessOwner:
		if d.OwnerColumn != "" {
			return []entity.Where{{Expr: qualify(d, d.OwnerColumn) + " = ?", Args: []any{ident.ID}}}
		}
		return nil
	default:
		return []entity.Where{failClosed}
	}
}

func qualify(d *entity.Descriptor, col string) string {
	for i := 0; i < len(col); i++ {
		if col[i] == '.' {
			return col
		}
	}
	return d.Alias + "." + col
}

// List executes a listing request end to end: token, entity, and capability
// gates, relation resolution, extension application, query construction,
// the three database reads, and row formatting.
func (e *Engine) List(ctx context.Context, req *ListRequest) (*Envelope, error) {
	reqID := id.NewRequestID()

	if e.tokens != nil && !e.tokens.Validate(ctx, req.Token) {
		e.logger.Warn("listing rejected: invalid token",
			"request_id", reqID, "entity", req.Entity, "identity", req.Identity.ID)
		return nil, ErrSecurityToken
	}

	d, ok := e.entities.Get(req.Entity)
	if !ok {
		e.logger.Error("listing rejected: unknown entity",
			"request_id", reqID, "entity", req.Entity)
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, req.Entity)
	}

	if !HasCapability(req.Identity.Capabilities, d.Capability()) {
		e.logger.Warn("listing rejected: missing capability",
			"request_id", reqID, "entity", req.Entity,
			"identity", req.Identity.ID, "capability", d.Capability())
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, d.Capability())
	}

	params := e.config.normalize(req.Params)

	rel, err := e.Resolve(ctx, req.Identity, req.Entity, req.InstanceID)
	if err != nil {
		return nil, err
	}

	hctx := extension.NewContext(req.Entity, params.Search, req.Identity.ID, req.InstanceID, params.Extra)

	// Mutators receive copies so no fold can reach the registered
	// descriptor's backing arrays.
	cols := e.hooks.ApplyColumns(hctx, slices.Clone(d.Columns))
	joins := e.hooks.ApplyJoins(hctx, slices.Clone(d.BaseJoins))
	filter := e.hooks.ApplyWhere(hctx, nil)
	groupBy := e.hooks.ApplyGroupBy(hctx, "")

	// Relation scoping is appended after extension predicates so an
	// extension can never widen the visible row set past the relation.
	filter = append(filter, scopeWhere(d, req.Identity, rel)...)

	qb := NewQueryBuilder(d).
		Columns(cols).
		Joins(joins).
		Filter(filter).
		GroupBy(groupBy).
		Ordering(params.OrderColumn, params.OrderDir).
		Pagination(params.Start, params.Length).
		Search(params.Search)

	total, err := e.countTotal(ctx, d, qb)
	if err != nil {
		e.logger.Error("total count failed", "request_id", reqID, "entity", req.Entity, "error", err)
		return nil, fmt.Errorf("%w: total count", ErrDataAccess)
	}

	filteredQuery, filteredArgs := qb.CountFilteredQuery()
	filtered, err := e.count(ctx, filteredQuery, filteredArgs)
	if err != nil {
		e.logger.Error("filtered count failed", "request_id", reqID, "entity", req.Entity, "error", err)
		return nil, fmt.Errorf("%w: filtered count", ErrDataAccess)
	}

	query, args := qb.SelectQuery()
	qctx, cancel := context.WithTimeout(ctx, e.config.QueryTimeout)
	defer cancel()

	started := time.Now()
	raw, err := e.store.Query(qctx, query, args...)
	elapsed := time.Since(started)

	e.record(ctx, reqID, req, query, elapsed)

	if err != nil {
		e.logger.Error("listing query failed",
			"request_id", reqID, "entity", req.Entity, "error", err, "query", query)
		return nil, fmt.Errorf("%w: listing query", ErrDataAccess)
	}

	rows := make([]Row, 0, len(raw))
	for _, r := range raw {
		row := e.formatRow(d, req.Identity, rel, r)
		rows = append(rows, Row(e.hooks.ApplyRowFormat(hctx, row)))
	}

	e.logger.Debug("listing served",
		"request_id", reqID, "entity", req.Entity, "identity", req.Identity.ID,
		"access", string(rel.AccessType), "total", total, "filtered", filtered,
		"rows", len(rows), "duration", elapsed)

	return &Envelope{
		Draw:            params.Draw,
		RecordsTotal:    total,
		RecordsFiltered: filtered,
		Rows:            rows,
	}, nil
}

// countTotal runs the unfiltered count, memoized per entity when count
// caching is enabled. The total ignores search, filters, and scoping, so
// one cached value serves every caller.
func (e *Engine) countTotal(ctx context.Context, d *entity.Descriptor, qb *QueryBuilder) (int64, error) {
	key := CountKey(d.Name)
	if e.cache != nil && e.config.CountCacheTTL > 0 {
		if n, hit := e.cache.GetCount(ctx, key); hit {
			return n, nil
		}
	}
	query, args := qb.CountTotalQuery()
	n, err := e.count(ctx, query, args)
	if err != nil {
		return 0, err
	}
	if e.cache != nil && e.config.CountCacheTTL > 0 {
		e.cache.SetCount(ctx, key, n, e.config.CountCacheTTL)
	}
	return n, nil
}

func (e *Engine) count(ctx context.Context, query string, args []any) (int64, error) {
	qctx, cancel := context.WithTimeout(ctx, e.config.QueryTimeout)
	defer cancel()
	return e.store.Count(qctx, query, args...)
}

// record logs slow queries and feeds the query recorder. Only the query
// shape enters the log; bound values never do.
func (e *Engine) record(ctx context.Context, reqID id.ID, req *ListRequest, query string, elapsed time.Duration) {
	slow := elapsed >= e.config.SlowQueryThreshold
	if slow {
		e.logger.Warn("slow listing query",
			"request_id", reqID, "entity", req.Entity,
			"duration", elapsed, "query", query)
	}
	if e.recorder == nil {
		return
	}
	e.recorder.Record(ctx, &querylog.Entry{
		ID:         id.NewQueryLogID(),
		RequestID:  reqID,
		Entity:     req.Entity,
		IdentityID: req.Identity.ID,
		Query:      query,
		Duration:   elapsed,
		Slow:       slow,
		CreatedAt:  time.Now(),
	})
}

// GetRequest is the input to Engine.Get.
type GetRequest struct {
	// Entity is the registered entity name.
	Entity string `json:"entity"`

	// Identity is the caller.
	Identity Identity `json:"identity"`

	// RecordID is the primary key of the requested row.
	RecordID int64 `json:"record_id"`

	// Token is the anti-forgery token.
	Token string `json:"token,omitempty"`
}

// Get fetches a single row, gated the same way a listing is: token, entity,
// capability, then the relation's view grant. The relation's scope is
// re-checked against the fetched row so a member cannot read rows outside
// their instance by guessing primary keys.
func (e *Engine) Get(ctx context.Context, req *GetRequest) (Row, error) {
	if e.tokens != nil && !e.tokens.Validate(ctx, req.Token) {
		return nil, ErrSecurityToken
	}

	d, ok := e.entities.Get(req.Entity)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, req.Entity)
	}

	if !HasCapability(req.Identity.Capabilities, d.Capability()) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, d.Capability())
	}

	rel, err := e.Resolve(ctx, req.Identity, req.Entity, 0)
	if err != nil {
		return nil, err
	}
	if !e.policy.CanView(rel, req.Identity.Capabilities) {
		return nil, fmt.Errorf("%w: view %s", ErrPermissionDenied, req.Entity)
	}

	qctx, cancel := context.WithTimeout(ctx, e.config.QueryTimeout)
	defer cancel()

	raw, err := e.store.GetRecord(qctx, d.Table, d.IndexColumn, req.RecordID)
	if err != nil {
		e.logger.Error("record fetch failed",
			"entity", req.Entity, "record", req.RecordID, "error", err)
		return nil, fmt.Errorf("%w: record fetch", ErrDataAccess)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s/%d", ErrRecordNotFound, req.Entity, req.RecordID)
	}

	if !rowInScope(d, req.Identity, rel, raw) {
		// Indistinguishable from absence on purpose.
		return nil, fmt.Errorf("%w: %s/%d", ErrRecordNotFound, req.Entity, req.RecordID)
	}

	return e.formatRow(d, req.Identity, rel, raw), nil
}

// rowInScope re-applies the relation's scoping rule to a fetched row.
func rowInScope(d *entity.Descriptor, ident Identity, rel Relation, raw map[string]any) bool {
	switch rel.AccessType {
	case AccessAdmin, AccessPlatform:
		return true
	case AccessMember, AccessDelegate:
		if d.ScopeColumn == "" || rel.InstanceID == 0 {
			return true
		}
		scope, ok := asInt64(raw[d.ScopeColumn])
		return ok && scope == rel.InstanceID
	case AccessOwner:
		if d.OwnerColumn == "" {
			return true
		}
		return asString(raw[d.OwnerColumn]) == ident.ID
	default:
		return false
	}
}

// Invalidate drops cached relations and counts touching an entity
// instance. Write paths call this whenever instance data or memberships
// change.
func (e *Engine) Invalidate(ctx context.Context, entityName string, instanceID int64) {
	if e.cache != nil {
		e.cache.Invalidate(ctx, entityName, instanceID)
	}
}

// InvalidateIdentity drops all cached relations for an identity, e.g.
// after its memberships or roles change.
func (e *Engine) InvalidateIdentity(ctx context.Context, identityID string) {
	if e.cache != nil {
		e.cache.InvalidateIdentity(ctx, identityID)
	}
}

// ResetCache drops the whole cache. Administrative use only.
func (e *Engine) ResetCache(ctx context.Context) {
	if e.cache != nil {
		e.cache.Reset(ctx)
	}
}

// QueryLog returns the most recent recorded queries, newest first. Returns
// nil when no recorder is configured.
func (e *Engine) QueryLog(ctx context.Context, limit int) []*querylog.Entry {
	if e.recorder == nil {
		return nil
	}
	return e.recorder.List(ctx, limit)
}
