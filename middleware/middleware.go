// Package middleware provides HTTP access middleware for datagrid routes.
package middleware

import (
	"encoding/json"

	"github.com/xraph/forge"

	"github.com/xraph/datagrid"
)

// RequireCapability gates a route on a capability pattern. The identity is
// resolved from the request context (datagrid identity > Forge user >
// anonymous); anonymous callers are denied.
func RequireCapability(capability string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			ident, ok := resolveIdentity(ctx)
			if !ok || !datagrid.HasCapability(ident.Capabilities, capability) {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireRelation gates a route on the caller having any access relation to
// the entity. AccessNone denies; everything else passes.
func RequireRelation(eng *datagrid.Engine, entityName string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			ident, ok := resolveIdentity(ctx)
			if !ok {
				return denyResponse(ctx)
			}
			rel, err := eng.Resolve(ctx.Context(), ident, entityName, 0)
			if err != nil || !rel.HasAccess {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// resolveIdentity extracts the identity from context.
// Priority: datagrid context identity (set upstream) → Forge user ID.
func resolveIdentity(ctx forge.Context) (datagrid.Identity, bool) {
	if ident, ok := datagrid.IdentityFromContext(ctx.Context()); ok {
		return ident, true
	}
	if userID := forge.UserIDFromContext(ctx.Context()); userID != "" {
		return datagrid.Identity{ID: userID}, true
	}
	return datagrid.Identity{}, false
}

func denyResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(403)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "access denied"})
}
