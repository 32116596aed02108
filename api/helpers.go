package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/xraph/datagrid"
	"github.com/xraph/datagrid/entity"
)

// mapError maps domain errors to Forge HTTP errors. Store failures pass
// through unmapped and surface as internal errors; their cause is already
// logged by the engine.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, datagrid.ErrSecurityToken) || errors.Is(err, datagrid.ErrPermissionDenied) {
		return forge.Forbidden(err.Error())
	}
	if errors.Is(err, datagrid.ErrUnknownEntity) || errors.Is(err, entity.ErrDuplicate) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, datagrid.ErrRecordNotFound) {
		return forge.NotFound(err.Error())
	}
	return err
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

// identityFrom resolves the requesting identity: the middleware-populated
// context identity wins, then the Forge user ID. Missing capabilities are
// filled from the capability resolver when one is configured.
func (a *API) identityFrom(ctx forge.Context) (datagrid.Identity, error) {
	ident, ok := datagrid.IdentityFromContext(ctx.Context())
	if !ok {
		if userID := forge.UserIDFromContext(ctx.Context()); userID != "" {
			ident = datagrid.Identity{ID: userID}
		}
	}
	if ident.ID == "" {
		return ident, forge.Forbidden("no identity")
	}
	if len(ident.Capabilities) == 0 && a.caps != nil {
		caps, err := a.caps.Capabilities(ctx.Context(), ident.ID)
		if err != nil {
			return ident, mapError(err)
		}
		ident.Capabilities = caps
	}
	return ident, nil
}
