package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/datagrid/store"
)

func (a *API) registerRelationRoutes(router forge.Router) error {
	g := router.Group("/v1/relations", forge.WithGroupTags("relations"))

	if err := g.POST("/memberships", a.addMembership,
		forge.WithSummary("Add membership"),
		forge.WithDescription("Links an identity to an entity instance as member, delegate, or owner."),
		forge.WithOperationID("addMembership"),
		forge.WithRequestSchema(AddMembershipRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Added", StatusResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/memberships/remove", a.removeMembership,
		forge.WithSummary("Remove membership"),
		forge.WithDescription("Removes all relation rows for the identity and instance."),
		forge.WithOperationID("removeMembership"),
		forge.WithRequestSchema(RemoveMembershipRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Removed", StatusResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/administrators", a.addAdministrator,
		forge.WithSummary("Grant administrator"),
		forge.WithOperationID("addAdministrator"),
		forge.WithRequestSchema(AdministratorRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Granted", StatusResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/administrators/remove", a.removeAdministrator,
		forge.WithSummary("Revoke administrator"),
		forge.WithOperationID("removeAdministrator"),
		forge.WithRequestSchema(AdministratorRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Revoked", StatusResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/platform-roles", a.addPlatformRole,
		forge.WithSummary("Grant platform role"),
		forge.WithOperationID("addPlatformRole"),
		forge.WithRequestSchema(PlatformRoleRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Granted", StatusResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) addMembership(ctx forge.Context, req *AddMembershipRequest) (*StatusResponse, error) {
	if req.IdentityID == "" || req.Entity == "" || req.InstanceID == 0 {
		return nil, forge.BadRequest("identity_id, entity, and instance_id are required")
	}
	kind := store.MembershipKind(req.Kind)
	switch kind {
	case store.KindMember, store.KindDelegate, store.KindOwner:
	default:
		return nil, forge.BadRequest("kind must be member, delegate, or owner")
	}

	err := a.eng.Store().AddMembership(ctx.Context(), &store.Membership{
		IdentityID: req.IdentityID,
		Entity:     req.Entity,
		InstanceID: req.InstanceID,
		Kind:       kind,
	})
	if err != nil {
		return nil, mapError(err)
	}

	// Stale relations for the touched instance must not outlive the write.
	a.eng.Invalidate(ctx.Context(), req.Entity, req.InstanceID)
	a.eng.InvalidateIdentity(ctx.Context(), req.IdentityID)

	return okResponse, ctx.JSON(http.StatusOK, okResponse)
}

func (a *API) removeMembership(ctx forge.Context, req *RemoveMembershipRequest) (*StatusResponse, error) {
	if req.IdentityID == "" || req.Entity == "" || req.InstanceID == 0 {
		return nil, forge.BadRequest("identity_id, entity, and instance_id are required")
	}

	err := a.eng.Store().RemoveMembership(ctx.Context(), req.IdentityID, req.Entity, req.InstanceID)
	if err != nil {
		return nil, mapError(err)
	}

	a.eng.Invalidate(ctx.Context(), req.Entity, req.InstanceID)
	a.eng.InvalidateIdentity(ctx.Context(), req.IdentityID)

	return okResponse, ctx.JSON(http.StatusOK, okResponse)
}

func (a *API) addAdministrator(ctx forge.Context, req *AdministratorRequest) (*StatusResponse, error) {
	if req.IdentityID == "" {
		return nil, forge.BadRequest("identity_id is required")
	}
	if err := a.eng.Store().AddAdministrator(ctx.Context(), req.IdentityID); err != nil {
		return nil, mapError(err)
	}
	a.eng.InvalidateIdentity(ctx.Context(), req.IdentityID)
	return okResponse, ctx.JSON(http.StatusOK, okResponse)
}

func (a *API) removeAdministrator(ctx forge.Context, req *AdministratorRequest) (*StatusResponse, error) {
	if req.IdentityID == "" {
		return nil, forge.BadRequest("identity_id is required")
	}
	if err := a.eng.Store().RemoveAdministrator(ctx.Context(), req.IdentityID); err != nil {
		return nil, mapError(err)
	}
	a.eng.InvalidateIdentity(ctx.Context(), req.IdentityID)
	return okResponse, ctx.JSON(http.StatusOK, okResponse)
}

func (a *API) addPlatformRole(ctx forge.Context, req *PlatformRoleRequest) (*StatusResponse, error) {
	if req.IdentityID == "" || req.Role == "" {
		return nil, forge.BadRequest("identity_id and role are required")
	}
	if err := a.eng.Store().AddPlatformRole(ctx.Context(), req.IdentityID, req.Role); err != nil {
		return nil, mapError(err)
	}
	a.eng.InvalidateIdentity(ctx.Context(), req.IdentityID)
	return okResponse, ctx.JSON(http.StatusOK, okResponse)
}
