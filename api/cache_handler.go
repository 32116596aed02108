package api

import (
	"net/http"

	"github.com/xraph/forge"
)

func (a *API) registerCacheRoutes(router forge.Router) error {
	g := router.Group("/v1/cache", forge.WithGroupTags("cache"))

	if err := g.POST("/invalidate", a.invalidateCache,
		forge.WithSummary("Invalidate cache entries"),
		forge.WithDescription("Drops cached relations and counts for an entity instance."),
		forge.WithOperationID("invalidateCache"),
		forge.WithRequestSchema(InvalidateCacheRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Invalidated", StatusResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/reset", a.resetCache,
		forge.WithSummary("Reset cache"),
		forge.WithDescription("Drops the entire cache. Administrative use only."),
		forge.WithOperationID("resetCache"),
		forge.WithResponseSchema(http.StatusOK, "Reset", StatusResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) invalidateCache(ctx forge.Context, req *InvalidateCacheRequest) (*StatusResponse, error) {
	if req.Entity == "" {
		return nil, forge.BadRequest("entity is required")
	}
	a.eng.Invalidate(ctx.Context(), req.Entity, req.InstanceID)
	return okResponse, ctx.JSON(http.StatusOK, okResponse)
}

func (a *API) resetCache(ctx forge.Context, _ *struct{}) (*StatusResponse, error) {
	a.eng.ResetCache(ctx.Context())
	return okResponse, ctx.JSON(http.StatusOK, okResponse)
}
