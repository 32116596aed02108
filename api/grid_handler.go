package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/datagrid"
)

func (a *API) registerGridRoutes(router forge.Router) error {
	g := router.Group("/v1/grids", forge.WithGroupTags("grids"))

	if err := g.GET("", a.listEntities,
		forge.WithSummary("List registered entities"),
		forge.WithDescription("Returns the names of all registered grid entities."),
		forge.WithOperationID("listGridEntities"),
		forge.WithResponseSchema(http.StatusOK, "Entity names", EntitiesResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/:entity/list", a.list,
		forge.WithSummary("List grid rows"),
		forge.WithDescription("Executes a paged, searched, permission-scoped listing for the entity."),
		forge.WithOperationID("listGridRows"),
		forge.WithRequestSchema(ListGridRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Listing envelope", datagrid.Envelope{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/:entity/:recordId", a.get,
		forge.WithSummary("Get grid row"),
		forge.WithDescription("Fetches a single row, subject to the caller's relation scope."),
		forge.WithOperationID("getGridRow"),
		forge.WithRequestSchema(GetRecordRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Formatted row", datagrid.Row{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listEntities(ctx forge.Context, _ *struct{}) (*EntitiesResponse, error) {
	resp := &EntitiesResponse{Entities: a.eng.Entities()}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) list(ctx forge.Context, req *ListGridRequest) (*datagrid.Envelope, error) {
	if req.Entity == "" {
		return nil, forge.BadRequest("entity is required")
	}

	ident, err := a.identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	env, err := a.eng.List(ctx.Context(), &datagrid.ListRequest{
		Entity:     req.Entity,
		Identity:   ident,
		InstanceID: req.InstanceID,
		Token:      req.Token,
		Params:     toParams(req),
	})
	if err != nil {
		return nil, mapError(err)
	}

	return env, ctx.JSON(http.StatusOK, env)
}

func (a *API) get(ctx forge.Context, req *GetRecordRequest) (datagrid.Row, error) {
	if req.Entity == "" {
		return nil, forge.BadRequest("entity is required")
	}

	ident, err := a.identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	row, err := a.eng.Get(ctx.Context(), &datagrid.GetRequest{
		Entity:   req.Entity,
		Identity: ident,
		RecordID: req.RecordID,
		Token:    req.Token,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return row, ctx.JSON(http.StatusOK, row)
}

// toParams flattens the wire shape into engine parameters. Only the first
// order clause is honored.
func toParams(req *ListGridRequest) datagrid.RequestParams {
	p := datagrid.RequestParams{
		Draw:   req.Draw,
		Start:  req.Start,
		Length: req.Length,
		Search: req.Search.Value,
		Extra:  req.Extra,
	}
	if len(req.Order) > 0 {
		p.OrderColumn = req.Order[0].Column
		p.OrderDir = datagrid.ParseSortDir(req.Order[0].Dir)
	}
	return p
}
