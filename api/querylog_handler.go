package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/datagrid/querylog"
)

func (a *API) registerQueryLogRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("query-logs"))

	return g.GET("/query-logs", a.listQueryLogs,
		forge.WithSummary("List query logs"),
		forge.WithDescription("Returns recent listing queries with durations, newest first."),
		forge.WithOperationID("listQueryLogs"),
		forge.WithRequestSchema(ListQueryLogsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Query log list", []*querylog.Entry{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listQueryLogs(ctx forge.Context, req *ListQueryLogsRequest) ([]*querylog.Entry, error) {
	logs := a.eng.QueryLog(ctx.Context(), defaultLimit(req.Limit))
	if logs == nil {
		logs = []*querylog.Entry{}
	}
	return logs, ctx.JSON(http.StatusOK, logs)
}
