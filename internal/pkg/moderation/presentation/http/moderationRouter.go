package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	qport "go-agora/internal/infrastructure/queue/port"
	idport "go-agora/internal/pkg/identity/port"
	"go-agora/internal/pkg/moderation/presentation/controller"
)

// RegisterRoutes registers moderation HTTP endpoints under the given router group
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, tasks qport.Client, identity idport.Resolver) {
	listQueueCtl := controller.NewListQueueController(pool)
	resolveCtl := controller.NewResolveQueueController(pool, tasks, identity)
	submitAppealCtl := controller.NewSubmitAppealController(pool, identity)
	reviewAppealCtl := controller.NewReviewAppealController(pool, identity)
	listAuditCtl := controller.NewListAuditController(pool)

	// GET /api/v1/moderation/queue -> list queue items for review
	g.GET("/moderation/queue", listQueueCtl.Handle())

	// POST /api/v1/moderation/queue/:queueId/resolve -> moderator decision
	g.POST("/moderation/queue/:queueId/resolve", resolveCtl.Handle())

	// GET /api/v1/moderation/audit -> read the audit trail
	g.GET("/moderation/audit", listAuditCtl.Handle())

	// POST /api/v1/appeals -> contest a moderation decision
	g.POST("/appeals", submitAppealCtl.Handle())

	// POST /api/v1/appeals/:appealId/review -> resolve an appeal
	g.POST("/appeals/:appealId/review", reviewAppealCtl.Handle())
}
