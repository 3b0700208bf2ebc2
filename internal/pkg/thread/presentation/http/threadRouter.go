package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"go-agora/internal/infrastructure/realtime"
	idport "go-agora/internal/pkg/identity/port"
	"go-agora/internal/pkg/moderation/pipeline"
	"go-agora/internal/pkg/thread/presentation/controller"
)

// RegisterRoutes registers the realtime thread endpoint on the engine root.
// The websocket path lives outside /api/v1 so clients dial /ws/thread/:threadId.
func RegisterRoutes(
	r *gin.Engine,
	pool *pgxpool.Pool,
	p *pipeline.Pipeline,
	registry *realtime.Registry,
	presence *realtime.PresenceTracker,
	identity idport.Resolver,
	log *zap.Logger,
	livenessInterval time.Duration,
) {
	socketCtl := controller.NewThreadSocketController(pool, p, registry, presence, identity, log, livenessInterval)

	// GET /ws/thread/:threadId -> websocket endpoint for realtime thread traffic
	r.GET("/ws/thread/:threadId", socketCtl.Handle())
}
