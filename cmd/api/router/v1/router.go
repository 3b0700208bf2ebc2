package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	qport "go-agora/internal/infrastructure/queue/port"
	idport "go-agora/internal/pkg/identity/port"
	moderationHTTP "go-agora/internal/pkg/moderation/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, tasks qport.Client, identity idport.Resolver) {
	v1 := r.Group("/api/v1")
	// Pass the DB connection and queue client down to the HTTP layer
	moderationHTTP.RegisterRoutes(v1, pool, tasks, identity)
}
