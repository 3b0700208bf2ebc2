package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	qport "go-agora/internal/infrastructure/queue/port"
	idport "go-agora/internal/pkg/identity/port"
	"go-agora/internal/pkg/moderation/application/usecase"
	moderation "go-agora/internal/pkg/moderation/domain"
	"go-agora/internal/pkg/moderation/persistence/repository/adapter"
)

// ResolveQueueController handles moderator resolutions of queue items (one controller per endpoint)
type ResolveQueueController struct {
	UC       *usecase.ResolveQueueItemUseCase
	identity idport.Resolver
}

func NewResolveQueueController(pool *pgxpool.Pool, tasks qport.Client, identity idport.Resolver) *ResolveQueueController {
	repo := adapter.NewPgModerationRepository(pool)
	return &ResolveQueueController{
		UC:       usecase.NewResolveQueueItemUseCase(repo, tasks),
		identity: identity,
	}
}

// resolveQueueRequest is the DTO for the HTTP request body
type resolveQueueRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

func (h *ResolveQueueController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		queueID := c.Param("queueId")
		if queueID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "queueId is required"})
			return
		}

		ident, err := h.identity.Resolve(c.Request.Header)
		if err != nil || ident == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		var req resolveQueueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		item, err := h.UC.Execute(ctx, usecase.ResolveQueueItemInput{
			QueueID:     queueID,
			ModeratorID: ident.UserID,
			Action:      moderation.ResolutionAction(req.Action),
			Reason:      req.Reason,
		})
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, queueItemJSON(item))
	}
}
