package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	idport "go-agora/internal/pkg/identity/port"
	"go-agora/internal/pkg/moderation/application/usecase"
	"go-agora/internal/pkg/moderation/persistence/repository/adapter"
)

// SubmitAppealController handles appeal submissions (one controller per endpoint)
type SubmitAppealController struct {
	UC       *usecase.SubmitAppealUseCase
	identity idport.Resolver
}

func NewSubmitAppealController(pool *pgxpool.Pool, identity idport.Resolver) *SubmitAppealController {
	repo := adapter.NewPgModerationRepository(pool)
	return &SubmitAppealController{
		UC:       usecase.NewSubmitAppealUseCase(repo),
		identity: identity,
	}
}

// submitAppealRequest is the DTO for the HTTP request body
type submitAppealRequest struct {
	MessageID string  `json:"messageId" binding:"required"`
	QueueID   *string `json:"queueId"`
	Reason    string  `json:"reason" binding:"required"`
}

func (h *SubmitAppealController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := h.identity.Resolve(c.Request.Header)
		if err != nil || ident == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		var req submitAppealRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		appeal, err := h.UC.Execute(ctx, usecase.SubmitAppealInput{
			MessageID: req.MessageID,
			UserID:    ident.UserID,
			QueueID:   req.QueueID,
			Reason:    req.Reason,
		})
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, appealJSON(*appeal))
	}
}
