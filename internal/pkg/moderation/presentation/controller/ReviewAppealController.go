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

// ReviewAppealController handles moderator reviews of appeals (one controller per endpoint)
type ReviewAppealController struct {
	UC       *usecase.ReviewAppealUseCase
	identity idport.Resolver
}

func NewReviewAppealController(pool *pgxpool.Pool, identity idport.Resolver) *ReviewAppealController {
	repo := adapter.NewPgModerationRepository(pool)
	return &ReviewAppealController{
		UC:       usecase.NewReviewAppealUseCase(repo),
		identity: identity,
	}
}

// reviewAppealRequest is the DTO for the HTTP request body
type reviewAppealRequest struct {
	Decision string  `json:"decision" binding:"required"`
	Response *string `json:"response"`
}

func (h *ReviewAppealController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		appealID := c.Param("appealId")
		if appealID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "appealId is required"})
			return
		}

		ident, err := h.identity.Resolve(c.Request.Header)
		if err != nil || ident == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		var req reviewAppealRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		appeal, err := h.UC.Execute(ctx, usecase.ReviewAppealInput{
			AppealID:    appealID,
			ModeratorID: ident.UserID,
			Decision:    usecase.AppealDecision(req.Decision),
			Response:    req.Response,
		})
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, appealJSON(*appeal))
	}
}
