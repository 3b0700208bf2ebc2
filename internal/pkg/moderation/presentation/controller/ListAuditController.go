package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-agora/internal/pkg/moderation/application/usecase"
	"go-agora/internal/pkg/moderation/persistence/repository/adapter"
)

// ListAuditController handles reading the audit trail (one controller per endpoint)
type ListAuditController struct {
	UC *usecase.ListAuditUseCase
}

func NewListAuditController(pool *pgxpool.Pool) *ListAuditController {
	repo := adapter.NewPgModerationRepository(pool)
	return &ListAuditController{UC: usecase.NewListAuditUseCase(repo)}
}

func (h *ListAuditController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 100
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		entries, err := h.UC.Execute(ctx, usecase.ListAuditInput{
			EntityID: c.Query("entityId"),
			Limit:    limit,
		})
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(entries))
		for _, e := range entries {
			out = append(out, gin.H{
				"id":          e.ID,
				"action":      e.Action,
				"entityType":  e.EntityType,
				"entityId":    e.EntityID,
				"userId":      e.UserID,
				"performedBy": e.PerformedBy,
				"details":     e.Details,
				"createdAt":   e.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"entries": out,
			"count":   len(out),
		})
	}
}
