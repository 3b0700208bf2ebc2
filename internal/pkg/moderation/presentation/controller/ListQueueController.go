package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-agora/internal/pkg/moderation/application/usecase"
	moderation "go-agora/internal/pkg/moderation/domain"
	"go-agora/internal/pkg/moderation/persistence/repository/adapter"
)

// ListQueueController handles listing the moderation queue (one controller per endpoint)
type ListQueueController struct {
	UC *usecase.ListQueueUseCase
}

func NewListQueueController(pool *pgxpool.Pool) *ListQueueController {
	repo := adapter.NewPgModerationRepository(pool)
	return &ListQueueController{UC: usecase.NewListQueueUseCase(repo)}
}

func (h *ListQueueController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Defaults
		limit := 50
		offset := 0

		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		if v := c.Query("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		var status *moderation.QueueStatus
		if v := c.Query("status"); v != "" {
			s := moderation.QueueStatus(v)
			status = &s
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		items, err := h.UC.Execute(ctx, usecase.ListQueueInput{Status: status, Limit: limit, Offset: offset})
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(items))
		for _, item := range items {
			out = append(out, queueItemJSON(item))
		}

		c.JSON(http.StatusOK, gin.H{
			"items":  out,
			"limit":  limit,
			"offset": offset,
			"count":  len(out),
		})
	}
}

func queueItemJSON(item moderation.QueueItem) gin.H {
	return gin.H{
		"id":         item.ID,
		"messageId":  item.MessageID,
		"status":     item.Status,
		"reason":     item.Reason,
		"confidence": item.Confidence,
		"createdAt":  item.CreatedAt,
		"reviewedAt": item.ReviewedAt,
	}
}
