package controller

import (
	"errors"
	"net/http"

	"go-agora/internal/pkg/moderation/application/usecase"
	moderation "go-agora/internal/pkg/moderation/domain"
)

// statusForError maps use case errors to HTTP status codes. Conflicts
// (double resolution, duplicate appeal) get 409 so clients can tell a lost
// race from a bad request.
func statusForError(err error) int {
	switch {
	case errors.Is(err, moderation.ErrQueueItemNotFound), errors.Is(err, moderation.ErrAppealNotFound):
		return http.StatusNotFound
	case errors.Is(err, moderation.ErrAlreadyResolved), errors.Is(err, moderation.ErrDuplicateAppeal):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrPersistence):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func appealJSON(a moderation.Appeal) map[string]any {
	return map[string]any{
		"id":          a.ID,
		"messageId":   a.MessageID,
		"userId":      a.UserID,
		"queueId":     a.QueueID,
		"reason":      a.Reason,
		"status":      a.Status,
		"moderatorId": a.ModeratorID,
		"response":    a.Response,
		"createdAt":   a.CreatedAt,
		"resolvedAt":  a.ResolvedAt,
	}
}
