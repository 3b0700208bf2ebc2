package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"go-agora/internal/infrastructure/realtime"
	idport "go-agora/internal/pkg/identity/port"
	moderation "go-agora/internal/pkg/moderation/domain"
	"go-agora/internal/pkg/moderation/pipeline"
	repoAdapter "go-agora/internal/pkg/moderation/persistence/repository/adapter"
	"go-agora/internal/pkg/thread/application/usecase"
	thread "go-agora/internal/pkg/thread/domain"
)

// ThreadSocketController handles the websocket endpoint for realtime thread
// traffic: message fan-out, typing presence, deletions, and mention relays.
type ThreadSocketController struct {
	registry        *realtime.Registry
	presence        *realtime.PresenceTracker
	identity        idport.Resolver
	postMessageUC   *usecase.PostMessageUseCase
	log             *zap.Logger
	readTimeout     time.Duration
	inflightTimeout time.Duration
}

func NewThreadSocketController(
	pool *pgxpool.Pool,
	p *pipeline.Pipeline,
	registry *realtime.Registry,
	presence *realtime.PresenceTracker,
	identity idport.Resolver,
	log *zap.Logger,
	livenessInterval time.Duration,
) *ThreadSocketController {
	repo := repoAdapter.NewPgModerationRepository(pool)
	return &ThreadSocketController{
		registry:      registry,
		presence:      presence,
		identity:      identity,
		postMessageUC: usecase.NewPostMessageUseCase(repo, p, log),
		log:           log,
		// The server pings every liveness interval and closes after two
		// missed pongs; the read deadline must outlast that cycle.
		readTimeout:     3 * livenessInterval,
		inflightTimeout: 10 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

// Handle upgrades HTTP connections to websocket and processes frames until
// the client disconnects. Anonymous connections are accepted in read-only
// mode: they receive broadcasts but cannot emit anything.
func (ctl *ThreadSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		threadID := c.Param("threadId")
		if threadID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "threadId is required"})
			return
		}

		ident, err := ctl.identity.Resolve(c.Request.Header)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		var userID, userName string
		if ident != nil {
			userID, userName = ident.UserID, ident.UserName
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just log and return.
			ctl.log.Debug("websocket upgrade failed", zap.Error(err))
			return
		}

		conn := realtime.NewConnection(threadID, userID, userName, ws)
		ctl.registry.Join(threadID, conn)
		defer func() {
			ctl.registry.Leave(threadID, conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
			// Clear the typing indicator only when this was the user's last
			// connection to the thread.
			if conn.Authenticated() && ctl.registry.UserConnections(threadID, conn.UserID) == 0 {
				ctl.presence.ClearTyping(threadID, conn.UserID)
			}
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(ctl.readTimeout))
		ws.SetPongHandler(func(string) error {
			conn.MarkAlive()
			return ws.SetReadDeadline(time.Now().Add(ctl.readTimeout))
		})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.log.Debug("websocket read ended", zap.String("thread_id", threadID), zap.Error(err))
				return
			}
			conn.MarkAlive()

			evt, err := thread.DecodeEvent(data)
			if err != nil {
				ctl.replyError(conn, threadID, "invalid_event", err.Error())
				continue
			}
			if evt.SectionID != threadID {
				ctl.replyError(conn, threadID, "section_mismatch", "event targets a different thread")
				continue
			}

			switch evt.Kind {
			case thread.EventUserTyping:
				if !ctl.requireAuth(conn, threadID) {
					continue
				}
				ctl.presence.RecordTyping(threadID, conn.UserID, conn.UserName)

			case thread.EventUserStoppedTyping:
				if !ctl.requireAuth(conn, threadID) {
					continue
				}
				ctl.presence.ClearTyping(threadID, conn.UserID)

			case thread.EventNewMessage:
				if !ctl.requireAuth(conn, threadID) {
					continue
				}
				ctl.handleMessage(conn, threadID, evt.Message)

			case thread.EventMessageDeleted:
				if !ctl.requireAuth(conn, threadID) {
					continue
				}
				ctl.registry.Broadcast(threadID, thread.Encode(thread.EventMessageDeleted, *evt.Delete))

			case thread.EventMentionNotification:
				if !ctl.requireAuth(conn, threadID) {
					continue
				}
				ctl.registry.NotifyUser(threadID, evt.Mention.UserID, thread.Encode(thread.EventMentionNotification, *evt.Mention))
			}
		}
	}
}

func (ctl *ThreadSocketController) handleMessage(conn *realtime.Connection, threadID string, p *thread.MessagePayload) {
	if p.SenderID != conn.UserID {
		ctl.replyError(conn, threadID, "sender_mismatch", "senderId must match the connected user")
		return
	}

	// Detached from the connection's lifetime: an in-flight evaluation runs
	// to completion even if the sender disconnects mid-pipeline.
	ctx, cancel := context.WithTimeout(context.Background(), ctl.inflightTimeout)
	defer cancel()

	out, err := ctl.postMessageUC.Execute(ctx, usecase.PostMessageInput{
		ThreadID: threadID,
		AuthorID: conn.UserID,
		Content:  p.Content,
		ParentID: p.ParentID,
	})
	if err != nil {
		ctl.replyError(conn, threadID, "internal_error", "message could not be processed")
		return
	}

	if out.Result.Action == moderation.ActionAllow {
		stored := *p
		stored.ID = out.MessageID
		ctl.registry.Broadcast(threadID, thread.Encode(thread.EventNewMessage, stored))
		// Sending a message ends the author's typing state.
		ctl.presence.ClearTyping(threadID, conn.UserID)
		return
	}

	if out.Result.Reason == moderation.ReasonRateLimited {
		ctl.replyError(conn, threadID, "rate_limited", "too many messages, slow down")
		return
	}

	// Held for review: only the author learns the message was withheld.
	_ = conn.Send(thread.Encode(thread.EventMessageQueued, thread.QueuedPayload{
		SectionID: threadID,
		MessageID: out.MessageID,
		Status:    string(moderation.StatusForAction(out.Result.Action)),
		Reason:    out.Result.Reason,
	}))
}

func (ctl *ThreadSocketController) requireAuth(conn *realtime.Connection, threadID string) bool {
	if conn.Authenticated() {
		return true
	}
	ctl.replyError(conn, threadID, "auth_required", "anonymous connections are read-only")
	return false
}

func (ctl *ThreadSocketController) replyError(conn *realtime.Connection, threadID, code, message string) {
	_ = conn.Send(thread.Encode(thread.EventError, thread.ErrorPayload{
		SectionID: threadID,
		Code:      code,
		Message:   message,
	}))
}
