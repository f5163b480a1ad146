package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mocktestapp/mocktest-backend/internal/middleware"
	"github.com/mocktestapp/mocktest-backend/internal/session"
	ws "github.com/mocktestapp/mocktest-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live attempt state over WebSocket. The client gets a
// state push once per second, keeping its countdown and palette in step
// with the server clock, and can send navigation commands on the same
// connection.
type WSHandler struct {
	manager  *session.Manager
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(manager *session.Manager, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		manager:  manager,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/attempts/:id/stream?token=...
func (h *WSHandler) AttemptStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	attemptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attempt ID"})
		return
	}

	// Verify ownership before upgrading.
	if _, err := h.manager.View(attemptID, claims.UserID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "attempt not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_id", claims.UserID.String()).
		Str("attempt_id", attemptID.String()).
		Logger()
	wsLog.Info().Msg("Attempt stream connected")

	// All writes happen on this goroutine; the reader only forwards
	// parsed commands. quit unblocks a reader mid-send when the writer
	// returns first (ended session), otherwise its send would park the
	// goroutine forever.
	commands := make(chan ws.RequestPayload)
	readerDone := make(chan struct{})
	quit := make(chan struct{})
	defer close(quit)
	go h.readLoop(conn, wsLog, commands, readerDone, quit)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-readerDone:
			wsLog.Debug().Msg("Attempt stream closed")
			return
		case msg := <-commands:
			if msg.Action == ws.ActionPing {
				ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
				continue
			}
			if ended := h.handleCommand(conn, attemptID, claims.UserID, msg); ended {
				return
			}
		case <-ticker.C:
			view, err := h.manager.View(attemptID, claims.UserID)
			if err != nil {
				// The session is gone: the countdown expired and the
				// attempt was force-submitted.
				ws.WriteTyped(conn, ws.EndedResponse{Event: ws.EventEnded})
				wsLog.Info().Msg("Attempt ended, closing stream")
				return
			}
			ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, Attempt: view})
		}
	}
}

func (h *WSHandler) readLoop(conn *websocket.Conn, wsLog zerolog.Logger, commands chan<- ws.RequestPayload, done chan<- struct{}, quit <-chan struct{}) {
	defer close(done)
	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}
		select {
		case commands <- msg:
		case <-quit:
			return
		}
	}
}

// handleCommand applies one navigation command and pushes the refreshed
// state. Returns true when the session no longer exists.
func (h *WSHandler) handleCommand(conn *websocket.Conn, attemptID, userID uuid.UUID, msg ws.RequestPayload) bool {
	var (
		view session.View
		err  error
	)

	switch msg.Action {
	case ws.ActionSelect:
		view, err = h.manager.SelectOption(attemptID, userID, msg.Option)
	case ws.ActionSaveNext:
		view, err = h.manager.SaveAndNext(attemptID, userID)
	case ws.ActionMarkNext:
		view, err = h.manager.MarkAndNext(attemptID, userID)
	case ws.ActionClear:
		view, err = h.manager.ClearResponse(attemptID, userID)
	case ws.ActionJump:
		view, err = h.manager.JumpTo(attemptID, userID, msg.Question)
	case ws.ActionPause:
		view, err = h.manager.Pause(attemptID, userID)
	case ws.ActionResume:
		view, err = h.manager.Resume(attemptID, userID)
	default:
		ws.WriteError(conn, "unknown action: "+string(msg.Action))
		return false
	}

	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			ws.WriteTyped(conn, ws.EndedResponse{Event: ws.EventEnded})
			return true
		}
		ws.WriteError(conn, err.Error())
		return false
	}

	ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, Attempt: view})
	return false
}
