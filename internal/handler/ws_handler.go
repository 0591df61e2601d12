package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/formpulse/formpulse-backend/internal/response"
	"github.com/formpulse/formpulse-backend/internal/service"
	ws "github.com/formpulse/formpulse-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
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

// WSHandler handles live survey session streaming: answers arrive one at a
// time, each one gets a branching decision back, and submit triggers final
// scoring over the accumulated session answers.
type WSHandler struct {
	submissionService *service.SubmissionService
	log               zerolog.Logger
	upgrader          websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(submissionService *service.SubmissionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		submissionService: submissionService,
		log:               log.With().Str("component", "ws_handler").Logger(),
		upgrader:          buildUpgrader(allowedOrigins),
	}
}

// SurveySessionStream godoc
// WS /ws/v1/surveys/:survey_id/session
// Upgrades to WebSocket for a live respondent session. Each connection gets
// its own session ID; answers are buffered in Redis until submit.
func (h *WSHandler) SurveySessionStream(c *gin.Context) {
	surveyID, err := uuid.Parse(c.Param("survey_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid survey ID"})
		return
	}

	// Reject sessions on unpublished surveys before upgrading.
	if err := h.submissionService.VerifyPublished(c.Request.Context(), surveyID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "survey not published"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	sessionID := uuid.New().String()

	wsLog := h.log.With().
		Str("survey_id", surveyID.String()).
		Str("session_id", sessionID).
		Logger()

	wsLog.Info().Msg("Respondent connected")

	for {
		var msg ws.RequestPayload
		err := ws.ReadJSON(conn, &msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		switch msg.Action {
		case ws.ActionAnswer:
			h.handleAnswer(conn, wsLog, surveyID, sessionID, &msg)
		case ws.ActionSubmit:
			h.handleSubmit(conn, wsLog, surveyID, sessionID)
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

// handleAnswer saves one answer into the session buffer and streams the
// branching decision back.
func (h *WSHandler) handleAnswer(conn *websocket.Conn, wsLog zerolog.Logger, surveyID uuid.UUID, sessionID string, msg *ws.RequestPayload) {
	ctx := context.Background()

	if msg.QID == "" {
		ws.WriteError(conn, "q_id is required")
		return
	}

	decision, err := h.submissionService.SaveAnswer(ctx, surveyID, sessionID, msg.QID, msg.Answer)
	if err != nil {
		wsLog.Error().Err(err).Str("q_id", msg.QID).Msg("Answer save error")
		ws.WriteError(conn, "save failed")
		return
	}

	if decision == nil {
		ws.WriteTyped(conn, ws.SavedResponse{Event: ws.EventSaved})
		return
	}
	ws.WriteTyped(conn, ws.DecisionResponse{
		Event:            ws.EventDecision,
		Action:           string(decision.Action),
		TargetQuestionID: decision.TargetQuestionID,
	})
}

// handleSubmit finalizes the session: the buffered answers are scored and
// persisted, then the result streams back to the respondent.
func (h *WSHandler) handleSubmit(conn *websocket.Conn, wsLog zerolog.Logger, surveyID uuid.UUID, sessionID string) {
	ctx := context.Background()

	result, err := h.submissionService.FinalizeSession(ctx, surveyID, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrResponseClosed) {
			ws.WriteError(conn, response.GetMessage(response.ErrResponseClosed))
			return
		}
		wsLog.Error().Err(err).Msg("Session finalize error")
		ws.WriteError(conn, "submit failed")
		return
	}

	wsLog.Info().
		Str("response_id", result.ResponseID.String()).
		Msg("Session submitted")

	ws.WriteTyped(conn, ws.ScoredResponse{
		Event:  ws.EventScored,
		Result: result,
	})
}
