package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	api_models "kaitlus-backend/internal/models"
	db_models "kaitlus-backend/internal/models"
	"kaitlus-backend/internal/services"
	"kaitlus-backend/internal/store"
	"kaitlus-backend/pkg/httputil"
)

// SessionService opens visitor conversations.
type SessionService interface {
	StartSession(ctx context.Context, visitorName string) (*db_models.ChatSession, error)
}

// AssistantService runs one chat turn against the upstream model.
type AssistantService interface {
	Reply(ctx context.Context, message string, history []db_models.ChatTurn, sessionID *int64) (string, error)
}

// ChatHandlers handles the public chat endpoints: opening a session
// and running chat turns. sessions may be nil when the server runs
// without persistence; chat turns still work, they just aren't
// recorded.
type ChatHandlers struct {
	sessions  SessionService
	assistant AssistantService
}

func NewChatHandlers(sessions SessionService, assistant AssistantService) *ChatHandlers {
	return &ChatHandlers{
		sessions:  sessions,
		assistant: assistant,
	}
}

// HandleStartSession handles POST /v1/chat/sessions.
func (h *ChatHandlers) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		httputil.RespondError(w, http.StatusServiceUnavailable, "Chat persistence is unavailable")
		return
	}

	var req api_models.StartChatSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	session, err := h.sessions.StartSession(r.Context(), req.VisitorName)
	if err != nil {
		log.Printf("StartSession handler failed: %v", err)
		switch {
		case errors.Is(err, services.ErrValidation):
			httputil.RespondError(w, http.StatusBadRequest, err.Error()) // 400
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to start chat session") // 500
		}
		return
	}

	resp := api_models.StartChatSessionResponse{
		SessionID:   session.ID,
		VisitorName: session.VisitorName,
	}
	httputil.RespondJSON(w, http.StatusCreated, resp) // 201 Created
}

// HandleChat handles POST /v1/chat: one visitor message in, one
// assistant reply out.
func (h *ChatHandlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req api_models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	reply, err := h.assistant.Reply(r.Context(), req.Message, req.History, req.SessionID)
	if err != nil {
		log.Printf("Chat handler failed: %v", err)
		switch {
		case errors.Is(err, services.ErrValidation):
			httputil.RespondError(w, http.StatusBadRequest, err.Error()) // 400
		case errors.Is(err, store.ErrSessionNotFound):
			httputil.RespondError(w, http.StatusNotFound, "Chat session not found") // 404
		case errors.Is(err, services.ErrNotConfigured):
			httputil.RespondError(w, http.StatusInternalServerError, "AI service not configured") // 500
		case errors.Is(err, services.ErrUpstream):
			httputil.RespondError(w, http.StatusInternalServerError, "AI service error") // 500
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to get response") // 500
		}
		return
	}

	httputil.RespondJSON(w, http.StatusOK, api_models.ChatResponse{Reply: reply})
}
