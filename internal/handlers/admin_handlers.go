package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	api_models "kaitlus-backend/internal/models"
	"kaitlus-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
)

// TranscriptViewer is the read-only aggregation side of the chat
// service used by the admin endpoints.
type TranscriptViewer interface {
	ListSessions(ctx context.Context) (*api_models.ListChatSessionsResponse, error)
	GetTranscript(ctx context.Context, sessionID int64) (*api_models.TranscriptResponse, error)
}

// AdminHandlers serves the admin transcript viewer. The router mounts
// these behind JWT auth plus the admin-flag check.
type AdminHandlers struct {
	viewer TranscriptViewer
}

func NewAdminHandlers(viewer TranscriptViewer) *AdminHandlers {
	return &AdminHandlers{viewer: viewer}
}

// HandleListSessions handles GET /v1/admin/chats.
func (h *AdminHandlers) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	resp, err := h.viewer.ListSessions(r.Context())
	if err != nil {
		log.Printf("ListSessions handler failed: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list chat sessions")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleGetTranscript handles GET /v1/admin/chats/{sessionID}.
// An unknown session id yields a 200 with a null session and an empty
// message list; clients check the session field.
func (h *AdminHandlers) HandleGetTranscript(w http.ResponseWriter, r *http.Request) {
	sessionIDStr := chi.URLParam(r, "sessionID")
	sessionID, err := strconv.ParseInt(sessionIDStr, 10, 64)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	resp, err := h.viewer.GetTranscript(r.Context(), sessionID)
	if err != nil {
		log.Printf("GetTranscript handler failed for session %d: %v", sessionID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to fetch transcript")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}
