package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kaitlus-backend/internal/auth"
	"kaitlus-backend/internal/config"
	"kaitlus-backend/internal/handlers"
	api_models "kaitlus-backend/internal/models"

	"github.com/google/uuid"
)

type stubViewer struct{}

func (stubViewer) ListSessions(context.Context) (*api_models.ListChatSessionsResponse, error) {
	return &api_models.ListChatSessionsResponse{Sessions: []api_models.ChatSessionSummaryResponse{}}, nil
}

func (stubViewer) GetTranscript(context.Context, int64) (*api_models.TranscriptResponse, error) {
	return &api_models.TranscriptResponse{Messages: []api_models.ChatMessageResponse{}}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(RouterDependencies{
		AdminHandler: handlers.NewAdminHandlers(stubViewer{}),
		Config:       &config.Config{JWTSecret: "test-secret"},
	})
}

func adminRequest(t *testing.T, router http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/chats", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	router := newTestRouter(t)

	rec := adminRequest(t, router, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestAdminRoutes_RejectNonAdmin(t *testing.T) {
	router := newTestRouter(t)

	token, err := auth.NewAccessToken(uuid.New(), false, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken failed: %v", err)
	}

	rec := adminRequest(t, router, token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin token, got %d", rec.Code)
	}
}

func TestAdminRoutes_AllowAdmin(t *testing.T) {
	router := newTestRouter(t)

	token, err := auth.NewAccessToken(uuid.New(), true, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken failed: %v", err)
	}

	rec := adminRequest(t, router, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin token, got %d", rec.Code)
	}
}

func TestAdminRoutes_RejectWrongSecret(t *testing.T) {
	router := newTestRouter(t)

	token, err := auth.NewAccessToken(uuid.New(), true, "other-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken failed: %v", err)
	}

	rec := adminRequest(t, router, token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for token signed with wrong secret, got %d", rec.Code)
	}
}
