package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	db_models "kaitlus-backend/internal/models"
	"kaitlus-backend/internal/services"
	"kaitlus-backend/internal/store"
)

type stubSessionService struct {
	session *db_models.ChatSession
	err     error
}

func (s stubSessionService) StartSession(_ context.Context, _ string) (*db_models.ChatSession, error) {
	return s.session, s.err
}

type stubAssistantService struct {
	reply string
	err   error
}

func (s stubAssistantService) Reply(_ context.Context, _ string, _ []db_models.ChatTurn, _ *int64) (string, error) {
	return s.reply, s.err
}

func doJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHandleStartSession_Success(t *testing.T) {
	session := &db_models.ChatSession{ID: 7, VisitorName: "Alice", CreatedAt: time.Now()}
	h := NewChatHandlers(stubSessionService{session: session}, stubAssistantService{})

	rec := doJSON(t, h.HandleStartSession, `{"visitor_name":"Alice"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp db_models.StartChatSessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID != 7 || resp.VisitorName != "Alice" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHandleStartSession_ValidationError(t *testing.T) {
	h := NewChatHandlers(stubSessionService{err: services.ErrValidation}, stubAssistantService{})

	rec := doJSON(t, h.HandleStartSession, `{"visitor_name":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleStartSession_NoPersistence(t *testing.T) {
	h := NewChatHandlers(nil, stubAssistantService{})

	rec := doJSON(t, h.HandleStartSession, `{"visitor_name":"Alice"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 in degraded mode, got %d", rec.Code)
	}
}

func TestHandleChat_Success(t *testing.T) {
	h := NewChatHandlers(nil, stubAssistantService{reply: "Hello!"})

	rec := doJSON(t, h.HandleChat, `{"message":"Hi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp db_models.ChatResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Reply != "Hello!" {
		t.Fatalf("unexpected reply: %q", resp.Reply)
	}
}

func TestHandleChat_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", services.ErrValidation, http.StatusBadRequest},
		{"not configured", services.ErrNotConfigured, http.StatusInternalServerError},
		{"upstream", services.ErrUpstream, http.StatusInternalServerError},
		{"unknown session", store.ErrSessionNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		h := NewChatHandlers(nil, stubAssistantService{err: tc.err})
		rec := doJSON(t, h.HandleChat, `{"message":"Hi"}`)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
	}
}
