package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"kaitlus-backend/internal/groq"
	"kaitlus-backend/internal/models"
	"kaitlus-backend/internal/store"
)

type capturedRequest struct {
	Model       string         `json:"model"`
	Messages    []groq.Message `json:"messages"`
	MaxTokens   int            `json:"max_tokens"`
	Temperature float64        `json:"temperature"`
}

// stubUpstream is an httptest server standing in for the completion
// API. It records every outbound request body.
type stubUpstream struct {
	server   *httptest.Server
	calls    atomic.Int64
	requests []capturedRequest
	status   int
	body     string
}

func newStubUpstream(t *testing.T, status int, body string) *stubUpstream {
	t.Helper()
	u := &stubUpstream{status: status, body: body}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		var req capturedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("upstream received undecodable body: %v", err)
		}
		u.requests = append(u.requests, req)
		w.WriteHeader(u.status)
		w.Write([]byte(u.body))
	}))
	t.Cleanup(u.server.Close)
	return u
}

func (u *stubUpstream) client(apiKey string) *groq.Client {
	return groq.NewClient(apiKey, u.server.URL, 5*time.Second)
}

const helloPayload = `{"choices":[{"message":{"content":"Hello!"}}]}`

func TestAssistantService_Reply_EmptyMessage(t *testing.T) {
	upstream := newStubUpstream(t, http.StatusOK, helloPayload)
	svc := NewAssistantService(upstream.client("test-key"), nil)

	if _, err := svc.Reply(context.Background(), "   ", nil, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if upstream.calls.Load() != 0 {
		t.Fatalf("expected no upstream calls, got %d", upstream.calls.Load())
	}
}

func TestAssistantService_Reply_NotConfigured(t *testing.T) {
	upstream := newStubUpstream(t, http.StatusOK, helloPayload)
	svc := NewAssistantService(upstream.client(""), nil)

	if _, err := svc.Reply(context.Background(), "Hi", nil, nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if upstream.calls.Load() != 0 {
		t.Fatalf("expected zero outbound HTTP calls, got %d", upstream.calls.Load())
	}
}

func TestAssistantService_Reply_TruncatesHistory(t *testing.T) {
	upstream := newStubUpstream(t, http.StatusOK, helloPayload)
	svc := NewAssistantService(upstream.client("test-key"), nil)

	history := make([]models.ChatTurn, 15)
	for i := range history {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		history[i] = models.ChatTurn{Role: role, Content: string(rune('a' + i))}
	}

	if _, err := svc.Reply(context.Background(), "newest", history, nil); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}

	if len(upstream.requests) != 1 {
		t.Fatalf("expected 1 upstream request, got %d", len(upstream.requests))
	}
	msgs := upstream.requests[0].Messages

	// system prompt + last 10 turns + new message
	if len(msgs) != 12 {
		t.Fatalf("expected 12 outbound messages, got %d", len(msgs))
	}
	if msgs[0].Role != "system" {
		t.Fatalf("expected system message first, got role %q", msgs[0].Role)
	}
	// The window is the most recent 10 turns, original order preserved.
	for i, turn := range history[5:] {
		if msgs[1+i].Content != turn.Content {
			t.Fatalf("history message %d mismatch: got %q want %q", i, msgs[1+i].Content, turn.Content)
		}
	}
	last := msgs[len(msgs)-1]
	if last.Role != "user" || last.Content != "newest" {
		t.Fatalf("expected new message last, got {%s %q}", last.Role, last.Content)
	}
}

func TestAssistantService_Reply_FixedModelParams(t *testing.T) {
	upstream := newStubUpstream(t, http.StatusOK, helloPayload)
	svc := NewAssistantService(upstream.client("test-key"), nil)

	if _, err := svc.Reply(context.Background(), "Hi", nil, nil); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}

	req := upstream.requests[0]
	if req.Model != groq.Model {
		t.Fatalf("unexpected model: %q", req.Model)
	}
	if req.MaxTokens != groq.MaxTokens {
		t.Fatalf("unexpected max_tokens: %d", req.MaxTokens)
	}
	if req.Temperature != groq.Temperature {
		t.Fatalf("unexpected temperature: %v", req.Temperature)
	}
}

func TestAssistantService_Reply_EndToEnd(t *testing.T) {
	upstream := newStubUpstream(t, http.StatusOK, helloPayload)
	chatSvc := NewChatService(newStubStore())
	svc := NewAssistantService(upstream.client("test-key"), chatSvc)
	ctx := context.Background()

	session, err := chatSvc.StartSession(ctx, "Alice")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	reply, err := svc.Reply(ctx, "Hi", nil, &session.ID)
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if reply != "Hello!" {
		t.Fatalf("expected reply %q, got %q", "Hello!", reply)
	}

	transcript, err := chatSvc.GetTranscript(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetTranscript failed: %v", err)
	}
	want := []struct {
		role    models.MessageRole
		content string
	}{
		{models.RoleHuman, "Hi"},
		{models.RoleAssistant, "Hello!"},
	}
	if len(transcript.Messages) != len(want) {
		t.Fatalf("expected %d transcript messages, got %d", len(want), len(transcript.Messages))
	}
	for i, w := range want {
		if transcript.Messages[i].Role != w.role || transcript.Messages[i].Content != w.content {
			t.Fatalf("transcript message %d mismatch: got {%s %q}", i, transcript.Messages[i].Role, transcript.Messages[i].Content)
		}
	}
}

func TestAssistantService_Reply_UpstreamError(t *testing.T) {
	upstream := newStubUpstream(t, http.StatusInternalServerError, `{"error":"boom"}`)
	chatSvc := NewChatService(newStubStore())
	svc := NewAssistantService(upstream.client("test-key"), chatSvc)
	ctx := context.Background()

	session, err := chatSvc.StartSession(ctx, "Alice")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	if _, err := svc.Reply(ctx, "Hi", nil, &session.ID); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}

	// The human turn is persisted before the upstream call; no
	// assistant row may exist for the failed turn.
	transcript, err := chatSvc.GetTranscript(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetTranscript failed: %v", err)
	}
	for _, m := range transcript.Messages {
		if m.Role == models.RoleAssistant {
			t.Fatalf("expected zero assistant rows after upstream failure, found %q", m.Content)
		}
	}
}

func TestAssistantService_Reply_UnknownSession(t *testing.T) {
	upstream := newStubUpstream(t, http.StatusOK, helloPayload)
	chatSvc := NewChatService(newStubStore())
	svc := NewAssistantService(upstream.client("test-key"), chatSvc)

	missing := int64(404)
	if _, err := svc.Reply(context.Background(), "Hi", nil, &missing); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if upstream.calls.Load() != 0 {
		t.Fatalf("expected no upstream call after failed append, got %d", upstream.calls.Load())
	}
}

func TestAssistantService_Reply_FallbackOnMissingContent(t *testing.T) {
	upstream := newStubUpstream(t, http.StatusOK, `{"choices":[]}`)
	svc := NewAssistantService(upstream.client("test-key"), nil)

	reply, err := svc.Reply(context.Background(), "Hi", nil, nil)
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if reply != groq.FallbackReply {
		t.Fatalf("expected fallback reply, got %q", reply)
	}
}
