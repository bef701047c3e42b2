package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"kaitlus-backend/internal/models"
	"kaitlus-backend/internal/store"
)

// ChatService owns the conversation lifecycle: opening sessions,
// appending transcript messages, and the read-only admin views. All
// state lives in the store; nothing is cached across requests.
type ChatService struct {
	store store.Store
}

func NewChatService(store store.Store) *ChatService {
	return &ChatService{store: store}
}

// StartSession opens a new conversation for the given visitor and
// returns the persisted session with its assigned identifier.
// Identifiers are monotonically increasing across successive calls.
func (s *ChatService) StartSession(ctx context.Context, visitorName string) (*models.ChatSession, error) {
	visitorName = strings.TrimSpace(visitorName)
	if visitorName == "" {
		return nil, fmt.Errorf("%w: visitor name cannot be empty", ErrValidation)
	}

	session, err := s.store.CreateChatSession(ctx, visitorName)
	if err != nil {
		log.Printf("Error creating chat session for visitor %q: %v", visitorName, err)
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}

	return session, nil
}

// AppendMessage records one transcript message. It is not idempotent:
// calling twice appends two messages, so callers invoke it exactly
// once per logical turn. Returns store.ErrSessionNotFound when the
// session does not exist.
func (s *ChatService) AppendMessage(ctx context.Context, sessionID int64, role models.MessageRole, content string) (*models.ChatMessage, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be %q or %q", ErrValidation, models.RoleHuman, models.RoleAssistant)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: message content cannot be empty", ErrValidation)
	}

	msg, err := s.store.CreateChatMessage(ctx, sessionID, role, content)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, err
		}
		log.Printf("Error appending %s message to session %d: %v", role, sessionID, err)
		return nil, fmt.Errorf("failed to append chat message: %w", err)
	}

	return msg, nil
}

// ListSessions returns every session with aggregated message counts
// and last-activity timestamps, newest session first.
func (s *ChatService) ListSessions(ctx context.Context) (*models.ListChatSessionsResponse, error) {
	summaries, err := s.store.ListChatSessions(ctx)
	if err != nil {
		log.Printf("Error listing chat sessions: %v", err)
		return nil, fmt.Errorf("failed to list chat sessions: %w", err)
	}

	resp := &models.ListChatSessionsResponse{
		Sessions: make([]models.ChatSessionSummaryResponse, 0, len(summaries)),
	}
	for _, summary := range summaries {
		resp.Sessions = append(resp.Sessions, models.ChatSessionSummaryResponse{
			Session:       mapSessionToResponse(summary.Session),
			MessageCount:  summary.MessageCount,
			LastMessageAt: summary.LastMessageAt,
		})
	}
	return resp, nil
}

// GetTranscript returns one session's metadata plus its full ordered
// transcript. A session id that matches nothing yields a response with
// a nil session and an empty message list rather than an error;
// callers check for that explicitly.
func (s *ChatService) GetTranscript(ctx context.Context, sessionID int64) (*models.TranscriptResponse, error) {
	resp := &models.TranscriptResponse{
		Messages: []models.ChatMessageResponse{},
	}

	session, err := s.store.GetChatSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return resp, nil
		}
		log.Printf("Error fetching chat session %d: %v", sessionID, err)
		return nil, fmt.Errorf("failed to fetch chat session: %w", err)
	}

	messages, err := s.store.ListChatMessages(ctx, sessionID)
	if err != nil {
		log.Printf("Error fetching transcript for session %d: %v", sessionID, err)
		return nil, fmt.Errorf("failed to fetch transcript: %w", err)
	}

	sessionResp := mapSessionToResponse(*session)
	resp.Session = &sessionResp
	for _, m := range messages {
		resp.Messages = append(resp.Messages, models.ChatMessageResponse{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return resp, nil
}

// mapSessionToResponse converts a DB session model to an API response DTO.
func mapSessionToResponse(session models.ChatSession) models.ChatSessionResponse {
	return models.ChatSessionResponse{
		ID:          session.ID,
		VisitorName: session.VisitorName,
		CreatedAt:   session.CreatedAt,
	}
}
