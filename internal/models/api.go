package models

import (
	"time"

	"github.com/google/uuid"
)

// --- Request Structs ---

// RegisterRequest defines the expected body for the register endpoint.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginRequest defines the expected body for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StartChatSessionRequest defines the body for opening a conversation.
type StartChatSessionRequest struct {
	VisitorName string `json:"visitor_name"`
}

// ChatRequest defines the body for one chat round-trip. History is the
// frontend's bounded copy of prior turns; SessionID is optional and,
// when present, ties the turn to a persisted transcript.
type ChatRequest struct {
	Message   string     `json:"message"`
	History   []ChatTurn `json:"history,omitempty"`
	SessionID *int64     `json:"session_id,omitempty"`
}

// --- Response Structs ---

// UserResponse defines the account information returned by the API.
// Avoid returning sensitive info like HashedPassword.
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	IsAdmin  bool      `json:"is_admin"`
}

// AuthResponse defines the response body for successful authentication.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

// StartChatSessionResponse returns the identifier assigned to a new
// conversation plus the normalized visitor name.
type StartChatSessionResponse struct {
	SessionID   int64  `json:"session_id"`
	VisitorName string `json:"visitor_name"`
}

// ChatResponse carries the assistant's reply text.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ChatMessageResponse is one transcript message as returned by the
// admin transcript endpoint.
type ChatMessageResponse struct {
	ID        int64       `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// ChatSessionResponse is the session metadata DTO.
type ChatSessionResponse struct {
	ID          int64     `json:"id"`
	VisitorName string    `json:"visitor_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChatSessionSummaryResponse is one row of the admin session listing.
// LastMessageAt is omitted for sessions that have no messages.
type ChatSessionSummaryResponse struct {
	Session       ChatSessionResponse `json:"session"`
	MessageCount  int64               `json:"message_count"`
	LastMessageAt *time.Time          `json:"last_message_at,omitempty"`
}

// ListChatSessionsResponse wraps the admin session listing.
type ListChatSessionsResponse struct {
	Sessions []ChatSessionSummaryResponse `json:"sessions"`
}

// TranscriptResponse is the full ordered transcript of one session.
// Session is null when the requested session does not exist; callers
// must check rather than rely on a 404.
type TranscriptResponse struct {
	Session  *ChatSessionResponse  `json:"session"`
	Messages []ChatMessageResponse `json:"messages"`
}

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
