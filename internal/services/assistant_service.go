package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"kaitlus-backend/internal/groq"
	"kaitlus-backend/internal/models"
)

// Custom errors for the assistant service
var (
	ErrNotConfigured = errors.New("assistant service is not configured")
	ErrUpstream      = errors.New("assistant upstream request failed")
)

// maxHistoryTurns bounds the context window sent upstream. Only the
// most recent turns go out, oldest-first; this caps request size and
// cost, it is not a correctness requirement.
const maxHistoryTurns = 10

// systemPrompt carries the business facts the assistant answers from.
const systemPrompt = `You are a helpful customer service assistant for Kaitlus, a garbage container rental and sales company.

About Kaitlus:
- We rent garbage containers in sizes: 2m³ (€99/week), 5m³ (€149/week), 10m³ (€249/week), 20m³ (€399/week)
- We also sell new and used containers
- We offer residential, commercial, and construction waste services
- We provide same-day delivery in most cases
- Business hours: Mon-Fri 7:00-18:00, Sat 8:00-14:00
- Contact: +358 12 345 6789, info@kaitlus.com
- Location: Helsinki, Finland

Be helpful, friendly, and concise. If someone wants to order, direct them to /order page. For sales inquiries, direct to /sales page. For other questions, suggest /contact page.

Keep responses short (2-3 sentences max) unless more detail is needed.`

// TranscriptRecorder persists one transcript message. *ChatService
// satisfies it; a nil recorder means the server runs without
// persistence (degraded mode) and turns are simply not recorded.
type TranscriptRecorder interface {
	AppendMessage(ctx context.Context, sessionID int64, role models.MessageRole, content string) (*models.ChatMessage, error)
}

// AssistantService relays visitor messages to the completion API:
// build the prompt from the fixed system instructions, a trimmed
// window of prior turns and the new message, call upstream once, and
// record both sides of the turn when a session accompanies the
// request.
type AssistantService struct {
	llm      *groq.Client
	recorder TranscriptRecorder
}

func NewAssistantService(llm *groq.Client, recorder TranscriptRecorder) *AssistantService {
	return &AssistantService{
		llm:      llm,
		recorder: recorder,
	}
}

// Reply runs one chat turn and returns the assistant's reply text.
//
// The human message is persisted before the upstream call and the
// assistant reply only after a successful one; the steps are
// deliberately not a transaction, so an upstream failure can leave a
// human message with no matching reply. Consumers reconstruct order
// from timestamps/ids, not request order.
func (s *AssistantService) Reply(ctx context.Context, message string, history []models.ChatTurn, sessionID *int64) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("%w: message cannot be empty", ErrValidation)
	}
	if !s.llm.Configured() {
		return "", ErrNotConfigured
	}

	if sessionID != nil && s.recorder != nil {
		if _, err := s.recorder.AppendMessage(ctx, *sessionID, models.RoleHuman, message); err != nil {
			return "", fmt.Errorf("failed to record visitor message: %w", err)
		}
	}

	reply, err := s.llm.CreateChatCompletion(ctx, buildMessages(message, history))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if sessionID != nil && s.recorder != nil {
		if _, err := s.recorder.AppendMessage(ctx, *sessionID, models.RoleAssistant, reply); err != nil {
			// The reply is already in hand; losing the assistant row is
			// accepted rather than failing the visitor's turn.
			log.Printf("WARN [AssistantService] Reply: failed to record assistant message for session %d: %v", *sessionID, err)
		}
	}

	return reply, nil
}

// buildMessages assembles the outbound message list: system prompt
// first, then the most recent prior turns in their original order, and
// the new visitor message last.
func buildMessages(message string, history []models.ChatTurn) []groq.Message {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	messages := make([]groq.Message, 0, len(history)+2)
	messages = append(messages, groq.Message{Role: groq.RoleSystem, Content: systemPrompt})
	for _, turn := range history {
		messages = append(messages, groq.Message{Role: upstreamRole(turn.Role), Content: turn.Content})
	}
	messages = append(messages, groq.Message{Role: groq.RoleUser, Content: message})
	return messages
}

// upstreamRole maps transcript roles onto the completion API's
// vocabulary. Frontends already speak "user"/"assistant"; persisted
// history uses "human" for the visitor side.
func upstreamRole(role string) string {
	if role == string(models.RoleAssistant) {
		return groq.RoleAssistant
	}
	return groq.RoleUser
}
