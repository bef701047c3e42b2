// Package groq is a minimal client for the Groq OpenAI-compatible
// chat-completion API. One fixed-shape request, no streaming, no
// retries.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	// Model and sampling parameters are fixed; the assistant is a
	// single-purpose support bot, not a configurable LLM surface.
	Model       = "llama-3.1-8b-instant"
	MaxTokens   = 300
	Temperature = 0.7

	// FallbackReply is returned when the upstream answers successfully
	// but the payload lacks a usable reply. Degrading to a generic
	// apology beats surfacing a parse error to a site visitor.
	FallbackReply = "Sorry, I could not process that."
)

// Message roles as the completion API expects them.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of the outbound messages array.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client calls the Groq chat-completion endpoint with a bearer
// credential. The zero credential is allowed; Configured reports it so
// callers can fail fast without network I/O.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Groq client. baseURL is the API root without a
// trailing slash (e.g. "https://api.groq.com/openai/v1").
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configured reports whether an API credential is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// CreateChatCompletion sends one synchronous completion request and
// returns the assistant's reply text. A non-success status or
// transport failure (including timeout) is an error; a success payload
// without a reply field degrades to FallbackReply.
func (c *Client) CreateChatCompletion(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:       Model,
		Messages:    messages,
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("ERROR [GroqClient] CreateChatCompletion: upstream status %d: %s", resp.StatusCode, errBody)
		return "", fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Printf("WARN [GroqClient] CreateChatCompletion: could not decode upstream payload: %v", err)
		return FallbackReply, nil
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		log.Println("WARN [GroqClient] CreateChatCompletion: upstream payload missing reply content")
		return FallbackReply, nil
	}

	return parsed.Choices[0].Message.Content, nil
}
