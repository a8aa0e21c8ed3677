// Package sessions holds the per-browser conversation state and the Store
// abstraction it is persisted through.
package sessions

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Turn is one chat message. Turns are never edited once appended.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session is created by a successful setup submission. Its presence in a Store
// is what makes a browser "configured".
type Session struct {
	ID             string    `json:"id"`
	WebsiteURL     string    `json:"website_url"`
	WebsiteTitle   string    `json:"website_title"`
	WebsiteContent string    `json:"website_content"`
	FetchFailed    bool      `json:"fetch_failed"`
	APIKey         string    `json:"-"`
	APIProvider    string    `json:"api_provider"`
	ChatHistory    []Turn    `json:"chat_history"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Store persists sessions keyed by the opaque id carried in the session cookie.
type Store interface {
	// Get returns nil, nil when no session exists for id.
	Get(ctx context.Context, id string) (*Session, error)
	// Put creates the session or replaces its setup fields. History is reset.
	Put(ctx context.Context, s *Session) error
	// AppendTurns adds turns after the existing history, in order.
	AppendTurns(ctx context.Context, id string, turns ...Turn) error
}

// Pinger is implemented by stores backed by an external service.
type Pinger interface {
	Ping(ctx context.Context) error
}
