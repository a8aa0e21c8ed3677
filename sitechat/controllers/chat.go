// sitechat/controllers/chat.go
package controllers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"sitechat/sitechat/services/answer"
	"sitechat/sitechat/services/llm"
	"sitechat/sitechat/services/scraper"
	"sitechat/sitechat/sessions"
	"sitechat/sitechat/utils/logging"
	"sitechat/sitechat/utils/types"

	"go.uber.org/zap"
)

// Setup form messages.
const (
	MsgMissingURL      = "Please enter a website URL"
	MsgMissingAPIKey   = "Please enter your API key"
	MsgMissingProvider = "Please select an API provider"
	MsgInvalidProvider = "Please select a valid API provider"
)

type ContentFetcher interface {
	Fetch(ctx context.Context, targetURL string) scraper.Result
}

type AnswerGenerator interface {
	Generate(ctx context.Context, question, content string, creds answer.Credentials) (string, error)
}

// ChatController drives the per-session state machine: a session is
// unconfigured until Setup stores it, then loops on Ask.
type ChatController struct {
	store   sessions.Store
	fetcher ContentFetcher
	answers AnswerGenerator

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewChatController(store sessions.Store, fetcher ContentFetcher, answers AnswerGenerator) *ChatController {
	return &ChatController{
		store:   store,
		fetcher: fetcher,
		answers: answers,
		locks:   make(map[string]*sessionLock),
	}
}

// Setup validates the form, fetches the page and (re)creates the session.
// A non-empty message means the form must be shown again and nothing was saved.
func (c *ChatController) Setup(ctx context.Context, sessionID string, req types.SetupRequest) (string, error) {
	websiteURL := strings.TrimSpace(req.WebsiteURL)
	apiKey := strings.TrimSpace(req.APIKey)
	provider := strings.TrimSpace(req.APIProvider)

	if websiteURL == "" {
		return MsgMissingURL, nil
	}
	if apiKey == "" {
		return MsgMissingAPIKey, nil
	}
	if provider == "" {
		return MsgMissingProvider, nil
	}
	if _, ok := llm.ParseProviderKind(provider); !ok {
		return MsgInvalidProvider, nil
	}

	res := c.fetcher.Fetch(ctx, websiteURL)

	unlock := c.lock(sessionID)
	defer unlock()
	sess := &sessions.Session{
		ID:             sessionID,
		WebsiteURL:     websiteURL,
		WebsiteTitle:   res.Title,
		WebsiteContent: res.Text,
		FetchFailed:    res.Failed(),
		APIKey:         apiKey,
		APIProvider:    provider,
	}
	if err := c.store.Put(ctx, sess); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	logging.AppLogger.Info("session configured",
		zap.String("session_id", sessionID),
		zap.String("url", websiteURL),
		zap.String("provider", provider),
		zap.Bool("fetch_failed", res.Failed()),
		zap.Bool("cached", res.Cached),
	)
	return "", nil
}

// Session returns nil when the session has not been set up.
func (c *ChatController) Session(ctx context.Context, sessionID string) (*sessions.Session, error) {
	return c.store.Get(ctx, sessionID)
}

// Ask appends the user turn, generates and appends the ai turn. It returns nil
// for an unconfigured session. An empty query changes nothing. When generation
// fails the user turn has already been stored.
func (c *ChatController) Ask(ctx context.Context, sessionID, query string) (*sessions.Session, error) {
	unlock := c.lock(sessionID)
	defer unlock()

	sess, err := c.store.Get(ctx, sessionID)
	if err != nil || sess == nil {
		return nil, err
	}
	if query == "" {
		return sess, nil
	}

	userTurn := sessions.Turn{Role: sessions.RoleUser, Content: query}
	if err := c.store.AppendTurns(ctx, sessionID, userTurn); err != nil {
		return nil, fmt.Errorf("save user turn: %w", err)
	}
	sess.ChatHistory = append(sess.ChatHistory, userTurn)

	reply, err := c.answers.Generate(ctx, query, sess.WebsiteContent, answer.Credentials{
		APIKey:   sess.APIKey,
		Provider: sess.APIProvider,
	})
	if err != nil {
		logging.ErrorLogger.Error("answer generation failed",
			zap.String("session_id", sessionID),
			zap.String("provider", sess.APIProvider),
			zap.Error(err),
		)
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	aiTurn := sessions.Turn{Role: sessions.RoleAI, Content: reply}
	if err := c.store.AppendTurns(ctx, sessionID, aiTurn); err != nil {
		return nil, fmt.Errorf("save ai turn: %w", err)
	}
	sess.ChatHistory = append(sess.ChatHistory, aiTurn)
	return sess, nil
}

// lock serialises Setup and Ask for one session id inside this process.
// Entries are dropped once nobody holds or waits on them.
func (c *ChatController) lock(sessionID string) func() {
	c.mu.Lock()
	l, ok := c.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		c.locks[sessionID] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, sessionID)
		}
		c.mu.Unlock()
	}
}
