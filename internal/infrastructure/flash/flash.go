// Package flash keeps one-shot user messages in a signed cookie between a
// redirect and the page that follows it.
package flash

import (
	"encoding/gob"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/orris-inc/warden/internal/shared/config"
)

const sessionName = "warden_flash"

const (
	LevelError   = "error"
	LevelWarning = "warning"
	LevelSuccess = "success"
	LevelInfo    = "info"
)

type Message struct {
	Level string `json:"level"`
	Text  string `json:"message"`
}

func init() {
	gob.Register(Message{})
}

type Store struct {
	cookies *sessions.CookieStore
}

func NewStore(secret string, cookie config.CookieConfig) *Store {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     cookiePath(cookie.Path),
		Domain:   cookie.Domain,
		MaxAge:   300,
		Secure:   cookie.Secure,
		HttpOnly: true,
		SameSite: sameSite(cookie.SameSite),
	}
	return &Store{cookies: store}
}

// Add queues a message for the next request. It must run before the
// response headers are written.
func (s *Store) Add(w http.ResponseWriter, r *http.Request, level, text string) error {
	session, err := s.cookies.Get(r, sessionName)
	if err != nil && session == nil {
		return fmt.Errorf("failed to open flash session: %w", err)
	}
	session.AddFlash(Message{Level: level, Text: text})
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save flash session: %w", err)
	}
	return nil
}

// Pop returns and clears the queued messages. A tampered or undecodable
// cookie yields no messages.
func (s *Store) Pop(w http.ResponseWriter, r *http.Request) ([]Message, error) {
	session, err := s.cookies.Get(r, sessionName)
	if err != nil && session == nil {
		return nil, fmt.Errorf("failed to open flash session: %w", err)
	}

	raw := session.Flashes()
	if len(raw) == 0 {
		return []Message{}, nil
	}
	out := make([]Message, 0, len(raw))
	for _, f := range raw {
		if m, ok := f.(Message); ok {
			out = append(out, m)
		}
	}
	if err := session.Save(r, w); err != nil {
		return out, fmt.Errorf("failed to save flash session: %w", err)
	}
	return out, nil
}

func cookiePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

func sameSite(v string) http.SameSite {
	switch v {
	case "Strict":
		return http.SameSiteStrictMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
