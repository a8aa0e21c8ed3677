// sitechat/middlewares/session.go
package middlewares

import (
	"context"
	"crypto/rand"
	"net/http"
	"time"

	"sitechat/sitechat/utils/logging"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const SessionIDKey contextKey = "session_id"

const SessionCookieName = "sitechat_session"

// SessionSecret returns the configured secret, or 32 random bytes when none is
// configured. A random secret lives only as long as the process.
func SessionSecret(configured string) []byte {
	if configured != "" {
		return []byte(configured)
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate session secret: " + err.Error())
	}
	logging.AppLogger.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	return secret
}

// SessionFromContext returns the session id placed by SessionMiddleware.
func SessionFromContext(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}

func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionIDKey, id)
}

// SessionMiddleware makes sure every request carries a session id in a signed
// cookie. Missing, expired or tampered cookies are replaced with a fresh id.
func SessionMiddleware(secret []byte, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if c, err := r.Cookie(SessionCookieName); err == nil {
				sessionID = parseSessionToken(c.Value, secret)
			}
			if sessionID == "" {
				sessionID = uuid.New().String()
				token, err := signSessionToken(sessionID, secret, ttl)
				if err != nil {
					http.Error(w, "session error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					Secure:   r.TLS != nil,
				})
			}
			ctx := WithSessionID(r.Context(), sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func signSessionToken(sessionID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sid": sessionID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseSessionToken(tokenStr string, secret []byte) string {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	sid, ok := claims["sid"].(string)
	if !ok {
		return ""
	}
	if _, err := uuid.Parse(sid); err != nil {
		return ""
	}
	return sid
}
