package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Chat send rate limit: per user across REST and WebSocket, 1 msg/s with burst 10.
const (
	chatSendRPS   = 1
	chatSendBurst = 10
)

// ChatSendLimiter limits how fast one user can send messages.
type ChatSendLimiter struct {
	limiter *KeyedLimiter
}

func NewChatSendLimiter() *ChatSendLimiter {
	return &ChatSendLimiter{limiter: NewKeyedLimiter(rate.Limit(chatSendRPS), chatSendBurst, 30*time.Minute)}
}

// Allow consumes one send for userID.
func (c *ChatSendLimiter) Allow(userID uuid.UUID) bool {
	return c.limiter.Allow("user:" + userID.String())
}

// Middleware applies the limit to the authenticated caller. Must run after RequireAuth.
func (c *ChatSendLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := UserIDFromContext(r.Context()); user != uuid.Nil && !c.Allow(user) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "You are sending messages too quickly.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
