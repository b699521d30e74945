package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/AnshRaj112/serenify-care/internal/models"
	"github.com/AnshRaj112/serenify-care/internal/services"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequireAuth(t *testing.T) {
	sessions := services.NewSessionManager("secret", time.Hour)
	userID := uuid.New()
	token, _, err := sessions.Issue(userID, models.RoleStudent, "a@b.co")
	require.NoError(t, err)

	var seen uuid.UUID
	h := RequireAuth(sessions.Verify)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["success"])

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, seen)
}

func TestOptionalAuthIgnoresBadToken(t *testing.T) {
	sessions := services.NewSessionManager("secret", time.Hour)
	called := false
	h := OptionalAuth(sessions.Verify)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, uuid.Nil, UserIDFromContext(r.Context()))
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)
}

func TestRequireSelf(t *testing.T) {
	sessions := services.NewSessionManager("secret", time.Hour)
	me := uuid.New()
	token, _, err := sessions.Issue(me, models.RoleTherapist, "t@b.co")
	require.NoError(t, err)

	r := chi.NewRouter()
	r.With(RequireAuth(sessions.Verify), RequireSelf("id")).Get("/users/{id}", okHandler)

	cases := []struct {
		name   string
		target string
		want   int
	}{
		{"self", me.String(), http.StatusOK},
		{"other", uuid.NewString(), http.StatusForbidden},
		{"malformed", "not-a-uuid", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/"+tc.target, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestKeyedLimiterBurstAndEviction(t *testing.T) {
	l := NewKeyedLimiter(rate.Every(time.Hour), 2, time.Minute)
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	l.evictIdle(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 0, l.size())
}

func TestIPRateLimitReturns429(t *testing.T) {
	h := IPRateLimit(NewKeyedLimiter(rate.Every(time.Hour), 1, time.Minute), "slow down")(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "slow down", decodeBody(t, rec)["message"])
}

func TestChatSendLimiterIsPerUser(t *testing.T) {
	c := NewChatSendLimiter()
	a, b := uuid.New(), uuid.New()
	for i := 0; i < chatSendBurst; i++ {
		require.True(t, c.Allow(a))
	}
	assert.False(t, c.Allow(a))
	assert.True(t, c.Allow(b))
}

func TestRedisRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	l := NewRedisRateLimiter(client, logrus.New())
	l.limit = 2
	h := l.Middleware(okHandler)

	serve := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/therapists", nil))
		return rec
	}

	first := serve()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, serve().Code)
	assert.Equal(t, http.StatusTooManyRequests, serve().Code)
	assert.True(t, mr.Exists(BlockedIPKeyPrefix+"192.0.2.1"))

	// blocked even after the window resets
	mr.FastForward(RateLimitWindow + time.Second)
	assert.Equal(t, http.StatusTooManyRequests, serve().Code)
}

func TestRedisRateLimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	log, _ := test.NewNullLogger()
	rec := httptest.NewRecorder()
	NewRedisRateLimiter(client, log).Middleware(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	NewRedisRateLimiter(nil, log).Middleware(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestMetricsUseRoutePattern(t *testing.T) {
	m := NewMetrics("test")
	r := chi.NewRouter()
	r.Use(m.Instrument)
	r.Get("/api/appointments/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/appointments/"+uuid.NewString(), nil))
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/appointments/{id}", "404")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "test_http_requests_total")
}

func TestRequestLoggerLevels(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := chi.NewRouter()
	r.Use(RequestLogger(log))
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) })
	r.Get("/ok", okHandler)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "/boom", hook.LastEntry().Data["route"])

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, 200, hook.LastEntry().Data["status"])
}
