package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_FixedWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	ctx := context.Background()
	for i, want := range []bool{true, true, false} {
		got, err := rl.Allow(ctx, "user:a")
		require.NoError(t, err)
		assert.Equal(t, want, got, "hit %d", i+1)
	}

	other, _ := rl.Allow(ctx, "user:b")
	assert.True(t, other, "keys are independent")

	now = now.Add(2 * time.Minute)
	again, _ := rl.Allow(ctx, "user:a")
	assert.True(t, again, "window resets")

	now = now.Add(5 * time.Minute)
	rl.cleanup()
	assert.Empty(t, rl.visitors)
}

func TestRateLimiter_RetriesDoNotExtendWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		ok, _ := rl.Allow(ctx, "user:a")
		require.True(t, ok)
	}

	now = now.Add(50 * time.Second)
	ok, _ := rl.Allow(ctx, "user:a")
	assert.False(t, ok, "still inside the first window")

	now = now.Add(50 * time.Second)
	ok, _ = rl.Allow(ctx, "user:a")
	assert.True(t, ok, "a retry every 50s must not keep the client blocked")
}

func expectHit(mock redismock.ClientMock, key string, count int64) {
	mock.ExpectTxPipeline()
	mock.ExpectIncr(key).SetVal(count)
	mock.ExpectExpireNX(key, time.Minute).SetVal(count == 1)
	mock.ExpectTxPipelineExec()
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rl := NewRedisRateLimiter(db, "generate", 2, time.Minute)
	key := "rate:generate:user:a"

	expectHit(mock, key, 1)
	expectHit(mock, key, 2)
	expectHit(mock, key, 3)

	ctx := context.Background()

	ok, err := rl.Allow(ctx, "user:a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rl.Allow(ctx, "user:a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rl.Allow(ctx, "user:a")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRateLimiter_ErrorIsReported(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rl := NewRedisRateLimiter(db, "generate", 2, time.Minute)

	mock.ExpectTxPipeline()
	mock.ExpectIncr("rate:generate:user:a").SetErr(errors.New("connection refused"))

	_, err := rl.Allow(context.Background(), "user:a")
	assert.Error(t, err)
}

func TestRedisRateLimiter_FailedExpireIsRetried(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rl := NewRedisRateLimiter(db, "generate", 2, time.Minute)
	key := "rate:generate:user:a"
	ctx := context.Background()

	mock.ExpectTxPipeline()
	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpireNX(key, time.Minute).SetErr(errors.New("timeout"))

	_, err := rl.Allow(ctx, "user:a")
	require.Error(t, err)

	// The key still has no TTL, so the next hit sets it.
	mock.ExpectTxPipeline()
	mock.ExpectIncr(key).SetVal(2)
	mock.ExpectExpireNX(key, time.Minute).SetVal(true)
	mock.ExpectTxPipelineExec()

	ok, err := rl.Allow(ctx, "user:a")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.err
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("rejects over the limit", func(t *testing.T) {
		l := &stubLimiter{allowed: false}
		req := httptest.NewRequest(http.MethodPost, "/api/generate-quiz", nil)
		rr := httptest.NewRecorder()

		RateLimit(l)(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.JSONEq(t, `{"message":"Too many requests"}`, rr.Body.String())
	})

	t.Run("fails open on limiter error", func(t *testing.T) {
		l := &stubLimiter{allowed: false, err: errors.New("redis down")}
		req := httptest.NewRequest(http.MethodPost, "/api/generate-quiz", nil)
		rr := httptest.NewRecorder()

		RateLimit(l)(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("keys by user when authenticated", func(t *testing.T) {
		l := &stubLimiter{allowed: true}
		id := uuid.New()
		req := httptest.NewRequest(http.MethodPost, "/api/generate-quiz", nil)
		req = req.WithContext(context.WithValue(req.Context(), UserIDKey, id))
		rr := httptest.NewRecorder()

		RateLimit(l)(next).ServeHTTP(rr, req)

		require.Len(t, l.keys, 1)
		assert.Equal(t, "user:"+id.String(), l.keys[0])
	})

	t.Run("keys by ip otherwise", func(t *testing.T) {
		l := &stubLimiter{allowed: true}
		req := httptest.NewRequest(http.MethodPost, "/api/generate-quiz", nil)
		req.RemoteAddr = "10.0.0.7:5555"
		rr := httptest.NewRecorder()

		RateLimit(l)(next).ServeHTTP(rr, req)

		require.Len(t, l.keys, 1)
		assert.Equal(t, "ip:10.0.0.7", l.keys[0])
	})
}
