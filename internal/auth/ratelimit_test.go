package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterSlidingWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "batch:1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "batch:1")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "batch:2")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute)
	ok, _ = l.Allow(ctx, "batch:1")
	assert.True(t, ok)
}

func TestRedisLimiterFixedWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	l := NewRedisLimiter(client, 2, 15*time.Minute)
	ctx := context.Background()

	for _, want := range []bool{true, true, false} {
		ok, err := l.Allow(ctx, "batch:7")
		require.NoError(t, err)
		assert.Equal(t, want, ok)
	}
	assert.Equal(t, 15*time.Minute, mr.TTL("ratelimit:batch:7"))

	mr.FastForward(15 * time.Minute)
	ok, err := l.Allow(ctx, "batch:7")
	require.NoError(t, err)
	assert.True(t, ok)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	serve := func(h http.Handler, userID int64) int {
		req := httptest.NewRequest(http.MethodPost, "/compatibility/batch", nil)
		if userID != 0 {
			req = req.WithContext(WithUserID(req.Context(), userID))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	limited := RateLimit(NewMemoryLimiter(1, time.Hour), "batch")(next)
	assert.Equal(t, http.StatusOK, serve(limited, 3))
	assert.Equal(t, http.StatusTooManyRequests, serve(limited, 3))
	assert.Equal(t, http.StatusOK, serve(limited, 4))
	assert.Equal(t, http.StatusUnauthorized, serve(limited, 0))

	assert.Equal(t, http.StatusOK, serve(RateLimit(failingLimiter{}, "batch")(next), 3))
	assert.Equal(t, http.StatusOK, serve(RateLimit(nil, "batch")(next), 3))
}
