package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
)

// newRateLimitedRouter authenticates every request as whichever author the
// X-Author header names.
func newRateLimitedRouter(t *testing.T, rps float64, burst int) *gin.Engine {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if id, err := uuid.Parse(c.GetHeader("X-Author")); err == nil {
			author := entriesDomain.NewAuthor(id, "UTC")
			c.Request = c.Request.WithContext(WithAuthor(c.Request.Context(), author))
		}
		c.Next()
	})
	router.Use(RateLimitMiddleware(ctx, rps, burst, createTestLogger()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func doRequest(router *gin.Engine, authorID uuid.UUID) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Author", authorID.String())
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	router := newRateLimitedRouter(t, 10, 20)
	authorID := uuid.New()

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router, authorID).Code)
	}
}

func TestRateLimitMiddleware_BlocksRequestsExceedingBurst(t *testing.T) {
	router := newRateLimitedRouter(t, 0.5, 2)
	authorID := uuid.New()

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, doRequest(router, authorID).Code)
	}

	w := doRequest(router, authorID)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")

	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retryAfter, 1)
}

func TestRateLimitMiddleware_AuthorsAreIndependent(t *testing.T) {
	router := newRateLimitedRouter(t, 0.1, 1)
	first, second := uuid.New(), uuid.New()

	assert.Equal(t, http.StatusOK, doRequest(router, first).Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, first).Code)
	assert.Equal(t, http.StatusOK, doRequest(router, second).Code)
}

func TestRateLimitMiddleware_RequiresAuthor(t *testing.T) {
	router := newRateLimitedRouter(t, 10, 10)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthorLimiters_EvictIdle(t *testing.T) {
	limiters := newAuthorLimiters(1, 1)
	active, idle := uuid.New(), uuid.New()
	now := time.Now()

	limiters.get(idle, now.Add(-2*staleLimiterAge))
	limiters.get(active, now)

	limiters.evictIdle(now.Add(-staleLimiterAge))

	assert.Contains(t, limiters.buckets, active)
	assert.NotContains(t, limiters.buckets, idle)
}

func TestAuthorLimiters_SameBucketPerAuthor(t *testing.T) {
	limiters := newAuthorLimiters(1, 1)
	authorID := uuid.New()

	assert.Same(t, limiters.get(authorID, time.Now()), limiters.get(authorID, time.Now()))
	assert.NotSame(t, limiters.get(authorID, time.Now()), limiters.get(uuid.New(), time.Now()))
}

func TestAuthorLimiters_EvictionStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	limiters := newAuthorLimiters(1, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		limiters.runEviction(ctx, time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup goroutine did not stop")
	}
}
