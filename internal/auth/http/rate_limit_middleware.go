package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	apperrors "github.com/Coops0/jrnlapp/internal/errors"
	"github.com/Coops0/jrnlapp/internal/httputil"
)

const (
	staleLimiterAge = time.Hour
	cleanupInterval = 5 * time.Minute
)

type authorLimiter struct {
	*rate.Limiter
	seen time.Time
}

// authorLimiters hands out one token bucket per author.
type authorLimiters struct {
	mu      sync.Mutex
	buckets map[uuid.UUID]*authorLimiter
	limit   rate.Limit
	burst   int
}

func newAuthorLimiters(rps float64, burst int) *authorLimiters {
	return &authorLimiters{
		buckets: make(map[uuid.UUID]*authorLimiter),
		limit:   rate.Limit(rps),
		burst:   burst,
	}
}

func (l *authorLimiters) get(author uuid.UUID, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[author]
	if !ok {
		bucket = &authorLimiter{Limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[author] = bucket
	}
	bucket.seen = now
	return bucket.Limiter
}

// evictIdle drops buckets last used before cutoff. An evicted author starts
// again with a full bucket.
func (l *authorLimiters) evictIdle(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for author, bucket := range l.buckets {
		if bucket.seen.Before(cutoff) {
			delete(l.buckets, author)
		}
	}
}

func (l *authorLimiters) runEviction(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.evictIdle(now.Add(-staleLimiterAge))
		}
	}
}

// RateLimitMiddleware throttles each author to rps with the given burst. It
// reads the author set by AuthenticationMiddleware, so it must be mounted
// after it. Idle buckets are evicted until ctx is done.
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	limiters := newAuthorLimiters(rps, burst)
	go limiters.runEviction(ctx, cleanupInterval)

	return func(c *gin.Context) {
		author, ok := GetAuthor(c.Request.Context())
		if !ok {
			logger.Error("rate limit middleware mounted without authentication")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		now := time.Now()
		reservation := limiters.get(author.ID, now).ReserveN(now, 1)
		delay := reservation.DelayFrom(now)
		if reservation.OK() && delay == 0 {
			c.Next()
			return
		}
		reservation.CancelAt(now)

		retryAfter := int(math.Ceil(delay.Seconds()))
		if !reservation.OK() || retryAfter < 1 {
			retryAfter = 1
		}

		logger.Debug("rate limit exceeded",
			slog.String("author_id", author.ID.String()),
			slog.Int("retry_after", retryAfter))

		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, httputil.ErrorResponse{
			Error:   "rate_limit_exceeded",
			Message: "Too many requests. Please retry after the specified delay.",
		})
	}
}
