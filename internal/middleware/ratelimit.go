package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const (
	clientTTL       = 10 * time.Minute
	cleanupInterval = time.Minute
)

// Tier holds the token-bucket parameters for one class of client.
type Tier struct {
	// RPS is the sustained refill rate in tokens per second.
	RPS float64
	// Burst is the bucket capacity.
	Burst int
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter maintains one token bucket per client key. Authenticated
// clients are keyed by user ID and get the Authenticated tier; everyone else
// is keyed by remote IP and gets the Anonymous tier. The bucket table is the
// only shared mutable state and is guarded by mu.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	authenticated Tier
	anonymous     Tier

	// now is swappable for tests.
	now func() time.Time
}

// NewRateLimiter creates a RateLimiter with the given tiers and starts a
// background sweep that evicts idle buckets until ctx is cancelled.
func NewRateLimiter(ctx context.Context, authenticated, anonymous Tier) *RateLimiter {
	rl := &RateLimiter{
		buckets:       make(map[string]*bucket),
		authenticated: authenticated,
		anonymous:     anonymous,
		now:           time.Now,
	}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.evictIdle()
			case <-ctx.Done():
				return
			}
		}
	}()

	return rl
}

func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-clientTTL)
	for key, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

// Acquire consumes one token from the client's bucket. It never blocks:
// the result is an immediate allow or deny. On deny, retryAfter is the time
// until at least one token is available. remaining reports whole tokens left
// after this call.
func (rl *RateLimiter) Acquire(key string, tier Tier) (allowed bool, remaining int, retryAfter time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(tier.RPS), tier.Burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	rl.mu.Unlock()

	if !b.limiter.AllowN(now, 1) {
		// Reserve to learn the wait, then cancel so no token is consumed.
		r := b.limiter.ReserveN(now, 1)
		retryAfter = r.DelayFrom(now)
		r.CancelAt(now)
		return false, 0, retryAfter
	}

	return true, int(b.limiter.TokensAt(now)), 0
}

// ClientKey derives the limiter key for a request: the authenticated user if
// the auth middleware ran before us, the remote IP otherwise.
func ClientKey(c *fiber.Ctx) (key string, authenticated bool) {
	if uid := c.Locals("userID"); uid != nil {
		return fmt.Sprintf("user:%v", uid), true
	}
	return "ip:" + c.IP(), false
}

// Limit returns a Fiber middleware enforcing the limiter's token buckets.
// Every response carries X-RateLimit-* headers; a denied request is answered
// with 429 and a Retry-After hint.
func (rl *RateLimiter) Limit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, authenticated := ClientKey(c)
		tier := rl.anonymous
		if authenticated {
			tier = rl.authenticated
		}

		allowed, remaining, retryAfter := rl.Acquire(key, tier)

		c.Set("X-RateLimit-Limit", strconv.Itoa(tier.Burst))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			resetSeconds := int(math.Ceil(retryAfter.Seconds()))
			if resetSeconds < 1 {
				resetSeconds = 1
			}
			c.Set("X-RateLimit-Reset", strconv.Itoa(resetSeconds))
			c.Set("Retry-After", strconv.Itoa(resetSeconds))
			return models.RespondWithError(c, models.NewRateLimitedError(resetSeconds))
		}

		c.Set("X-RateLimit-Reset", "0")
		return c.Next()
	}
}
