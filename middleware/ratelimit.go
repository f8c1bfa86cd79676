package middleware

import (
	"sync"
	"time"

	"faberlic-mining/services"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const maxTrackedClients = 10000

type clientLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func (l *clientLimiters) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxTrackedClients {
			l.limiters = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

// RateLimitMiddleware allows perMinute requests per client IP, with the
// whole minute's allowance available as a burst.
func RateLimitMiddleware(perMinute int) fiber.Handler {
	limiters := &clientLimiters{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}

	return func(c *fiber.Ctx) error {
		if !limiters.get(c.IP()).Allow() {
			return WriteError(c, services.ErrTooManyRequests)
		}
		return c.Next()
	}
}
