package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/mrops-br/products-crud-api/internal/domain"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/http/response"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Checker decides whether a client may call an endpoint right now
type Checker interface {
	Check(client, endpoint string) domain.Decision
}

// RateLimiter turns limiter decisions into HTTP responses
type RateLimiter struct {
	checker   Checker
	keyFn     KeyFunc
	stats     domain.StatsStore
	decisions metric.Int64Counter
	logger    *slog.Logger
}

// NewRateLimiter builds the middleware factory. stats may be nil.
func NewRateLimiter(checker Checker, keyFn KeyFunc, stats domain.StatsStore, meter metric.Meter, logger *slog.Logger) *RateLimiter {
	if keyFn == nil {
		keyFn = DefaultKeyFunc("", false)
	}
	decisions, _ := meter.Int64Counter(
		"ratelimit.decisions",
		metric.WithDescription("Rate limiter decisions by endpoint and result"),
	)
	return &RateLimiter{
		checker:   checker,
		keyFn:     keyFn,
		stats:     stats,
		decisions: decisions,
		logger:    logger,
	}
}

// Limit guards next with the quota of endpoint. A rejected request gets 429
// and never reaches next.
func (rl *RateLimiter) Limit(endpoint string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			client := rl.keyFn(r)
			dec := rl.checker.Check(client, endpoint)

			result := "allowed"
			if !dec.Allowed {
				result = "rejected"
			}
			rl.decisions.Add(ctx, 1, metric.WithAttributes(
				attribute.String("endpoint", endpoint),
				attribute.String("result", result),
			))

			if rl.stats != nil {
				ev := domain.StatsEvent{Key: client, Endpoint: endpoint, Allowed: dec.Allowed, At: time.Now()}
				if err := rl.stats.Record(ctx, ev); err != nil {
					rl.logger.WarnContext(ctx, "Failed to record rate limit stats",
						slog.String("endpoint", endpoint),
						slog.String("error", err.Error()),
					)
				}
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(dec.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))

			if !dec.Allowed {
				rl.logger.WarnContext(ctx, "Rate limit exceeded",
					slog.String("client", client),
					slog.String("endpoint", endpoint),
					slog.Duration("retry_after", dec.RetryAfter),
				)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(dec.RetryAfter)))
				status, detail := response.FromError(domain.ErrRateLimited)
				response.Error(w, status, detail)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// retryAfterSeconds rounds up so a client never retries inside the window
func retryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
