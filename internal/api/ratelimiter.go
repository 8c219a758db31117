package api

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/eugenenazirov/cartcheck/internal/metrics"
)

// Route labels of the judging endpoints, as counted by the recorder.
const (
	routeSubmissions = "submissions"
	routeValidate    = "validate"
)

// judgeLimiter decides whether one more solution may be judged right now.
type judgeLimiter interface {
	Allow() bool
}

// judgeBucket is a token bucket shared by every judging route.
type judgeBucket struct {
	limiter *rate.Limiter
}

func newJudgeBucket(perSecond float64, burst int) *judgeBucket {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &judgeBucket{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (b *judgeBucket) Allow() bool {
	if b == nil || b.limiter == nil {
		return true
	}
	return b.limiter.Allow()
}

// throttleJudging answers 429 once the limiter runs dry and counts the rejection under route.
// Reads of problems and health never pass through it.
func throttleJudging(route string, limiter judgeLimiter, recorder *metrics.Recorder, next http.HandlerFunc) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter.Allow() {
			next(w, r)
			return
		}
		recorder.ObserveThrottled(route)
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "Too many submissions",
			fmt.Sprintf("%s judging is rate limited, please retry shortly", route))
	})
}
