package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// клиенты, не приходившие дольше этого срока, забываются
const clientTTL = 3 * time.Minute

type clientInfo struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit ограничивает частоту запросов с одного IP: rpm запросов в минуту
// с допустимым всплеском burst.
func RateLimit(rpm, burst int) func(http.Handler) http.Handler {
	clients := make(map[string]*clientInfo)
	var mtx sync.Mutex
	lastSweep := time.Now()
	limit := rate.Limit(float64(rpm) / 60)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			now := time.Now()

			mtx.Lock()
			if now.Sub(lastSweep) > clientTTL {
				for key, info := range clients {
					if now.Sub(info.lastSeen) > clientTTL {
						delete(clients, key)
					}
				}
				lastSweep = now
			}

			info, exists := clients[ip]
			if !exists {
				info = &clientInfo{limiter: rate.NewLimiter(limit, burst)}
				clients[ip] = info
			}
			info.lastSeen = now
			reservation := info.limiter.ReserveN(now, 1)
			mtx.Unlock()

			if !reservation.OK() || reservation.DelayFrom(now) > 0 {
				retryAfter := 0
				if reservation.OK() {
					retryAfter = int(math.Ceil(reservation.DelayFrom(now).Seconds()))
					reservation.CancelAt(now)
				}

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.WriteHeader(http.StatusTooManyRequests)

				_ = json.NewEncoder(w).Encode(map[string]any{
					"error":       "RATE_LIMIT_EXCEEDED",
					"message":     "Слишком много запросов. Попробуйте позже.",
					"retry_after": retryAfter,
					"request_id":  GetRequestID(r.Context()),
				})
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rpm))
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
