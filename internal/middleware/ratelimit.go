// internal/middleware/ratelimit.go
package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter ограничивает количество запросов с одного IP.
// Явный объект вместо пакетного состояния: у каждого маршрута свой экземпляр.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rps     float64
	burst   int
}

// NewRateLimiter создает лимитер и запускает фоновую очистку неактивных IP.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		rps:     rps,
		burst:   burst,
	}
	go rl.cleanupClients()
	return rl
}

func (rl *RateLimiter) cleanupClients() {
	for {
		time.Sleep(10 * time.Minute)

		rl.mu.Lock()
		for ip, client := range rl.clients {
			if time.Since(client.lastSeen) > 15*time.Minute {
				delete(rl.clients, ip)
				slog.Debug("Удален лимитер для неактивного IP", "ip", ip)
			}
		}
		rl.mu.Unlock()
	}
}

// clientIP извлекает IP клиента. За прокси адрес приходит в X-Forwarded-For
// или X-Real-IP. RemoteAddr разбирается через net.SplitHostPort: адрес может
// быть IPv6 вида "[::1]:1234".
func clientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		rl.mu.Lock()
		clientData, found := rl.clients[ip]
		if !found {
			clientData = &clientLimiter{
				limiter: rate.NewLimiter(rate.Limit(rl.rps), rl.burst),
			}
			rl.clients[ip] = clientData
			slog.Debug("Создан новый лимитер", "ip", ip, "rps", rl.rps, "burst", rl.burst)
		}
		clientData.lastSeen = time.Now()
		limiterInstance := clientData.limiter
		rl.mu.Unlock()

		if !limiterInstance.Allow() {
			slog.Warn("Превышен лимит запросов (Rate Limit)", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Too many requests, please try again later"})
			return
		}

		next.ServeHTTP(w, r)
	})
}
