// Package ratelimit throttles credential endpoints per client address so a
// single source cannot grind through passwords or mint reset codes at will.
package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/user/entreflow-go/apperror"
	"github.com/user/entreflow-go/auth"
)

// staleAfter is how long an idle client's limiter survives before the
// cleanup loop drops it.
const staleAfter = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client address.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	stopCh  chan struct{}
}

// New creates a limiter allowing perMinute events with the given burst per
// client and starts a cleanup loop for idle entries. Call Stop on shutdown.
func New(perMinute, burst int) *Limiter {
	l := &Limiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		stopCh:  make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Stop ends the cleanup loop.
func (l *Limiter) Stop() {
	close(l.stopCh)
}

// Allow reports whether the client may proceed.
func (l *Limiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.clients[client]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// Middleware rejects over-limit requests with 429 before they reach the
// handler. The client key is the remote address with the port stripped, so
// RealIP must run earlier in the chain for proxied deployments.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientKey(r)
		if !l.Allow(client) {
			slog.Warn("rate limit exceeded",
				slog.String("client", client),
				slog.String("path", r.URL.Path),
			)
			auth.WriteJSON(w, http.StatusTooManyRequests, apperror.ErrorResponse{
				OK:    false,
				Error: "Too many requests",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCh:
			return
		}
	}
}

func (l *Limiter) cleanup() {
	cutoff := time.Now().Add(-staleAfter)
	l.mu.Lock()
	for client, entry := range l.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(l.clients, client)
		}
	}
	l.mu.Unlock()
}
