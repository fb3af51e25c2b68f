package middleware

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/cattus-org/cattus-api/pkg/appenv"
	"github.com/cattus-org/cattus-api/types"
)

// Token-bucket limiting, keyed per user when the request is authenticated and
// per client IP otherwise. Buckets idle for staleAfter are evicted by a
// background sweep so the map cannot grow without bound.
type limiterMap struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	staleAfter time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterMap(staleAfter time.Duration) *limiterMap {
	m := &limiterMap{
		buckets:    make(map[string]*bucket),
		staleAfter: staleAfter,
	}
	go m.sweep()
	return m
}

func (m *limiterMap) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-m.staleAfter)
		m.mu.Lock()
		for k, b := range m.buckets {
			if b.lastSeen.Before(cutoff) {
				delete(m.buckets, k)
			}
		}
		m.mu.Unlock()
	}
}

func (m *limiterMap) allow(key string, r rate.Limit, burst int) bool {
	m.mu.Lock()
	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(r, burst)}
		m.buckets[key] = b
	}
	b.lastSeen = time.Now()
	m.mu.Unlock()
	return b.limiter.Allow()
}

func rateFromEnv() (rate.Limit, int) {
	rps, burst := 5.0, 20
	if f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")), 64); err == nil && f > 0 {
		rps = f
	}
	if i, err := strconv.Atoi(strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST"))); err == nil && i > 0 {
		burst = i
	}
	return rate.Limit(rps), burst
}

// exemptIPs parses RATE_LIMIT_WHITELIST, a comma-separated list of IPs and
// CIDR ranges that bypass the limiter (load balancer health probes, the
// detection pipeline hosts).
type exemptIPs struct {
	ips  []net.IP
	nets []*net.IPNet
}

func exemptFromEnv() exemptIPs {
	var e exemptIPs
	for _, part := range strings.Split(os.Getenv("RATE_LIMIT_WHITELIST"), ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		if ip := net.ParseIP(p); ip != nil {
			e.ips = append(e.ips, ip)
			continue
		}
		if _, n, err := net.ParseCIDR(p); err == nil {
			e.nets = append(e.nets, n)
		}
	}
	return e
}

func (e exemptIPs) contains(clientIP string) bool {
	ip := net.ParseIP(clientIP)
	if ip == nil {
		return false
	}
	for _, w := range e.ips {
		if w.Equal(ip) {
			return true
		}
	}
	for _, n := range e.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func limitingDisabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED"))) {
	case "0", "false", "no":
		return true
	}
	return appenv.IsTest()
}

func tooManyRequests(c *gin.Context) {
	c.Header("Retry-After", "1")
	c.JSON(http.StatusTooManyRequests, types.NewErrorResponse("RATE_LIMIT_EXCEEDED", "Too many requests"))
	c.Abort()
}

// RateLimitMiddleware is the global limiter. Preflight requests and /health
// are never limited. Tuning: RATE_LIMIT_RPS, RATE_LIMIT_BURST,
// RATE_LIMIT_WHITELIST; RATE_LIMIT_ENABLED=false turns it off.
func RateLimitMiddleware() gin.HandlerFunc {
	if limitingDisabled() {
		return func(c *gin.Context) { c.Next() }
	}

	r, burst := rateFromEnv()
	exempt := exemptFromEnv()
	buckets := newLimiterMap(10 * time.Minute)

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		clientIP := c.ClientIP()
		if exempt.contains(clientIP) {
			c.Next()
			return
		}
		key := "ip:" + clientIP
		if uid := c.GetInt64("userId"); uid != 0 {
			key = "uid:" + strconv.FormatInt(uid, 10)
		}
		if !buckets.allow(key, r, burst) {
			tooManyRequests(c)
			return
		}
		c.Next()
	}
}

// RateLimitAuthMiddleware guards login, onboarding and the password-recovery
// endpoints with a much tighter per-IP budget than the global limiter, so
// credential stuffing cannot hide inside the general allowance.
func RateLimitAuthMiddleware() gin.HandlerFunc {
	if limitingDisabled() {
		return func(c *gin.Context) { c.Next() }
	}
	buckets := newLimiterMap(10 * time.Minute)
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if !buckets.allow("auth:"+c.ClientIP(), rate.Limit(1), 5) {
			tooManyRequests(c)
			return
		}
		c.Next()
	}
}
