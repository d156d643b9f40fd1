package server

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourfuture/platform/internal/apperr"
	"github.com/yourfuture/platform/internal/auth"
	"github.com/yourfuture/platform/internal/ratelimit"
	"github.com/yourfuture/platform/pkg/metrics"
)

const sessionKey = "session"

// sessionFrom returns the authenticated session stored by the auth
// middleware, or nil for anonymous requests.
func sessionFrom(c *gin.Context) *auth.Session {
	value, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := value.(*auth.Session)
	return session
}

// metricsMiddleware records request counters against the route
// template, not the raw path, to keep label cardinality bounded.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.RecordRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// authOptional verifies a bearer token when one is supplied. Requests
// without a token pass through anonymous; a supplied but broken token
// still fails so clients learn their session is dead.
func (s *Server) authOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		session, err := s.tokens.Verify(token)
		if err != nil {
			s.failToken(c, err)
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// authRequired rejects requests that did not authenticate. It runs
// after authOptional, which already verified any supplied token.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionFrom(c) == nil {
			s.fail(c, apperr.NewAuthentication("authorization token is missing"))
			return
		}
		c.Next()
	}
}

// adminRequired layers on top of authRequired.
func (s *Server) adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sessionFrom(c).IsAdmin() {
			s.fail(c, apperr.NewAuthorization("admin rights required"))
			return
		}
		c.Next()
	}
}

func (s *Server) failToken(c *gin.Context, err error) {
	if errors.Is(err, auth.ErrTokenExpired) {
		s.fail(c, apperr.NewAuthentication("token has expired"))
		return
	}
	s.fail(c, apperr.NewMalformedToken("token could not be parsed"))
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	token := strings.TrimPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)

	return token, token != ""
}

// rateLimitMiddleware enforces the per-caller sliding window.
// Authenticated callers are keyed by user id, anonymous ones by client
// IP.
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil || s.rules == nil || !s.rules.Enabled() {
			c.Next()
			return
		}

		var key string
		if session := sessionFrom(c); session != nil {
			if s.rules.IsWhitelisted(session.UserID) {
				c.Next()
				return
			}
			key = ratelimit.UserKey(session.UserID)
		} else {
			key = ratelimit.IPKey(c.ClientIP())
		}

		limit, window := s.rules.PerUserLimit()
		result, err := s.limiter.Check(c.Request.Context(), key, limit, window)
		if err != nil {
			if errors.Is(err, ratelimit.ErrLimitExceeded) {
				c.AbortWithStatusJSON(429, gin.H{"error": "too many requests, slow down"})
				return
			}
			// Limiter infrastructure failure must not take requests down.
			c.Next()
			return
		}

		if !result.Allowed {
			c.AbortWithStatusJSON(429, gin.H{"error": "too many requests, slow down"})
			return
		}

		c.Next()
	}
}
