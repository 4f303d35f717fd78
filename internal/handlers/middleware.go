package handlers

import (
	"strconv"
	"time"

	"github.com/Su57/stardew/internal/metrics"
	"github.com/Su57/stardew/internal/models"
	"github.com/Su57/stardew/internal/services"
	"github.com/Su57/stardew/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const loginUserKey = "login_user"

type Middleware struct {
	authorizer *services.Authorizer
	metrics    *metrics.Metrics
}

func NewMiddleware(authorizer *services.Authorizer, m *metrics.Metrics) *Middleware {
	return &Middleware{
		authorizer: authorizer,
		metrics:    m,
	}
}

// LoginRequired only demands a live session of an enabled account.
func (m *Middleware) LoginRequired() gin.HandlerFunc {
	return m.require(services.Requirement{})
}

// RoleRequired demands every listed role; super admins always pass.
func (m *Middleware) RoleRequired(roles ...string) gin.HandlerFunc {
	return m.require(services.Requirement{Roles: roles})
}

// PermissionRequired demands the permission key, the wildcard key or a super admin.
func (m *Middleware) PermissionRequired(perm string) gin.HandlerFunc {
	return m.require(services.Requirement{Permission: perm})
}

func (m *Middleware) require(req services.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		loginUser, err := m.authorizer.Authorize(c.Request.Context(), c.GetHeader("Authorization"), req)
		m.metrics.ObserveAuthorization(err)
		if err != nil {
			log.WithFields(log.Fields{
				"path":      c.FullPath(),
				"client_ip": getClientIP(c),
				"reason":    err.Error(),
			}).Warn("request not authorized")
			utils.SendServiceError(c, err)
			return
		}

		c.Set(loginUserKey, loginUser)
		c.Next()
	}
}

// CurrentUser returns the snapshot stored by the authorization middleware.
func CurrentUser(c *gin.Context) (*models.LoginUser, bool) {
	value, ok := c.Get(loginUserKey)
	if !ok {
		return nil, false
	}
	loginUser, ok := value.(*models.LoginUser)
	return loginUser, ok
}

// RequestLogger logs every request through logrus and records HTTP metrics.
func RequestLogger(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		latency := time.Since(start)
		status := c.Writer.Status()

		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(latency.Seconds())

		entry := log.WithFields(log.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    status,
			"latency":   latency.String(),
			"client_ip": getClientIP(c),
		})
		if status >= 500 {
			entry.Error("request failed")
		} else {
			entry.Info("request handled")
		}
	}
}
