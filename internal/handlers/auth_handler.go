package handlers

import (
	"net/http"
	"strings"

	"github.com/Su57/stardew/internal/metrics"
	"github.com/Su57/stardew/internal/models"
	"github.com/Su57/stardew/internal/services"
	"github.com/Su57/stardew/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type AuthHandler struct {
	authService *services.AuthService
	middleware  *Middleware
	metrics     *metrics.Metrics
}

func NewAuthHandler(authService *services.AuthService, middleware *Middleware, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		middleware:  middleware,
		metrics:     m,
	}
}

func (a *AuthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/captcha", a.Captcha)
	router.POST("/login", a.Login)
	router.POST("/logout", a.middleware.LoginRequired(), a.Logout)
	router.GET("/me", a.middleware.LoginRequired(), a.Me)
}

func (a *AuthHandler) Captcha(c *gin.Context) {
	captcha, err := a.authService.CreateCaptcha(c.Request.Context())
	if err != nil {
		log.Errorf("failed to create captcha: %v", err)
		utils.SendServiceError(c, err)
		return
	}

	a.metrics.CaptchasIssuedTotal.Inc()
	utils.SendSuccess(c, http.StatusOK, captcha)
}

// Login handles user authentication
func (a *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "INVALID_REQUEST_FORMAT", err.Error())
		return
	}

	token, err := a.authService.Login(c.Request.Context(), &req)
	a.metrics.ObserveLogin(err)
	if err != nil {
		log.WithFields(log.Fields{
			"email":     req.Email,
			"client_ip": getClientIP(c),
		}).Warnf("login failed: %v", err)
		utils.SendServiceError(c, err)
		return
	}

	log.WithFields(log.Fields{"email": req.Email, "client_ip": getClientIP(c)}).Info("login succeeded")
	utils.SendSuccess(c, http.StatusOK, token)
}

func (a *AuthHandler) Logout(c *gin.Context) {
	loginUser, ok := CurrentUser(c)
	if !ok {
		utils.SendServiceError(c, models.ErrUnauthenticated)
		return
	}

	if err := a.authService.Logout(c.Request.Context(), loginUser); err != nil {
		log.Errorf("failed to logout session %s: %v", loginUser.SessionID, err)
		utils.SendServiceError(c, err)
		return
	}

	utils.SendMessage(c, http.StatusOK, "logged out")
}

func (a *AuthHandler) Me(c *gin.Context) {
	loginUser, ok := CurrentUser(c)
	if !ok {
		utils.SendServiceError(c, models.ErrUnauthenticated)
		return
	}
	utils.SendSuccess(c, http.StatusOK, loginUser)
}

// getClientIP extracts client IP address
func getClientIP(c *gin.Context) string {
	// Check X-Forwarded-For header first (for load balancers/proxies)
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		if ips := strings.Split(xff, ","); len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		return xri
	}

	return c.ClientIP()
}
