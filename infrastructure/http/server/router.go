// Package server exposes the relay over HTTP: the websocket endpoint,
// account creation and login, and read-only debug endpoints.
package server

import (
	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/observability"
	"chat-relay/services"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	Log        *slog.Logger
	WebSocket  http.Handler
	Auth       services.IAuthService
	Relay      contract.RelayInspector
	Monitoring *observability.MonitoringManager
	// Tokens, when set, protects the debug endpoints with a bearer token.
	Tokens *auth.TokenIssuer
}

type handlers struct {
	log        *slog.Logger
	auth       services.IAuthService
	relay      contract.RelayInspector
	monitoring *observability.MonitoringManager
}

func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(deps.Log))

	h := handlers{log: deps.Log, auth: deps.Auth, relay: deps.Relay, monitoring: deps.Monitoring}

	router.GET("/healthz", h.health)
	router.GET("/ws", gin.WrapH(deps.WebSocket))
	router.POST("/signup", h.signup)
	router.POST("/login", h.login)

	debug := router.Group("/debug")
	if deps.Tokens != nil {
		debug.Use(auth.RequireToken(deps.Tokens))
	}
	debug.GET("/stats", h.stats)
	debug.GET("/presence", h.presence)

	return router
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (h handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h handlers) signup(c *gin.Context) {
	var req auth.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	token, err := h.auth.Signup(req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tokenResponse{Token: token.String()})
}

func (h handlers) login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	token, err := h.auth.Login(req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: token.String()})
}

// respondError hides internal errors behind their status text.
func (h handlers) respondError(c *gin.Context, err error) {
	status := errors.MapToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error("Request failed", "path", c.FullPath(), "error", err)
		message = http.StatusText(status)
	}
	c.JSON(status, errorResponse{Error: message})
}

type statsResponse struct {
	Relay      domain.RelayStats             `json:"relay"`
	Monitoring observability.MonitoringStats `json:"monitoring"`
}

func (h handlers) stats(c *gin.Context) {
	c.JSON(http.StatusOK, statsResponse{
		Relay:      h.relay.Stats(),
		Monitoring: h.monitoring.GetLatest(),
	})
}

func (h handlers) presence(c *gin.Context) {
	users := h.relay.Presence()
	if users == nil {
		users = []domain.Identity{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
