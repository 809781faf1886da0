// Package httpserver exposes the voice messaging HTTP and WebSocket API.
package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Jasujung99/echo-note-whisper-app/internal/errs"
	"github.com/Jasujung99/echo-note-whisper-app/internal/realtime"
	"github.com/Jasujung99/echo-note-whisper-app/internal/repository"
	"github.com/Jasujung99/echo-note-whisper-app/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth      service.AuthService
	profilesv service.ProfileService
	messages  service.MessageService
	nicknames service.NicknameService

	profiles repository.ProfileRepository
	msgRepo  repository.MessageRepository

	hub     *realtime.Hub
	signKey []byte
	log     *zap.Logger
}

// New constructs a server with injected services. The profile and message
// repositories are needed directly by per-connection unread trackers.
func New(
	auth service.AuthService,
	profilesv service.ProfileService,
	messages service.MessageService,
	nicknames service.NicknameService,
	profiles repository.ProfileRepository,
	msgRepo repository.MessageRepository,
	hub *realtime.Hub,
	signKey []byte,
	log *zap.Logger,
) *Server {
	return &Server{
		auth:      auth,
		profilesv: profilesv,
		messages:  messages,
		nicknames: nicknames,
		profiles:  profiles,
		msgRepo:   msgRepo,
		hub:       hub,
		signKey:   signKey,
		log:       log,
	}
}

// Router builds the gin engine with middleware and all routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(Recover(s.log), Logging(s.log), Metrics())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/api/auth/register", s.handleRegister)
	r.POST("/api/auth/login", s.handleLogin)
	r.POST("/audio/validate", s.handleValidateAudio)

	authed := r.Group("/", Auth(s.signKey))
	authed.DELETE("/api/account", s.handleDeleteAccount)
	authed.GET("/api/profile", s.handleGetProfile)
	authed.PUT("/api/profile", s.handleUpdateProfile)
	authed.POST("/api/messages", s.handleSendMessage)
	authed.GET("/api/messages", s.handleListMessages)
	authed.POST("/api/messages/:id/listen", s.handleMarkListened)
	authed.GET("/api/unread", s.handleUnread)
	authed.GET("/audio/*path", s.handleAudio)
	authed.GET("/ws", s.handleWS)

	return r
}

// fail maps service errors to HTTP statuses, hiding internals.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "bad credentials"})
	case errors.Is(err, errs.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limited"})
	case errors.Is(err, errs.ErrInviteUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "invite code invalid or already used"})
	case errors.Is(err, errs.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		s.log.Error("handler", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}
