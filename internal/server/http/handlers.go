package httpserver

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/Jasujung99/echo-note-whisper-app/internal/audiocheck"
	"github.com/Jasujung99/echo-note-whisper-app/internal/model"
	"github.com/Jasujung99/echo-note-whisper-app/internal/service"
)

type registerRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	InviteCode string `json:"inviteCode" binding:"required"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	userID, err := s.auth.Register(c.Request.Context(), req.Email, req.Password, req.InviteCode)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"userId": userID})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	tok, u, err := s.auth.LoginWithIP(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken": tok.AccessToken,
		"expiresAt":   tok.ExpiresAt.UTC().Format(time.RFC3339),
		"userId":      u.ID.String(),
	})
}

func (s *Server) handleDeleteAccount(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no auth"})
		return
	}
	if err := s.auth.DeleteAccount(c.Request.Context(), userID); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type profileResponse struct {
	UserID          string `json:"userId"`
	Username        string `json:"username"`
	DisplayName     string `json:"displayName"`
	EchoEnabled     bool   `json:"echoEnabled"`
	ReceiveMessages bool   `json:"receiveMessages"`
}

// writeProfile renders the profile with the name other users would see:
// the fixed username, or a fresh random nickname when none is set.
func (s *Server) writeProfile(c *gin.Context, p *model.Profile) {
	c.JSON(http.StatusOK, profileResponse{
		UserID:          p.UserID.String(),
		Username:        p.Username,
		DisplayName:     s.nicknames.DisplayName(c.Request.Context(), p.UserID),
		EchoEnabled:     p.EchoEnabled,
		ReceiveMessages: p.ReceiveMessages,
	})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	userID, _ := userIDFrom(c)
	p, err := s.profilesv.Get(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.writeProfile(c, p)
}

type updateProfileRequest struct {
	Username        *string `json:"username"`
	EchoEnabled     *bool   `json:"echoEnabled"`
	ReceiveMessages *bool   `json:"receiveMessages"`
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	userID, _ := userIDFrom(c)
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	p, err := s.profilesv.Update(c.Request.Context(), userID, service.UpdateProfile{
		Username:        req.Username,
		EchoEnabled:     req.EchoEnabled,
		ReceiveMessages: req.ReceiveMessages,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.writeProfile(c, p)
}

func (s *Server) handleSendMessage(c *gin.Context) {
	userID, _ := userIDFrom(c)

	fh, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing audio file"})
		return
	}
	if fh.Size > audiocheck.MaxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file too large"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, audiocheck.MaxFileSize+1))
	if err != nil {
		s.fail(c, err)
		return
	}

	duration, err := strconv.ParseFloat(c.PostForm("duration"), 64)
	if err != nil || duration <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration"})
		return
	}

	in := service.SendInput{
		Audio:       data,
		Duration:    duration,
		Title:       c.PostForm("title"),
		VoiceEffect: c.PostForm("voiceEffect"),
	}
	if raw := c.PostForm("recipientId"); raw != "" {
		rid, err := uuid.FromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipientId"})
			return
		}
		in.RecipientID = rid
	}

	msg, err := s.messages.Send(c.Request.Context(), userID, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	messagesSentTotal.WithLabelValues(string(msg.Type)).Inc()
	messageAudioBytes.Observe(float64(len(data)))

	c.JSON(http.StatusCreated, gin.H{
		"id":        msg.ID.String(),
		"type":      string(msg.Type),
		"audioUrl":  s.messages.AudioURL(msg.AudioPath),
		"createdAt": msg.CreatedAt.UTC().Format(time.RFC3339),
	})
}

type messageResponse struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	Title           string  `json:"title,omitempty"`
	VoiceEffect     string  `json:"voiceEffect,omitempty"`
	Duration        float64 `json:"duration"`
	CounterpartID   string  `json:"counterpartId,omitempty"`
	Nickname        string  `json:"nickname,omitempty"`
	CounterpartName string  `json:"counterpartName,omitempty"`
	AudioURL        string  `json:"audioUrl"`
	CreatedAt       string  `json:"createdAt"`
}

func (s *Server) handleListMessages(c *gin.Context) {
	userID, _ := userIDFrom(c)

	var mtype model.MessageType
	switch c.Query("type") {
	case "direct":
		mtype = model.MessageDirect
	case "broadcast":
		mtype = model.MessageBroadcast
	case "":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid type"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	views, err := s.messages.List(c.Request.Context(), userID, mtype, limit, offset)
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]messageResponse, 0, len(views))
	for _, v := range views {
		mr := messageResponse{
			ID:              v.Message.ID.String(),
			Type:            string(v.Message.Type),
			Title:           v.Message.Title,
			VoiceEffect:     v.Message.VoiceEffect,
			Duration:        v.Message.Duration,
			Nickname:        v.Nickname,
			CounterpartName: v.CounterpartName,
			AudioURL:        v.AudioURL,
			CreatedAt:       v.Message.CreatedAt.UTC().Format(time.RFC3339),
		}
		if v.CounterpartID != uuid.Nil {
			mr.CounterpartID = v.CounterpartID.String()
		}
		out = append(out, mr)
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

func (s *Server) handleMarkListened(c *gin.Context) {
	userID, _ := userIDFrom(c)
	msgID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}
	if err := s.messages.MarkListened(c.Request.Context(), userID, msgID); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUnread(c *gin.Context) {
	userID, _ := userIDFrom(c)
	n, err := s.messages.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (s *Server) handleAudio(c *gin.Context) {
	path := strings.TrimPrefix(c.Param("path"), "/")
	if path == "" || strings.Contains(path, "..") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid path"})
		return
	}
	blob, err := s.messages.Audio(c.Request.Context(), path)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, blob.ContentType, blob.Data)
}

func (s *Server) handleValidateAudio(c *gin.Context) {
	fh, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing audio file"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, audiocheck.MaxFileSize+1))
	if err != nil {
		s.fail(c, err)
		return
	}
	duration, _ := strconv.ParseFloat(c.PostForm("duration"), 64)

	res, err := audiocheck.Validate(data, duration)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"fileSize": res.FileSize,
		"duration": res.Duration,
		"type":     audiocheck.ContentType(res.Format),
	})
}
