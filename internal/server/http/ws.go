package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Jasujung99/echo-note-whisper-app/internal/unread"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
	wsSendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Token auth already gates the route; the app is served cross-origin
	// from the static host.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsOutbound struct {
	Type  string `json:"type"`
	Count int    `json:"count,omitempty"`
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

type wsInbound struct {
	Type string `json:"type"`
}

// handleWS upgrades the connection and streams unread-count updates and
// new-message notifications until the client disconnects.
func (s *Server) handleWS(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no auth"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("ws upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	wsConnectionsActive.Inc()
	defer wsConnectionsActive.Dec()

	ctx := c.Request.Context()
	send := make(chan wsOutbound, wsSendBuffer)

	tracker := unread.NewTracker(userID, s.profiles, s.msgRepo, s.log)
	tracker.OnChange(func(tr unread.Transition) {
		push(send, wsOutbound{Type: "unread", Count: tr.To.Count})
		if tr.NewArrival {
			push(send, wsOutbound{
				Type:  "notification",
				Title: "새 음성 메시지",
				Body:  "새로운 메아리가 도착했습니다.",
			})
		}
	})

	events, cancel := s.hub.Subscribe(userID)
	defer cancel()

	// Initial state: re-derive from the database so a reconnect heals any
	// drift accumulated while offline.
	tracker.Refresh(ctx)

	done := make(chan struct{})
	go s.wsWriteLoop(conn, send, done)

	go func() {
		for ev := range events {
			tracker.HandleInsert(ctx, ev)
		}
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var in wsInbound
		if err := json.Unmarshal(raw, &in); err != nil {
			continue
		}
		switch in.Type {
		case "mark_read":
			tracker.MarkAsRead()
		case "refresh":
			tracker.Refresh(ctx)
		}
	}
	close(done)
}

// wsWriteLoop serializes all writes to the connection and keeps it alive
// with pings.
func (s *Server) wsWriteLoop(conn *websocket.Conn, send <-chan wsOutbound, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// push drops the update when the client cannot keep up; the next refresh
// re-derives the true count.
func push(send chan<- wsOutbound, msg wsOutbound) {
	select {
	case send <- msg:
	default:
	}
}
