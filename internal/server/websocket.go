package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/satwatch/satwatch/internal/alert"
	"github.com/satwatch/satwatch/internal/telemetry"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second

	// sendBuffer bounds the per-client outbound queue. A client that falls
	// behind loses messages rather than stalling the simulation tick.
	sendBuffer = 64
)

// WebSocket message types sent to clients.
const (
	MessageTypeTelemetry = "telemetry"
	MessageTypeAlert     = "alert"
)

// WSMessage is one frame on the live stream.
type WSMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// defaultOrigins are the development origins permitted when no allow list
// is configured.
var defaultOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// newUpgrader builds a websocket upgrader enforcing the origin allow list.
// An empty list falls back to the development defaults; "*" allows any
// origin. Requests without an Origin header (non-browser clients) are
// always allowed.
func newUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(allowedOrigins, r.Header.Get("Origin"))
		},
	}
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return true
	}
	if len(allowed) == 0 {
		allowed = defaultOrigins
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

// handleWebSocket upgrades the connection and streams every telemetry
// sample and alert to the client until it disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	up := newUpgrader(s.cfg.Server.AllowedOrigins)
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	send := make(chan WSMessage, sendBuffer)
	unsubSamples := s.bus.SubscribeSamples(func(sample telemetry.Sample) {
		select {
		case send <- WSMessage{Type: MessageTypeTelemetry, Data: sample}:
		default:
		}
	})
	defer unsubSamples()
	unsubAlerts := s.bus.SubscribeAlerts(func(a alert.Alert) {
		select {
		case send <- WSMessage{Type: MessageTypeAlert, Data: a}:
		default:
		}
	})
	defer unsubAlerts()

	s.log.Info("websocket client connected", zap.String("remote", conn.RemoteAddr().String()))
	defer s.log.Info("websocket client disconnected", zap.String("remote", conn.RemoteAddr().String()))

	// Reader goroutine: the client sends nothing meaningful, but reading is
	// required to notice a close frame.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case msg := <-send:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
