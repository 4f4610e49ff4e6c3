package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	errs "github.com/matzehuels/claimgraph/pkg/errors"
	"github.com/matzehuels/claimgraph/pkg/explore"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// streamMessage is sent to stream clients. Exactly one payload field is set.
type streamMessage struct {
	Type   string          `json:"type"` // scene, notice, result, error
	Scene  *explore.Scene  `json:"scene,omitempty"`
	Notice *explore.Notice `json:"notice,omitempty"`
	Result *explore.Result `json:"result,omitempty"`
	Error  *errorDetail    `json:"error,omitempty"`
}

// handleStream pushes the current scene, then every later scene and notice
// of the view. Clients may send gestures as {"gesture", "target"} messages;
// each is answered with a result or error message.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	v := viewFrom(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "view", v.ID(), "err", err)
		return
	}
	defer conn.Close()

	updates, cancel := v.Subscribe()
	defer cancel()

	out := make(chan streamMessage, 8)
	done := make(chan struct{})
	stop := make(chan struct{})
	defer close(stop)
	send := func(m streamMessage) bool {
		select {
		case out <- m:
			return true
		case <-stop:
			return false
		}
	}

	// Reader: gestures in, results out.
	go func() {
		defer close(done)
		conn.SetReadLimit(maxBodyBytes)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Debug("websocket read", "view", v.ID(), "err", err)
				}
				return
			}
			var req gestureRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				if !send(errorMessage(errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid message format"))) {
					return
				}
				continue
			}
			res, err := dispatch(r.Context(), v, req)
			if err != nil {
				if !send(errorMessage(err)) {
					return
				}
				continue
			}
			if !send(streamMessage{Type: "result", Result: &res}) {
				return
			}
		}
	}()

	scene, err := v.Snapshot(r.Context())
	if err != nil {
		s.writeStream(conn, errorMessage(err))
		return
	}
	if !s.writeStream(conn, streamMessage{Type: "scene", Scene: &scene}) {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		var msg streamMessage
		select {
		case <-done:
			return
		case u, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "view closed"),
					time.Now().Add(writeWait))
				return
			}
			switch {
			case u.Scene != nil:
				msg = streamMessage{Type: "scene", Scene: u.Scene}
			case u.Notice != nil:
				msg = streamMessage{Type: "notice", Notice: u.Notice}
			default:
				continue
			}
		case msg = <-out:
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}
		if !s.writeStream(conn, msg) {
			return
		}
	}
}

func (s *Server) writeStream(conn *websocket.Conn, msg streamMessage) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Debug("websocket write", "err", err)
		return false
	}
	return true
}

func errorMessage(err error) streamMessage {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	return streamMessage{Type: "error", Error: &errorDetail{Code: code, Message: errs.UserMessage(err)}}
}
