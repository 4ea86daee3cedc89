package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/pointfeed/internal/common"
	"github.com/dmitrijs2005/pointfeed/internal/rpc"
	"github.com/dmitrijs2005/pointfeed/internal/server/auth"
	"github.com/dmitrijs2005/pointfeed/internal/server/models"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Frame types of the subscription protocol.
const (
	FrameConnectionInit      = "connection_init"
	FrameConnectionAck       = "connection_ack"
	FrameConnectionError     = "connection_error"
	FrameConnectionTerminate = "connection_terminate"
	FramePostAdded           = common.TopicPostAdded
)

// Frame is one websocket message.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// InitPayload is the payload of connection_init.
type InitPayload struct {
	Authorization string `json:"Authorization"`
}

type errorPayload struct {
	Message string `json:"message"`
}

var errBadInit = errors.New("expected connection_init")

// handleSubscriptions upgrades the request, authenticates the first frame
// through the guard and then streams post_added frames for followed
// authors until either side goes away.
func (s *HTTPServer) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadLimit(maxMessageSize)

	p, err := s.handshake(ctx, conn)
	if err != nil {
		s.reject(ctx, conn, err)
		return
	}

	sub, err := s.posts.Subscribe(ctx, p)
	if err != nil {
		s.reject(ctx, conn, err)
		return
	}
	defer sub.Close()

	if err := writeFrame(conn, FrameConnectionAck, nil); err != nil {
		return
	}

	go s.readPump(ctx, conn, cancel)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			post, ok := ev.Payload.(*models.Post)
			if !ok {
				continue
			}
			if err := writeFrame(conn, FramePostAdded, rpc.NewPost(post)); err != nil {
				s.logger.Debug(ctx, "websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *HTTPServer) handshake(ctx context.Context, conn *websocket.Conn) (*auth.Principal, error) {
	if err := conn.SetReadDeadline(time.Now().Add(s.initTimeout)); err != nil {
		return nil, err
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read connection_init: %w", err)
	}

	var f Frame
	if err := json.Unmarshal(data, &f); err != nil || f.Type != FrameConnectionInit {
		return nil, errBadInit
	}

	var init InitPayload
	if len(f.Payload) > 0 {
		if err := json.Unmarshal(f.Payload, &init); err != nil {
			return nil, errBadInit
		}
	}

	p, err := s.guard.Resolve(ctx, auth.TokenFromHeader(init.Authorization))
	if err != nil {
		return nil, auth.PublicError(err)
	}
	return p, nil
}

func (s *HTTPServer) reject(ctx context.Context, conn *websocket.Conn, err error) {
	msg := common.ErrorUnauthorized.Error()
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
	case errors.Is(err, errBadInit):
		msg = errBadInit.Error()
	default:
		s.logger.Error(ctx, "subscription failed", "error", err)
		msg = common.ErrorUnavailable.Error()
	}

	_ = writeFrame(conn, FrameConnectionError, errorPayload{Message: msg})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, msg), time.Now().Add(writeWait))
}

// readPump keeps the read side alive for control frames and cancels ctx
// when the peer leaves or terminates.
func (s *HTTPServer) readPump(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug(ctx, "unexpected websocket close", "error", err)
			}
			return
		}
		var f Frame
		if json.Unmarshal(data, &f) == nil && f.Type == FrameConnectionTerminate {
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, typ string, payload any) error {
	f := Frame{Type: typ}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		f.Payload = raw
	}

	data, err := json.Marshal(f)
	if err != nil {
		return err
	}

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
