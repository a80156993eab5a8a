/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package session

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mileusna/useragent"
	"github.com/rs/zerolog"

	"github.com/Seednode/cursorgrid/protocol"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one participant connection. Its send queue is closed by the hub
// when the participant is removed.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan any
	log  zerolog.Logger
}

func (c *Client) ID() string {
	return c.id
}

// Send returns the outbound queue, for callers that drive a client without
// a websocket.
func (c *Client) Send() <-chan any {
	return c.send
}

// queue never blocks: a full queue drops msg for this client only.
func (c *Client) queue(msg any) {
	select {
	case c.send <- msg:
	default:
		c.log.Debug().Str("participant", c.id).Msg("GRID: send queue full, dropping message")
	}
}

// ServeWS upgrades r into a participant connection and blocks until it closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, host string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Str("host", host).Msg("SERVE: websocket upgrade failed")
		return
	}

	c := h.NewClient()
	c.conn = conn
	c.log = h.log.With().Str("participant", c.id).Str("host", host).Logger()

	ua := useragent.Parse(r.UserAgent())
	c.log.Info().
		Str("browser", ua.Name).
		Str("os", ua.OS).
		Str("device", deviceType(ua)).
		Msg("SERVE: participant connected")

	go c.writePump()

	if !h.Join(c) {
		close(c.send)
		return
	}

	c.readPump(h)

	c.log.Info().Msg("SERVE: participant disconnected")
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.Leave(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		typ, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if typ != websocket.TextMessage {
			continue
		}

		msg, err := protocol.DecodeClient(data)
		if err != nil {
			c.log.Debug().Err(err).Msg("GRID: dropped invalid message")
			continue
		}

		h.Dispatch(c, msg)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

// ServeAdmin upgrades r into a read-only observer that receives a snapshot
// on every state change. Anything the observer sends is discarded.
func (h *Hub) ServeAdmin(w http.ResponseWriter, r *http.Request, host string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Str("host", host).Msg("SERVE: admin upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.With().Str("observer", host).Logger()
	log.Info().Msg("SERVE: admin observer connected")

	sub := h.Observe()
	defer sub.Done()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snap, ok := <-sub.Recv():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		case <-closed:
			log.Info().Msg("SERVE: admin observer disconnected")
			return
		}
	}
}

func deviceType(ua useragent.UserAgent) string {
	switch {
	case ua.Bot:
		return "bot"
	case ua.Mobile:
		return "mobile"
	case ua.Tablet:
		return "tablet"
	case ua.Desktop:
		return "desktop"
	}
	return "unknown"
}
