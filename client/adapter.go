/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package client connects a participant to a cursorgrid server and feeds
// validated server messages into a render engine.
package client

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/time/rate"

	"github.com/Seednode/cursorgrid/protocol"
)

// CursorInterval is the minimum spacing between outbound cursor reports.
const CursorInterval = 33 * time.Millisecond

type Status int

const (
	StatusOffline Status = iota
	StatusConnecting
	StatusOnline
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusOnline:
		return "online"
	}
	return "offline"
}

// Handlers receive inbound messages, one per kind. Nil handlers are skipped.
// Calls are made from the adapter's read goroutine, one at a time.
type Handlers struct {
	Welcome    func(protocol.Welcome)
	Snapshot   func(protocol.Players)
	Update     func(protocol.PlayerUpdate)
	Leave      func(protocol.PlayerLeave)
	Status     func(Status)
	Disconnect func()
}

type Options struct {
	URL  string
	Name string

	Dialer   *websocket.Dialer
	Throttle time.Duration
	Now      func() time.Time
	Logger   zerolog.Logger
}

// Adapter owns at most one websocket connection to the server.
type Adapter struct {
	opts     Options
	handlers Handlers
	log      zerolog.Logger
	limiter  *rate.Limiter

	mu         deadlock.Mutex
	conn       *websocket.Conn
	connecting bool
	cancelDial context.CancelFunc
	outbox     chan cursorReport
	sending    bool

	writeMu deadlock.Mutex
}

func NewAdapter(opts Options, handlers Handlers) *Adapter {
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.Throttle <= 0 {
		opts.Throttle = CursorInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Adapter{
		opts:     opts,
		handlers: handlers,
		log:      opts.Logger,
		limiter:  rate.NewLimiter(rate.Every(opts.Throttle), 1),
	}
}

type cursorReport struct {
	move protocol.CursorMove
	at   time.Time
}

// Connect starts connecting in the background. It does nothing if a
// connection is already open or being opened.
func (a *Adapter) Connect(ctx context.Context) {
	a.mu.Lock()
	if a.conn != nil || a.connecting {
		a.mu.Unlock()
		return
	}
	a.connecting = true
	ctx, cancel := context.WithCancel(ctx)
	a.cancelDial = cancel
	a.mu.Unlock()

	a.status(StatusConnecting)

	go a.run(ctx, cancel)
}

func (a *Adapter) run(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()

	conn, _, err := a.opts.Dialer.DialContext(ctx, a.opts.URL, nil)

	a.mu.Lock()
	a.connecting = false
	a.cancelDial = nil
	if err != nil {
		a.mu.Unlock()
		a.log.Debug().Err(err).Str("url", a.opts.URL).Msg("CLIENT: dial failed")
		a.closed()
		return
	}
	out := make(chan cursorReport, 1)
	a.conn = conn
	a.outbox = out
	a.sending = false
	a.mu.Unlock()

	a.log.Debug().Str("url", a.opts.URL).Msg("CLIENT: connected")
	a.status(StatusOnline)

	if err := a.write(conn, protocol.NewHello(a.opts.Name)); err != nil {
		a.log.Debug().Err(err).Msg("CLIENT: hello failed")
	}

	go a.writeCursors(ctx, conn, out)

	// Closing the connection on cancellation unblocks the read below.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		typ, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if typ != websocket.TextMessage {
			continue
		}
		a.dispatch(data)
	}

	_ = conn.Close()

	a.mu.Lock()
	if a.conn == conn {
		a.conn = nil
		a.outbox = nil
		a.sending = false
	}
	a.mu.Unlock()

	a.log.Debug().Msg("CLIENT: disconnected")
	a.closed()
}

func (a *Adapter) closed() {
	a.status(StatusOffline)
	if a.handlers.Disconnect != nil {
		a.handlers.Disconnect()
	}
}

func (a *Adapter) status(s Status) {
	if a.handlers.Status != nil {
		a.handlers.Status(s)
	}
}

func (a *Adapter) dispatch(data []byte) {
	msg, err := protocol.DecodeServer(data)
	if err != nil {
		a.log.Debug().Err(err).Msg("CLIENT: dropped invalid message")
		return
	}

	switch m := msg.(type) {
	case protocol.Welcome:
		if a.handlers.Welcome != nil {
			a.handlers.Welcome(m)
		}
	case protocol.Players:
		if a.handlers.Snapshot != nil {
			a.handlers.Snapshot(m)
		}
	case protocol.PlayerUpdate:
		if a.handlers.Update != nil {
			a.handlers.Update(m)
		}
	case protocol.PlayerLeave:
		if a.handlers.Leave != nil {
			a.handlers.Leave(m)
		}
	default:
		a.log.Debug().Msgf("CLIENT: dropped unexpected %T", msg)
	}
}

// Connected reports whether a connection is currently open.
func (a *Adapter) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.conn != nil
}

// SendCursor reports the hovered tile without waiting on the socket. Reports
// made while another is still being written, or sooner than the throttle
// interval after the last successful one, are dropped, not queued. It returns
// whether the report was accepted.
func (a *Adapter) SendCursor(col, row int) bool {
	now := a.opts.Now()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn == nil || a.sending || a.limiter.TokensAt(now) < 1 {
		return false
	}

	a.sending = true
	a.outbox <- cursorReport{move: protocol.NewCursorMove(col, row), at: now}
	return true
}

// writeCursors drains out for one connection. Only a successful write uses
// up the throttle interval.
func (a *Adapter) writeCursors(ctx context.Context, conn *websocket.Conn, out <-chan cursorReport) {
	for {
		select {
		case <-ctx.Done():
			return
		case report := <-out:
			err := a.write(conn, report.move)

			a.mu.Lock()
			if err == nil {
				a.limiter.AllowN(report.at, 1)
			}
			if a.outbox == out {
				a.sending = false
			}
			a.mu.Unlock()

			if err != nil {
				a.log.Debug().Err(err).Msg("CLIENT: cursor report failed")
			}
		}
	}
}

func (a *Adapter) write(conn *websocket.Conn, msg any) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteJSON(msg)
}

// Close drops the current connection or cancels a pending dial. It is safe
// to call more than once.
func (a *Adapter) Close() {
	a.mu.Lock()
	conn := a.conn
	cancel := a.cancelDial
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn == nil {
		return
	}

	a.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	a.writeMu.Unlock()

	_ = conn.Close()
}
