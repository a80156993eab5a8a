/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package client

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sasha-s/go-deadlock"

	"github.com/Seednode/cursorgrid/protocol"
	"github.com/Seednode/cursorgrid/render"
)

// AppOptions configures an App. The adapter's logger is shared with the
// engine.
type AppOptions struct {
	Adapter Options
	Render  render.Options

	// OnStatus is called on every connection status change.
	OnStatus func(Status)
}

// App joins one participant to a server: inbound messages are reconciled
// into the engine, and hover changes in the engine are reported back.
type App struct {
	engine  *render.Engine
	adapter *Adapter
	log     zerolog.Logger

	mu       deadlock.Mutex
	status   Status
	localID  string
	onStatus func(Status)

	closeOnce sync.Once
}

func NewApp(opts AppOptions) *App {
	a := &App{
		log:      opts.Adapter.Logger,
		onStatus: opts.OnStatus,
	}

	ropts := opts.Render
	ropts.Logger = opts.Adapter.Logger
	next := ropts.OnHover
	ropts.OnHover = func(col, row int) {
		a.adapter.SendCursor(col, row)
		if next != nil {
			next(col, row)
		}
	}

	a.engine = render.NewEngine(ropts)
	a.adapter = NewAdapter(opts.Adapter, Handlers{
		Welcome:    a.welcome,
		Snapshot:   a.snapshot,
		Update:     a.update,
		Leave:      a.leave,
		Status:     a.setStatus,
		Disconnect: a.engine.Disconnected,
	})

	return a
}

func (a *App) Engine() *render.Engine {
	return a.engine
}

func (a *App) Adapter() *Adapter {
	return a.adapter
}

// Start connects to the server in the background.
func (a *App) Start(ctx context.Context) {
	a.adapter.Connect(ctx)
}

func (a *App) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.status
}

// LocalID is the id assigned by the server, empty until welcomed.
func (a *App) LocalID() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.localID
}

func (a *App) setStatus(s Status) {
	a.mu.Lock()
	a.status = s
	notify := a.onStatus
	a.mu.Unlock()

	a.log.Debug().Stringer("status", s).Msg("CLIENT: status")

	if notify != nil {
		notify(s)
	}
}

func (a *App) welcome(m protocol.Welcome) {
	a.mu.Lock()
	a.localID = m.YourID
	a.mu.Unlock()

	a.engine.SetLocalID(m.YourID)
	if a.engine.SetGrid(m.Grid) {
		a.log.Info().Str("id", m.YourID).Int("cols", m.Grid.Cols).Int("rows", m.Grid.Rows).Msg("CLIENT: joined")
	}
}

func (a *App) snapshot(m protocol.Players) {
	a.engine.ReplaceCursors(m.Players)
}

func (a *App) update(m protocol.PlayerUpdate) {
	a.engine.UpsertCursor(m.Player)
}

func (a *App) leave(m protocol.PlayerLeave) {
	a.engine.RemoveCursor(m.ID)
}

// Close stops rendering and drops the connection. Later calls do nothing.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.engine.Close()
		a.adapter.Close()
	})
}
