/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package render keeps the local view of the grid and of every remote
// cursor, and redraws it at most once per frame.
//
// The board is drawn in two layers. The terrain layer is generated once per
// grid from a per-tile seed and cached. The overlay layer (grid lines, hover
// highlight and remote cursor markers) is redrawn on top of it whenever
// something changes.
package render

import (
	"image/color"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"github.com/sasha-s/go-deadlock"

	"github.com/Seednode/cursorgrid/protocol"
)

// RemoteCursor is another participant's last known tile.
type RemoteCursor struct {
	ID   string
	Name string
	Col  int
	Row  int
}

type Options struct {
	Backend   Backend
	Scheduler Scheduler

	// DevicePixelRatio defaults to 1.
	DevicePixelRatio float64

	// OnHover is called, outside the engine lock, each time the pointer
	// moves onto a different tile.
	OnHover func(col, row int)

	Logger zerolog.Logger
}

type Engine struct {
	mu deadlock.Mutex

	backend   Backend
	scheduler Scheduler
	onHover   func(col, row int)
	log       zerolog.Logger

	active  bool
	grid    protocol.Grid
	localID string
	dpr     float64

	hover   *protocol.Cursor
	cursors map[string]RemoteCursor

	terrain terrainCache
	view    Canvas
	frames  int

	cancelRedraw func()
	unsubscribe  func()
	closed       bool
}

func NewEngine(opts Options) *Engine {
	if opts.Backend == nil {
		opts.Backend = Raster{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewFrameQueue()
	}
	if opts.DevicePixelRatio <= 0 {
		opts.DevicePixelRatio = 1
	}

	return &Engine{
		backend:   opts.Backend,
		scheduler: opts.Scheduler,
		onHover:   opts.OnHover,
		log:       opts.Logger,
		dpr:       opts.DevicePixelRatio,
		cursors:   make(map[string]RemoteCursor),
	}
}

// SetGrid activates the engine with the server's grid. Only the first valid
// grid is accepted; it reports whether this call activated the engine.
func (e *Engine) SetGrid(grid protocol.Grid) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active || e.closed || !grid.Valid() {
		return false
	}

	e.grid = grid
	e.active = true
	e.log.Debug().Int("cols", grid.Cols).Int("rows", grid.Rows).Int("tileSize", grid.TileSize).Msg("RENDER: grid set")
	e.requestRedrawLocked()

	return true
}

// SetLocalID records this participant's own id so it is never drawn as a
// remote cursor.
func (e *Engine) SetLocalID(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.localID = id
	if _, ok := e.cursors[id]; ok {
		delete(e.cursors, id)
		e.requestRedrawLocked()
	}
}

func (e *Engine) SetDevicePixelRatio(dpr float64) {
	if dpr <= 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if dpr == e.dpr {
		return
	}
	e.dpr = dpr
	e.view = nil
	e.requestRedrawLocked()
}

func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.active
}

func (e *Engine) Grid() protocol.Grid {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.grid
}

// Size is the logical size of the board, or zero before activation.
func (e *Engine) Size() (width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.grid.Width(), e.grid.Height()
}

func (e *Engine) DevicePixelRatio() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.dpr
}

// PointerMove maps a logical position to a tile and updates the hover
// state. Positions outside the board clear it.
func (e *Engine) PointerMove(x, y float64) {
	e.mu.Lock()
	if !e.active || e.closed {
		e.mu.Unlock()
		return
	}

	ts := float64(e.grid.TileSize)
	col, row := int(math.Floor(x/ts)), int(math.Floor(y/ts))
	if !e.grid.Contains(col, row) {
		e.clearHoverLocked()
		e.mu.Unlock()
		return
	}

	if e.hover != nil && e.hover.Col == col && e.hover.Row == row {
		e.mu.Unlock()
		return
	}

	e.hover = &protocol.Cursor{Col: col, Row: row}
	e.requestRedrawLocked()
	notify := e.onHover
	e.mu.Unlock()

	if notify != nil {
		notify(col, row)
	}
}

func (e *Engine) PointerLeave() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clearHoverLocked()
}

func (e *Engine) clearHoverLocked() {
	if e.hover == nil {
		return
	}
	e.hover = nil
	e.requestRedrawLocked()
}

// Hover returns the hovered tile, if any.
func (e *Engine) Hover() (protocol.Cursor, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hover == nil {
		return protocol.Cursor{}, false
	}
	return *e.hover, true
}

// BindPointer subscribes to src. The subscription is released by Close.
func (e *Engine) BindPointer(src PointerSource) {
	unsubscribe := src.SubscribePointer(func(ev PointerEvent) {
		if ev.Leave {
			e.PointerLeave()
			return
		}
		e.PointerMove(ev.X, ev.Y)
	})

	e.mu.Lock()
	previous := e.unsubscribe
	e.unsubscribe = unsubscribe
	e.mu.Unlock()

	if previous != nil {
		previous()
	}
}

// ReplaceCursors discards every remote cursor and loads players instead.
func (e *Engine) ReplaceCursors(players []protocol.Player) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cursors = make(map[string]RemoteCursor, len(players))
	for _, p := range players {
		e.upsertLocked(p)
	}
	e.requestRedrawLocked()
}

// UpsertCursor inserts or overwrites the entry for p.ID.
func (e *Engine) UpsertCursor(p protocol.Player) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.upsertLocked(p)
	e.requestRedrawLocked()
}

// upsertLocked skips the local participant. A participant that has never
// reported a cursor only has its name refreshed if it is already known.
func (e *Engine) upsertLocked(p protocol.Player) {
	if p.ID == e.localID {
		return
	}

	rc, known := e.cursors[p.ID]
	if p.Cursor == nil {
		if known {
			rc.Name = p.Name
			e.cursors[p.ID] = rc
		}
		return
	}

	e.cursors[p.ID] = RemoteCursor{
		ID:   p.ID,
		Name: p.Name,
		Col:  p.Cursor.Col,
		Row:  p.Cursor.Row,
	}
}

// RemoveCursor deletes the entry for id. Unknown ids are ignored.
func (e *Engine) RemoveCursor(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.cursors, id)
	e.requestRedrawLocked()
}

// Disconnected drops every remote cursor, since no leave notices will
// arrive for them once the connection is gone.
func (e *Engine) Disconnected() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.cursors) == 0 {
		return
	}
	e.cursors = make(map[string]RemoteCursor)
	e.requestRedrawLocked()
}

// Cursors returns the remote cursors ordered by id.
func (e *Engine) Cursors() []RemoteCursor {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.sortedCursorsLocked()
}

func (e *Engine) sortedCursorsLocked() []RemoteCursor {
	out := make([]RemoteCursor, 0, len(e.cursors))
	for _, rc := range e.cursors {
		out = append(out, rc)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// RequestRedraw schedules a redraw unless one is already pending.
func (e *Engine) RequestRedraw() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.requestRedrawLocked()
}

func (e *Engine) requestRedrawLocked() {
	if e.closed || e.cancelRedraw != nil {
		return
	}
	e.cancelRedraw = e.scheduler.Schedule(e.frame)
}

// RedrawPending reports whether a redraw is scheduled.
func (e *Engine) RedrawPending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.cancelRedraw != nil
}

// Frames is the number of redraws performed so far.
func (e *Engine) Frames() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.frames
}

// TerrainBuilds is the number of times the terrain layer was generated.
func (e *Engine) TerrainBuilds() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.terrain.builds
}

// View returns the board canvas, or nil before the first redraw.
func (e *Engine) View() Canvas {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.view
}

func (e *Engine) frame() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelRedraw = nil
	if !e.active || e.closed {
		return
	}

	if e.view == nil {
		e.view = e.backend.NewCanvas(physical(e.grid.Width(), e.dpr), physical(e.grid.Height(), e.dpr), e.dpr)
	}

	e.view.Clear(color.Transparent)
	e.view.DrawCanvas(e.terrain.get(e.backend, e.grid, e.dpr))

	drawGridLines(e.view, e.grid)
	if e.hover != nil {
		drawHover(e.view, e.grid, *e.hover)
	}
	for _, rc := range e.sortedCursorsLocked() {
		drawMarker(e.view, e.grid, rc)
	}

	e.frames++
}

// Close cancels any pending redraw and releases the pointer subscription.
// Later calls do nothing.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true

	cancel := e.cancelRedraw
	e.cancelRedraw = nil
	unsubscribe := e.unsubscribe
	e.unsubscribe = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if unsubscribe != nil {
		unsubscribe()
	}
}
