/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package desktop

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sasha-s/go-deadlock"

	"github.com/Seednode/cursorgrid/client"
	"github.com/Seednode/cursorgrid/render"
)

var backgroundColor = color.RGBA{0x10, 0x12, 0x14, 0xff}

const (
	defaultWidth  = 960
	defaultHeight = 640
)

// Shell is an ebiten.Game that shows one App's engine centered in the
// window, and feeds it the mouse position.
type Shell struct {
	app   *client.App
	queue *render.FrameQueue
	title string

	mu        deadlock.Mutex
	listeners map[int]func(render.PointerEvent)
	nextID    int

	outsideW, outsideH int
	dpr                float64
	lastX, lastY       float64
	inside             bool
	status             client.Status
	sized              bool
}

// NewShell wraps app. The app's engine must use queue as its scheduler and
// Backend for its canvases.
func NewShell(app *client.App, queue *render.FrameQueue, title string) *Shell {
	s := &Shell{
		app:       app,
		queue:     queue,
		title:     title,
		listeners: make(map[int]func(render.PointerEvent)),
		dpr:       1,
		status:    -1,
	}
	app.Engine().BindPointer(s)

	return s
}

// SubscribePointer registers fn for pointer events in logical board
// coordinates.
func (s *Shell) SubscribePointer(fn func(render.PointerEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.listeners, id)
	}
}

func (s *Shell) emit(ev render.PointerEvent) {
	s.mu.Lock()
	fns := make([]func(render.PointerEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// offset is the logical position of the board's top-left corner.
func (s *Shell) offset() (float64, float64) {
	w, h := s.app.Engine().Size()
	return float64(s.outsideW-w) / 2, float64(s.outsideH-h) / 2
}

func (s *Shell) Update() error {
	engine := s.app.Engine()

	if dpr := ebiten.Monitor().DeviceScaleFactor(); dpr > 0 && dpr != s.dpr {
		s.dpr = dpr
		engine.SetDevicePixelRatio(dpr)
	}

	if status := s.app.Status(); status != s.status {
		s.status = status
		ebiten.SetWindowTitle(fmt.Sprintf("%s (%s)", s.title, status))
	}

	if !s.sized && engine.Active() {
		s.sized = true
		w, h := engine.Size()
		ebiten.SetWindowSize(w, h)
	}

	px, py := ebiten.CursorPosition()
	x, y := float64(px)/s.dpr, float64(py)/s.dpr

	inWindow := x >= 0 && y >= 0 && x < float64(s.outsideW) && y < float64(s.outsideH)
	switch {
	case !inWindow || !ebiten.IsFocused():
		if s.inside {
			s.inside = false
			s.emit(render.PointerEvent{Leave: true})
		}
	case !s.inside || x != s.lastX || y != s.lastY:
		s.inside = true
		s.lastX, s.lastY = x, y
		ox, oy := s.offset()
		s.emit(render.PointerEvent{X: x - ox, Y: y - oy})
	}

	return nil
}

func (s *Shell) Draw(screen *ebiten.Image) {
	s.queue.Flush()

	screen.Fill(backgroundColor)

	view, ok := s.app.Engine().View().(*Canvas)
	if !ok {
		return
	}

	ox, oy := s.offset()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(ox*s.dpr, oy*s.dpr)
	screen.DrawImage(view.Image(), op)
}

func (s *Shell) Layout(outsideWidth, outsideHeight int) (int, int) {
	s.outsideW, s.outsideH = outsideWidth, outsideHeight
	return int(float64(outsideWidth) * s.dpr), int(float64(outsideHeight) * s.dpr)
}

// Run opens the window and blocks until it is closed or ctx is cancelled.
func Run(ctx context.Context, s *Shell) error {
	ebiten.SetWindowSize(defaultWidth, defaultHeight)
	ebiten.SetWindowTitle(s.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	game := &cancellable{Shell: s, ctx: ctx}
	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("desktop: %w", err)
	}
	return nil
}

type cancellable struct {
	*Shell
	ctx context.Context
}

func (c *cancellable) Update() error {
	if c.ctx.Err() != nil {
		return ebiten.Termination
	}
	return c.Shell.Update()
}
