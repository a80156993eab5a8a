package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/cursorgrid/protocol"
	"github.com/Seednode/cursorgrid/render"
	"github.com/Seednode/cursorgrid/session"
)

var testGrid = protocol.Grid{TileSize: 32, Cols: 40, Rows: 24}

func startSession(t *testing.T) (*session.Hub, string) {
	t.Helper()

	hub := session.NewHub(testGrid, session.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.RemoteAddr)
	}))
	t.Cleanup(func() {
		server.Close()
		cancel()
	})

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func startApp(t *testing.T, url, name string) (*App, *render.FrameQueue) {
	t.Helper()

	queue := render.NewFrameQueue()
	app := NewApp(AppOptions{
		Adapter: Options{URL: url, Name: name},
		Render:  render.Options{Scheduler: queue},
	})
	t.Cleanup(app.Close)

	app.Start(context.Background())
	require.Eventually(t, func() bool {
		return app.LocalID() != "" && app.Engine().Active()
	}, 2*time.Second, 5*time.Millisecond)

	return app, queue
}

func cursorOf(app *App, id string) (render.RemoteCursor, bool) {
	for _, rc := range app.Engine().Cursors() {
		if rc.ID == id {
			return rc, true
		}
	}
	return render.RemoteCursor{}, false
}

func TestAppsSeeEachOther(t *testing.T) {
	_, url := startSession(t)

	ana, anaFrames := startApp(t, url, "ana")
	ben, _ := startApp(t, url, "ben")

	assert.Equal(t, StatusOnline, ana.Status())
	assert.Equal(t, testGrid, ana.Engine().Grid())
	assert.NotEqual(t, ana.LocalID(), ben.LocalID())

	// hovering tile (2,3) in ana's window reaches ben
	ana.Engine().PointerMove(2*32+5, 3*32+5)

	require.Eventually(t, func() bool {
		rc, ok := cursorOf(ben, ana.LocalID())
		return ok && rc.Col == 2 && rc.Row == 3
	}, 2*time.Second, 5*time.Millisecond)

	rc, _ := cursorOf(ben, ana.LocalID())
	assert.Equal(t, "ana", rc.Name)

	// the sender never sees itself
	_, ok := cursorOf(ana, ana.LocalID())
	assert.False(t, ok)

	anaFrames.Flush()
	assert.Positive(t, ana.Engine().Frames())

	ana.Close()

	require.Eventually(t, func() bool {
		_, ok := cursorOf(ben, ana.LocalID())
		return !ok
	}, 2*time.Second, 5*time.Millisecond)
}

func TestLateJoinerGetsCursors(t *testing.T) {
	hub, url := startSession(t)

	ana, _ := startApp(t, url, "ana")
	ana.Engine().PointerMove(39*32+1, 23*32+1)

	require.Eventually(t, func() bool {
		snap, err := hub.Snapshot(context.Background())
		if err != nil {
			return false
		}
		for _, p := range snap.Players {
			if p.ID == ana.LocalID() && p.Cursor != nil {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)

	ben, _ := startApp(t, url, "ben")

	require.Eventually(t, func() bool {
		_, ok := cursorOf(ben, ana.LocalID())
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	rc, _ := cursorOf(ben, ana.LocalID())
	assert.Equal(t, render.RemoteCursor{ID: ana.LocalID(), Name: "ana", Col: 39, Row: 23}, rc)
}

func TestAppStatusCallback(t *testing.T) {
	_, url := startSession(t)

	var mu sync.Mutex
	var seen []Status

	app := NewApp(AppOptions{
		Adapter: Options{URL: url},
		OnStatus: func(s Status) {
			mu.Lock()
			seen = append(seen, s)
			mu.Unlock()
		},
	})
	app.Start(context.Background())

	require.Eventually(t, func() bool { return app.Status() == StatusOnline }, 2*time.Second, 5*time.Millisecond)

	app.Close()
	app.Close()

	require.Eventually(t, func() bool { return app.Status() == StatusOffline }, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{StatusConnecting, StatusOnline, StatusOffline}, seen)
	assert.Empty(t, app.Engine().Cursors())
}
