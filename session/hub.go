/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package session holds the authoritative participant store for a single
// grid and fans changes out to every connected websocket.
//
// All participant state is owned by the Hub's run loop. Connections talk to
// it only through channels, so mutations for one participant are always
// applied in the order that participant sent them.
package session

import (
	"context"
	"errors"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Seednode/cursorgrid/protocol"
)

// ErrStopped is returned by requests made after the hub's Run has returned.
var ErrStopped = errors.New("session: hub stopped")

// Participant is the server-side record for one connection.
type Participant struct {
	ID       string
	Name     string
	Cursor   *protocol.Cursor
	LastSeen time.Time

	joined uint64
}

func (p *Participant) summary() protocol.Player {
	player := protocol.Player{
		ID:       p.ID,
		Name:     p.Name,
		LastSeen: p.LastSeen.UnixMilli(),
	}
	if p.Cursor != nil {
		c := *p.Cursor
		player.Cursor = &c
	}
	return player
}

type Options struct {
	// SendBuffer is the outbound queue depth per connection. A full queue
	// drops messages for that recipient only.
	SendBuffer int

	// IdleTimeout disconnects participants that have sent nothing for this
	// long. Zero keeps them until they leave.
	IdleTimeout time.Duration

	Logger zerolog.Logger

	// NewID and Now default to uuid.NewString and time.Now.
	NewID func() string
	Now   func() time.Time
}

type inbound struct {
	client *Client
	msg    protocol.ClientMessage
}

type Hub struct {
	grid  protocol.Grid
	opts  Options
	log   zerolog.Logger
	admin *Topic[protocol.Snapshot]

	participants map[string]*Participant
	clients      map[string]*Client
	joined       uint64

	register  chan *Client
	unreg     chan *Client
	messages  chan inbound
	observed  chan struct{}
	snapshots chan chan protocol.Snapshot

	done chan struct{}
}

func NewHub(grid protocol.Grid, opts Options) *Hub {
	if opts.SendBuffer < 1 {
		opts.SendBuffer = 16
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Hub{
		grid:         grid,
		opts:         opts,
		log:          opts.Logger,
		admin:        NewTopic[protocol.Snapshot](opts.SendBuffer),
		participants: make(map[string]*Participant),
		clients:      make(map[string]*Client),
		register:     make(chan *Client),
		unreg:        make(chan *Client),
		messages:     make(chan inbound),
		observed:     make(chan struct{}),
		snapshots:    make(chan chan protocol.Snapshot),
		done:         make(chan struct{}),
	}
}

func (h *Hub) Grid() protocol.Grid {
	return h.grid
}

// NewClient allocates a fresh participant id and an outbound queue. The
// client takes part in the session once it is passed to Join.
func (h *Hub) NewClient() *Client {
	return &Client{
		id:   h.opts.NewID(),
		send: make(chan any, h.opts.SendBuffer),
		log:  h.log,
	}
}

// Run processes hub events until ctx is cancelled, then closes every
// participant queue and admin subscription.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	var reap <-chan time.Time
	if h.opts.IdleTimeout > 0 {
		ticker := time.NewTicker(h.opts.IdleTimeout / 2)
		defer ticker.Stop()
		reap = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-reap:
			h.reapIdle()

		case c := <-h.register:
			h.accept(c)

		case c := <-h.unreg:
			h.disconnect(c)

		case in := <-h.messages:
			h.handle(in.client, in.msg)

		case <-h.observed:
			h.publishSnapshot()

		case reply := <-h.snapshots:
			reply <- h.snapshot()
		}
	}
}

// Join registers c. It returns false if the hub has stopped.
func (h *Hub) Join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Leave(c *Client) {
	select {
	case h.unreg <- c:
	case <-h.done:
	}
}

// Dispatch queues a validated message from c for processing.
func (h *Hub) Dispatch(c *Client, msg protocol.ClientMessage) {
	select {
	case h.messages <- inbound{client: c, msg: msg}:
	case <-h.done:
	}
}

// Snapshot returns the admin view of the current state.
func (h *Hub) Snapshot(ctx context.Context) (protocol.Snapshot, error) {
	reply := make(chan protocol.Snapshot, 1)

	select {
	case h.snapshots <- reply:
	case <-h.done:
		return protocol.Snapshot{}, ErrStopped
	case <-ctx.Done():
		return protocol.Snapshot{}, ctx.Err()
	}

	select {
	case snap := <-reply:
		return snap, nil
	case <-ctx.Done():
		return protocol.Snapshot{}, ctx.Err()
	}
}

// Observe subscribes an admin observer. Every observer, including the new
// one, is sent a fresh snapshot.
func (h *Hub) Observe() *Subscriber[protocol.Snapshot] {
	sub := h.admin.Subscribe()

	select {
	case h.observed <- struct{}{}:
	case <-h.done:
	}

	return sub
}

func (h *Hub) accept(c *Client) {
	now := h.opts.Now()
	h.joined++

	h.participants[c.id] = &Participant{
		ID:       c.id,
		LastSeen: now,
		joined:   h.joined,
	}
	h.clients[c.id] = c

	c.queue(protocol.NewWelcome(c.id, h.grid))
	c.queue(protocol.NewPlayers(h.players()))

	h.log.Debug().Str("participant", c.id).Int("count", len(h.participants)).Msg("GRID: participant joined")

	h.publishSnapshot()
}

func (h *Hub) disconnect(c *Client) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}

	delete(h.clients, c.id)
	delete(h.participants, c.id)
	close(c.send)

	h.broadcast(protocol.NewPlayerLeave(c.id), "")

	h.log.Debug().Str("participant", c.id).Int("count", len(h.participants)).Msg("GRID: participant left")

	h.publishSnapshot()
}

// reapIdle disconnects every participant not heard from within IdleTimeout.
func (h *Hub) reapIdle() {
	cutoff := h.opts.Now().Add(-h.opts.IdleTimeout)

	var stale []*Client
	for id, p := range h.participants {
		if p.LastSeen.Before(cutoff) {
			stale = append(stale, h.clients[id])
		}
	}

	for _, c := range stale {
		h.log.Debug().Str("participant", c.id).Msg("GRID: participant timed out")
		h.disconnect(c)
	}
}

func (h *Hub) handle(c *Client, msg protocol.ClientMessage) {
	p, ok := h.participants[c.id]
	if !ok {
		return
	}
	p.LastSeen = h.opts.Now()

	switch m := msg.(type) {
	case protocol.Hello:
		if p.Name == "" && m.Name != "" {
			p.Name = truncateName(m.Name)
		}
		h.broadcast(protocol.NewPlayerUpdate(p.summary()), "")
		h.publishSnapshot()

	case protocol.CursorMove:
		col, row := h.grid.Clamp(m.Col, m.Row)
		p.Cursor = &protocol.Cursor{Col: col, Row: row}
		h.broadcast(protocol.NewPlayerUpdate(p.summary()), c.id)
		h.publishSnapshot()

	case protocol.Ping:
		// last-seen refresh only

	default:
		h.log.Debug().Str("participant", c.id).Msgf("GRID: dropped unexpected %T", msg)
	}
}

// broadcast queues msg for every client except the one with id skip.
func (h *Hub) broadcast(msg any, skip string) {
	for id, c := range h.clients {
		if id == skip {
			continue
		}
		c.queue(msg)
	}
}

func (h *Hub) publishSnapshot() {
	h.admin.Publish(h.snapshot())
}

func (h *Hub) snapshot() protocol.Snapshot {
	return protocol.NewSnapshot(h.grid, h.players())
}

// players lists every participant in join order.
func (h *Hub) players() []protocol.Player {
	ordered := make([]*Participant, 0, len(h.participants))
	for _, p := range h.participants {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].joined < ordered[j].joined
	})

	players := make([]protocol.Player, 0, len(ordered))
	for _, p := range ordered {
		players = append(players, p.summary())
	}
	return players
}

func (h *Hub) shutdown() {
	close(h.done)

	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
		delete(h.participants, id)
	}

	h.admin.Close()
}

func truncateName(name string) string {
	if utf8.RuneCountInString(name) <= protocol.MaxNameLength {
		return name
	}
	return string([]rune(name)[:protocol.MaxNameLength])
}
