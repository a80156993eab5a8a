/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package protocol defines the JSON messages exchanged between cursorgrid
// participants and the server, and validates them on receipt.
//
// Every frame is a JSON object discriminated by its "kind" field. Client
// frames are hello, cursor and ping; server frames are welcome, players,
// playerUpdate and playerLeave. The admin channel carries a single
// snapshot frame.
package protocol

// Version is the only protocol version the server accepts in a hello.
const Version = 1

// MaxNameLength is the longest display name, in characters.
const MaxNameLength = 24

type Kind string

const (
	KindHello        Kind = "hello"
	KindCursor       Kind = "cursor"
	KindPing         Kind = "ping"
	KindWelcome      Kind = "welcome"
	KindPlayers      Kind = "players"
	KindPlayerUpdate Kind = "playerUpdate"
	KindPlayerLeave  Kind = "playerLeave"
	KindSnapshot     Kind = "snapshot"
)

// Grid is the authoritative board descriptor. It is fixed for the lifetime
// of a server process.
type Grid struct {
	TileSize int `json:"tileSize"`
	Cols     int `json:"cols"`
	Rows     int `json:"rows"`
}

func (g Grid) Valid() bool {
	return g.TileSize > 0 && g.Cols > 0 && g.Rows > 0
}

// Width and Height are the logical pixel size of the whole board.
func (g Grid) Width() int  { return g.Cols * g.TileSize }
func (g Grid) Height() int { return g.Rows * g.TileSize }

func (g Grid) Contains(col, row int) bool {
	return col >= 0 && col < g.Cols && row >= 0 && row < g.Rows
}

// Clamp pins col and row into [0,Cols-1] x [0,Rows-1].
func (g Grid) Clamp(col, row int) (int, int) {
	return clamp(col, 0, g.Cols-1), clamp(row, 0, g.Rows-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type Cursor struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// Player is the public summary of one participant.
type Player struct {
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	Cursor   *Cursor `json:"cursor,omitempty"`
	LastSeen int64   `json:"lastSeen"` // unix milliseconds
}

// ClientMessage is one of Hello, CursorMove or Ping.
type ClientMessage interface {
	clientMessage()
}

// ServerMessage is one of Welcome, Players, PlayerUpdate or PlayerLeave.
type ServerMessage interface {
	serverMessage()
}

// Sent once by a client, right after its connection opens.
type Hello struct {
	Kind    Kind   `json:"kind"` // "hello"
	Version int    `json:"version"`
	Name    string `json:"name,omitempty"`
}

// Sent by a client whenever its hovered tile changes.
type CursorMove struct {
	Kind Kind `json:"kind"` // "cursor"
	Col  int  `json:"col"`
	Row  int  `json:"row"`
}

// Ping is reserved for latency measurement and has no effect beyond
// refreshing the sender's last-seen time.
type Ping struct {
	Kind Kind  `json:"kind"` // "ping"
	T    int64 `json:"t"`
}

// Welcome is the first frame on every connection.
type Welcome struct {
	Kind   Kind   `json:"kind"` // "welcome"
	YourID string `json:"yourId"`
	Grid   Grid   `json:"grid"`
}

// Players is the full participant list, sent once after Welcome.
type Players struct {
	Kind    Kind     `json:"kind"` // "players"
	Players []Player `json:"players"`
}

// PlayerUpdate carries one participant whose name or cursor changed.
type PlayerUpdate struct {
	Kind   Kind   `json:"kind"` // "playerUpdate"
	Player Player `json:"player"`
}

type PlayerLeave struct {
	Kind Kind   `json:"kind"` // "playerLeave"
	ID   string `json:"id"`
}

// Snapshot is pushed to admin observers on every state change.
type Snapshot struct {
	Kind    Kind     `json:"kind"` // "snapshot"
	Count   int      `json:"count"`
	Grid    Grid     `json:"grid"`
	Players []Player `json:"players"`
}

func (Hello) clientMessage()      {}
func (CursorMove) clientMessage() {}
func (Ping) clientMessage()       {}

func (Welcome) serverMessage()      {}
func (Players) serverMessage()      {}
func (PlayerUpdate) serverMessage() {}
func (PlayerLeave) serverMessage()  {}

func NewHello(name string) Hello {
	return Hello{Kind: KindHello, Version: Version, Name: name}
}

func NewCursorMove(col, row int) CursorMove {
	return CursorMove{Kind: KindCursor, Col: col, Row: row}
}

func NewPing(t int64) Ping {
	return Ping{Kind: KindPing, T: t}
}

func NewWelcome(id string, grid Grid) Welcome {
	return Welcome{Kind: KindWelcome, YourID: id, Grid: grid}
}

func NewPlayers(players []Player) Players {
	if players == nil {
		players = []Player{}
	}
	return Players{Kind: KindPlayers, Players: players}
}

func NewPlayerUpdate(p Player) PlayerUpdate {
	return PlayerUpdate{Kind: KindPlayerUpdate, Player: p}
}

func NewPlayerLeave(id string) PlayerLeave {
	return PlayerLeave{Kind: KindPlayerLeave, ID: id}
}

func NewSnapshot(grid Grid, players []Player) Snapshot {
	if players == nil {
		players = []Player{}
	}
	return Snapshot{Kind: KindSnapshot, Count: len(players), Grid: grid, Players: players}
}
