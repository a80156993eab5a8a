/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"
)

var (
	ErrMalformed    = errors.New("malformed message")
	ErrUnknownKind  = errors.New("unknown message kind")
	ErrInvalidField = errors.New("invalid field")
	ErrVersion      = errors.New("unsupported protocol version")
)

type envelope struct {
	Kind Kind `json:"kind"`
}

// Field structs use pointers so that a missing field can be told apart from
// a zero value. Fields not listed here are ignored.

type rawHello struct {
	Version *int    `json:"version"`
	Name    *string `json:"name"`
}

type rawCursor struct {
	Col *coord `json:"col"`
	Row *coord `json:"row"`
}

// coord accepts any integral JSON number, including exponent forms such as
// 1e3 and 3.0. Values beyond the range of int saturate so that the hub can
// still clamp them onto the board.
type coord int

func (c *coord) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return errors.New("coordinate must be a number")
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	v, err := n.Float64()
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return err
	}

	switch {
	case math.Trunc(v) != v:
		return fmt.Errorf("coordinate must be an integer: %s", n)
	case v >= math.MaxInt:
		*c = math.MaxInt
	case v <= math.MinInt:
		*c = math.MinInt
	default:
		*c = coord(v)
	}
	return nil
}

type rawPing struct {
	T *int64 `json:"t"`
}

type rawGrid struct {
	TileSize *int `json:"tileSize"`
	Cols     *int `json:"cols"`
	Rows     *int `json:"rows"`
}

type rawPlayer struct {
	ID       *string    `json:"id"`
	Name     *string    `json:"name"`
	Cursor   *rawCursor `json:"cursor"`
	LastSeen *int64     `json:"lastSeen"`
}

type rawWelcome struct {
	YourID *string  `json:"yourId"`
	Grid   *rawGrid `json:"grid"`
}

type rawPlayers struct {
	Players *[]rawPlayer `json:"players"`
}

type rawPlayerUpdate struct {
	Player *rawPlayer `json:"player"`
}

type rawPlayerLeave struct {
	ID *string `json:"id"`
}

type rawSnapshot struct {
	Count   *int         `json:"count"`
	Grid    *rawGrid     `json:"grid"`
	Players *[]rawPlayer `json:"players"`
}

func kindOf(data []byte) (Kind, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return env.Kind, nil
}

func decodeFields(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	return nil
}

func missing(name string) error {
	return fmt.Errorf("%w: %s is required", ErrInvalidField, name)
}

// DecodeClient parses and validates a frame sent by a participant.
func DecodeClient(data []byte) (ClientMessage, error) {
	kind, err := kindOf(data)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindHello:
		var raw rawHello
		if err := decodeFields(data, &raw); err != nil {
			return nil, err
		}
		if raw.Version == nil {
			return nil, missing("version")
		}
		if *raw.Version != Version {
			return nil, fmt.Errorf("%w: %d", ErrVersion, *raw.Version)
		}
		msg := Hello{Kind: KindHello, Version: *raw.Version}
		if raw.Name != nil {
			if err := validName(*raw.Name); err != nil {
				return nil, err
			}
			msg.Name = *raw.Name
		}
		return msg, nil

	case KindCursor:
		var raw rawCursor
		if err := decodeFields(data, &raw); err != nil {
			return nil, err
		}
		c, err := raw.cursor()
		if err != nil {
			return nil, err
		}
		return NewCursorMove(c.Col, c.Row), nil

	case KindPing:
		var raw rawPing
		if err := decodeFields(data, &raw); err != nil {
			return nil, err
		}
		if raw.T == nil {
			return nil, missing("t")
		}
		return NewPing(*raw.T), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// DecodeServer parses and validates a frame sent by the server.
func DecodeServer(data []byte) (ServerMessage, error) {
	kind, err := kindOf(data)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindWelcome:
		var raw rawWelcome
		if err := decodeFields(data, &raw); err != nil {
			return nil, err
		}
		if raw.YourID == nil {
			return nil, missing("yourId")
		}
		grid, err := raw.Grid.grid()
		if err != nil {
			return nil, err
		}
		return NewWelcome(*raw.YourID, grid), nil

	case KindPlayers:
		var raw rawPlayers
		if err := decodeFields(data, &raw); err != nil {
			return nil, err
		}
		if raw.Players == nil {
			return nil, missing("players")
		}
		players, err := playerList(*raw.Players)
		if err != nil {
			return nil, err
		}
		return NewPlayers(players), nil

	case KindPlayerUpdate:
		var raw rawPlayerUpdate
		if err := decodeFields(data, &raw); err != nil {
			return nil, err
		}
		if raw.Player == nil {
			return nil, missing("player")
		}
		p, err := raw.Player.player()
		if err != nil {
			return nil, err
		}
		return NewPlayerUpdate(p), nil

	case KindPlayerLeave:
		var raw rawPlayerLeave
		if err := decodeFields(data, &raw); err != nil {
			return nil, err
		}
		if raw.ID == nil {
			return nil, missing("id")
		}
		return NewPlayerLeave(*raw.ID), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// DecodeSnapshot parses and validates an admin snapshot frame.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	kind, err := kindOf(data)
	if err != nil {
		return Snapshot{}, err
	}
	if kind != KindSnapshot {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	var raw rawSnapshot
	if err := decodeFields(data, &raw); err != nil {
		return Snapshot{}, err
	}
	if raw.Count == nil {
		return Snapshot{}, missing("count")
	}
	if raw.Players == nil {
		return Snapshot{}, missing("players")
	}
	grid, err := raw.Grid.grid()
	if err != nil {
		return Snapshot{}, err
	}
	players, err := playerList(*raw.Players)
	if err != nil {
		return Snapshot{}, err
	}

	snap := NewSnapshot(grid, players)
	snap.Count = *raw.Count
	return snap, nil
}

func validName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 1 || n > MaxNameLength {
		return fmt.Errorf("%w: name must be 1-%d characters", ErrInvalidField, MaxNameLength)
	}
	return nil
}

func (raw *rawCursor) cursor() (Cursor, error) {
	if raw.Col == nil {
		return Cursor{}, missing("col")
	}
	if raw.Row == nil {
		return Cursor{}, missing("row")
	}
	if *raw.Col < 0 || *raw.Row < 0 {
		return Cursor{}, fmt.Errorf("%w: negative coordinate", ErrInvalidField)
	}
	return Cursor{Col: int(*raw.Col), Row: int(*raw.Row)}, nil
}

func (raw *rawGrid) grid() (Grid, error) {
	if raw == nil {
		return Grid{}, missing("grid")
	}
	if raw.TileSize == nil || raw.Cols == nil || raw.Rows == nil {
		return Grid{}, missing("grid.tileSize, grid.cols and grid.rows")
	}
	g := Grid{TileSize: *raw.TileSize, Cols: *raw.Cols, Rows: *raw.Rows}
	if !g.Valid() {
		return Grid{}, fmt.Errorf("%w: grid dimensions must be positive", ErrInvalidField)
	}
	return g, nil
}

func (raw *rawPlayer) player() (Player, error) {
	if raw.ID == nil {
		return Player{}, missing("player.id")
	}
	if raw.LastSeen == nil {
		return Player{}, missing("player.lastSeen")
	}

	p := Player{ID: *raw.ID, LastSeen: *raw.LastSeen}
	if raw.Name != nil {
		if err := validName(*raw.Name); err != nil {
			return Player{}, err
		}
		p.Name = *raw.Name
	}
	if raw.Cursor != nil {
		c, err := raw.Cursor.cursor()
		if err != nil {
			return Player{}, err
		}
		p.Cursor = &c
	}
	return p, nil
}

func playerList(raws []rawPlayer) ([]Player, error) {
	players := make([]Player, 0, len(raws))
	for i := range raws {
		p, err := raws[i].player()
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}
