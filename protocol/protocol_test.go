package protocol

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeClient(t *testing.T) {
	msg, err := DecodeClient([]byte(`{"kind":"hello","version":1,"name":"Ann"}`))
	require.NoError(t, err)
	assert.Equal(t, Hello{Kind: KindHello, Version: 1, Name: "Ann"}, msg)

	msg, err = DecodeClient([]byte(`{"kind":"hello","version":1}`))
	require.NoError(t, err)
	assert.Equal(t, "", msg.(Hello).Name)

	msg, err = DecodeClient([]byte(`{"kind":"cursor","col":5,"row":3}`))
	require.NoError(t, err)
	assert.Equal(t, NewCursorMove(5, 3), msg)

	msg, err = DecodeClient([]byte(`{"kind":"ping","t":-12}`))
	require.NoError(t, err)
	assert.Equal(t, NewPing(-12), msg)
}

func TestDecodeClientWideCoordinates(t *testing.T) {
	cases := map[string]CursorMove{
		`{"kind":"cursor","col":1e3,"row":2}`:                  NewCursorMove(1000, 2),
		`{"kind":"cursor","col":3.0,"row":4.00}`:               NewCursorMove(3, 4),
		`{"kind":"cursor","col":99999999999999999999,"row":0}`: NewCursorMove(math.MaxInt, 0),
		`{"kind":"cursor","col":0,"row":1e400}`:                NewCursorMove(0, math.MaxInt),
	}

	for input, want := range cases {
		msg, err := DecodeClient([]byte(input))
		require.NoError(t, err, input)
		assert.Equal(t, want, msg, input)
	}

	g := Grid{TileSize: 32, Cols: 40, Rows: 24}
	msg, err := DecodeClient([]byte(`{"kind":"cursor","col":99999999999999999999,"row":1e3}`))
	require.NoError(t, err)
	move := msg.(CursorMove)
	col, row := g.Clamp(move.Col, move.Row)
	assert.Equal(t, 39, col)
	assert.Equal(t, 23, row)
}

func TestDecodeClientIgnoresExtraFields(t *testing.T) {
	msg, err := DecodeClient([]byte(`{"kind":"cursor","col":1,"row":2,"name":5,"extra":{"a":[1,2]}}`))
	require.NoError(t, err)
	assert.Equal(t, NewCursorMove(1, 2), msg)
}

func TestDecodeClientRejects(t *testing.T) {
	cases := map[string]struct {
		input string
		err   error
	}{
		"not json":          {`{"kind":`, ErrMalformed},
		"array":             {`[1,2,3]`, ErrMalformed},
		"kind not a string": {`{"kind":7}`, ErrMalformed},
		"missing kind":      {`{"col":1,"row":1}`, ErrUnknownKind},
		"null":              {`null`, ErrUnknownKind},
		"server kind":       {`{"kind":"welcome","yourId":"x"}`, ErrUnknownKind},
		"wrong version":     {`{"kind":"hello","version":2}`, ErrVersion},
		"missing version":   {`{"kind":"hello","name":"Ann"}`, ErrInvalidField},
		"empty name":        {`{"kind":"hello","version":1,"name":""}`, ErrInvalidField},
		"long name":         {`{"kind":"hello","version":1,"name":"` + strings.Repeat("x", 25) + `"}`, ErrInvalidField},
		"name not a string": {`{"kind":"hello","version":1,"name":42}`, ErrInvalidField},
		"negative col":      {`{"kind":"cursor","col":-1,"row":0}`, ErrInvalidField},
		"fractional row":    {`{"kind":"cursor","col":1,"row":1.5}`, ErrInvalidField},
		"string col":        {`{"kind":"cursor","col":"1","row":1}`, ErrInvalidField},
		"exponent fraction": {`{"kind":"cursor","col":1.5e0,"row":1}`, ErrInvalidField},
		"negative exp row":  {`{"kind":"cursor","col":1,"row":-1e3}`, ErrInvalidField},
		"null col":          {`{"kind":"cursor","col":null,"row":1}`, ErrInvalidField},
		"missing row":       {`{"kind":"cursor","col":1}`, ErrInvalidField},
		"ping without t":    {`{"kind":"ping"}`, ErrInvalidField},
		"ping fractional t": {`{"kind":"ping","t":0.25}`, ErrInvalidField},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeClient([]byte(tc.input))
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestNameLengthCountsCharacters(t *testing.T) {
	name := strings.Repeat("é", MaxNameLength)
	msg, err := DecodeClient([]byte(`{"kind":"hello","version":1,"name":"` + name + `"}`))
	require.NoError(t, err)
	assert.Equal(t, name, msg.(Hello).Name)
}

func TestDecodeServer(t *testing.T) {
	msg, err := DecodeServer([]byte(`{"kind":"welcome","yourId":"a1","grid":{"tileSize":32,"cols":40,"rows":24}}`))
	require.NoError(t, err)
	assert.Equal(t, NewWelcome("a1", Grid{TileSize: 32, Cols: 40, Rows: 24}), msg)

	msg, err = DecodeServer([]byte(`{"kind":"players","players":[]}`))
	require.NoError(t, err)
	assert.Empty(t, msg.(Players).Players)

	msg, err = DecodeServer([]byte(`{"kind":"players","players":[{"id":"a1","name":"Ann","lastSeen":10},{"id":"b2","cursor":{"col":1,"row":2},"lastSeen":11}]}`))
	require.NoError(t, err)
	players := msg.(Players).Players
	require.Len(t, players, 2)
	assert.Equal(t, "Ann", players[0].Name)
	assert.Nil(t, players[0].Cursor)
	assert.Equal(t, &Cursor{Col: 1, Row: 2}, players[1].Cursor)

	msg, err = DecodeServer([]byte(`{"kind":"playerUpdate","player":{"id":"a1","cursor":{"col":5,"row":3},"lastSeen":99}}`))
	require.NoError(t, err)
	assert.Equal(t, NewPlayerUpdate(Player{ID: "a1", Cursor: &Cursor{Col: 5, Row: 3}, LastSeen: 99}), msg)

	msg, err = DecodeServer([]byte(`{"kind":"playerLeave","id":"a1"}`))
	require.NoError(t, err)
	assert.Equal(t, NewPlayerLeave("a1"), msg)
}

func TestDecodeServerRejects(t *testing.T) {
	cases := map[string]string{
		"zero grid":         `{"kind":"welcome","yourId":"a1","grid":{"tileSize":0,"cols":40,"rows":24}}`,
		"missing grid":      `{"kind":"welcome","yourId":"a1"}`,
		"missing id":        `{"kind":"playerLeave"}`,
		"players not array": `{"kind":"players","players":{}}`,
		"player missing id": `{"kind":"playerUpdate","player":{"lastSeen":1}}`,
		"negative cursor":   `{"kind":"playerUpdate","player":{"id":"a","lastSeen":1,"cursor":{"col":-2,"row":0}}}`,
		"client kind":       `{"kind":"cursor","col":1,"row":1}`,
		"garbage":           `hello`,
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeServer([]byte(input))
			require.Error(t, err)
		})
	}
}

func TestDecodeSnapshot(t *testing.T) {
	grid := Grid{TileSize: 32, Cols: 40, Rows: 24}
	data, err := json.Marshal(NewSnapshot(grid, []Player{{ID: "a1", Name: "Ann", LastSeen: 5}}))
	require.NoError(t, err)

	snap, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Count)
	assert.Equal(t, grid, snap.Grid)
	assert.Equal(t, "a1", snap.Players[0].ID)
}

func TestEncodedShapes(t *testing.T) {
	data, err := json.Marshal(NewPlayerUpdate(Player{ID: "a1", Name: "Ann", LastSeen: 7}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"playerUpdate","player":{"id":"a1","name":"Ann","lastSeen":7}}`, string(data))

	data, err = json.Marshal(NewPlayers(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"players","players":[]}`, string(data))

	data, err = json.Marshal(NewHello(""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"hello","version":1}`, string(data))
}

func TestGridClamp(t *testing.T) {
	g := Grid{TileSize: 32, Cols: 40, Rows: 24}

	col, row := g.Clamp(999, 999)
	assert.Equal(t, 39, col)
	assert.Equal(t, 23, row)

	col, row = g.Clamp(-3, 7)
	assert.Equal(t, 0, col)
	assert.Equal(t, 7, row)

	assert.True(t, g.Contains(39, 23))
	assert.False(t, g.Contains(40, 0))
	assert.Equal(t, 1280, g.Width())
	assert.Equal(t, 768, g.Height())
}
