package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	require.NoError(t, testConfig().validate())

	cases := map[string]func(*Config){
		"cert without key": func(c *Config) { c.tlsCert = "cert.pem" },
		"key without cert": func(c *Config) { c.tlsKey = "key.pem" },
		"port zero":        func(c *Config) { c.port = 0 },
		"port too high":    func(c *Config) { c.port = 65536 },
		"no columns":       func(c *Config) { c.cols = 0 },
		"negative rows":    func(c *Config) { c.rows = -1 },
		"no tile size":     func(c *Config) { c.tileSize = 0 },
		"no send buffer":   func(c *Config) { c.sendBuffer = 0 },
		"negative idle":    func(c *Config) { c.idleTimeout = -time.Second },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestValidateClient(t *testing.T) {
	cfg := testConfig()
	cfg.url = "ws://localhost:8080/ws"
	require.NoError(t, cfg.validateClient())

	cfg.name = strings.Repeat("é", 24)
	require.NoError(t, cfg.validateClient())

	cfg.name = strings.Repeat("é", 25)
	assert.Error(t, cfg.validateClient())

	cfg.name = ""
	cfg.url = ""
	assert.Error(t, cfg.validateClient())
}

func TestFlagsFromEnvironment(t *testing.T) {
	t.Setenv("CURSORGRID_COLS", "12")
	t.Setenv("CURSORGRID_TILE_SIZE", "16")
	t.Setenv("CURSORGRID_PORT", "9000")
	t.Setenv("CURSORGRID_IDLE_TIMEOUT", "10m")

	cfg := &Config{}
	cmd := newCmd(cfg)

	require.NoError(t, cmd.ParseFlags([]string{"--port", "9100"}))
	cmd.PreRun(cmd, nil)

	assert.Equal(t, 12, cfg.cols)
	assert.Equal(t, 24, cfg.rows)
	assert.Equal(t, 16, cfg.tileSize)
	assert.Equal(t, 9100, cfg.port, "command line wins over environment")
	assert.Equal(t, 16, cfg.sendBuffer)
	assert.Equal(t, 10*time.Minute, cfg.idleTimeout)
	assert.NoError(t, cfg.validate())
}

func TestSubcommandFlags(t *testing.T) {
	t.Setenv("CURSORGRID_NAME", "robo")

	cfg := &Config{}
	root := newCmd(cfg)

	bot, _, err := root.Find([]string{"bot"})
	require.NoError(t, err)
	require.Equal(t, "bot", bot.Name())

	require.NoError(t, bot.ParseFlags([]string{"--seed", "7", "--duration", "2s"}))
	bot.PreRun(bot, nil)

	assert.Equal(t, uint64(7), cfg.seed)
	assert.Equal(t, "2s", cfg.duration.String())
	assert.Equal(t, "robo", cfg.name)
	assert.Equal(t, "ws://localhost:8080/ws", cfg.url)

	join, _, err := root.Find([]string{"join"})
	require.NoError(t, err)
	assert.NotNil(t, join.Flags().Lookup("url"))
	assert.Nil(t, join.Flags().Lookup("png"))
}
