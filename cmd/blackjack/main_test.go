package main

import (
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/server"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"})
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, kctx
}

func TestParseServerFlags(t *testing.T) {
	cli, kctx := parse(t, "server", "--addr", "0.0.0.0:8080", "--log-level", "debug", "--seed", "42")
	assert.Equal(t, "server", kctx.Command())
	assert.Equal(t, "blackjack.hcl", cli.Server.Config)
	require.NotNil(t, cli.Server.Seed)
	assert.Equal(t, int64(42), *cli.Server.Seed)

	cfg := server.DefaultConfig()
	require.NoError(t, cli.Server.applyOverrides(cfg))
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestSeedIsOptional(t *testing.T) {
	cli, _ := parse(t, "server")
	assert.Nil(t, cli.Server.Seed)
}

func TestBadAddrOverride(t *testing.T) {
	for _, addr := range []string{"localhost", "localhost:http"} {
		cmd := ServerCmd{Addr: addr}
		assert.Error(t, cmd.applyOverrides(server.DefaultConfig()), addr)
	}
}

func TestParseClientFlags(t *testing.T) {
	cli, kctx := parse(t, "client", "--name", " Alice ", "--no-color")
	assert.Equal(t, "client", kctx.Command())
	assert.Equal(t, "http://localhost:3000", cli.Client.Server)
	assert.True(t, cli.Client.NoColor)
	assert.Equal(t, "Alice", cli.Client.displayName())

	t.Setenv("USER", "")
	assert.Equal(t, "Player", (&ClientCmd{}).displayName())
	t.Setenv("USER", "carol")
	assert.Equal(t, "carol", (&ClientCmd{}).displayName())
}
