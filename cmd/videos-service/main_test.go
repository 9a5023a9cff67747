package main

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/princekumarofficial/videos-service/internal/config"
	"github.com/princekumarofficial/videos-service/internal/storage/sqlite"
	"github.com/princekumarofficial/videos-service/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		Env:        config.EnvProduction,
		HTTPServer: config.HTTPServer{Address: "127.0.0.1:0"},
		Storage: config.Storage{
			Driver:           config.DriverSQLite,
			SQLitePath:       filepath.Join(t.TempDir(), "videos.db"),
			AutoCreateSchema: true,
		},
		RateLimit: config.RateLimit{WritesPerMinute: 60},
	}
}

func stopped() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	stop <- syscall.SIGTERM
	return stop
}

func TestRun_StopsOnSignal(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.Redis.Address = mr.Addr()

	require.NoError(t, run(cfg, stopped()))
}

func TestRun_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(t)
	cfg.Redis.Address = addr

	err := run(cfg, stopped())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")

	// the store was released and the schema created before the failure
	db, err := sqlite.NewSQLite(cfg.Storage.SQLitePath)
	require.NoError(t, err)
	defer db.Close()
	assert.NoError(t, db.CreateVideo(context.Background(), types.Video{ID: 1, Name: "after"}))
}

func TestRun_UnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Driver = "mysql"

	err := run(cfg, stopped())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialize database")
}

func TestRun_BadListenAddress(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTPServer.Address = "127.0.0.1:-1"

	err := run(cfg, stopped())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on")
}
