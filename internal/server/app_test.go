package server

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deskmatter/internal/config"
	"deskmatter/internal/storage"
)

func testConfig(t *testing.T, port int) *config.Config {
	t.Helper()
	return &config.Config{
		Server: func() config.ServerConfig {
			cfg := testServerConfig()
			cfg.Port = port
			return cfg
		}(),
		Storage: config.StorageConfig{
			Driver:          "sqlite",
			DSN:             filepath.Join(t.TempDir(), "app.db"),
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: time.Hour,
		},
		Tray:      config.TrayConfig{Interval: 20 * time.Millisecond, Mode: "icon"},
		Scheduler: config.SchedulerConfig{Enabled: true, WorkerCount: 1, DefaultInterval: time.Minute},
		Metrics:   config.MetricsConfig{Enabled: true},
	}
}

func TestAppRun(t *testing.T) {
	port := freePort(t)
	cfg := testConfig(t, port)

	store, err := storage.New(cfg.Storage)
	require.NoError(t, err)
	defer store.Close()

	app, err := NewApp(cfg, store)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, app.Lifecycle().Running, 2*time.Second, 10*time.Millisecond)
	assert.True(t, app.Engine().IsRunning())

	client := &http.Client{Timeout: time.Second}
	req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("http://localhost:%d/tray/flash/true", port), nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, app.Flasher().Running())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Expected Run to return after cancellation")
	}

	assert.False(t, app.Lifecycle().Running())
	assert.False(t, app.Flasher().Running())
	assert.False(t, app.Engine().IsRunning())
}

func TestNewAppRejectsUnknownTrayMode(t *testing.T) {
	cfg := testConfig(t, 18089)
	cfg.Tray.Mode = "sparkle"

	_, err := NewApp(cfg, nil)
	assert.Error(t, err)
}
