package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ameledin/studiovault/internal/client/config"
)

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.CollectionID = "c1"

	var out bytes.Buffer
	app, err := NewApp(cfg, &out)
	require.NoError(t, err)
	return app, &out
}

func TestNewApp_RequiresCollectionID(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	_, err := NewApp(cfg, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRun_NoFiles(t *testing.T) {
	app, _ := newTestApp(t)

	_, err := app.Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestRun_MissingFile(t *testing.T) {
	app, _ := newTestApp(t)

	_, err := app.Run(context.Background(), []string{"/does/not/exist.jpg"})
	assert.Error(t, err)
}
