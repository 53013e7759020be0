package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/foundrydata/foundry/internal/engine"
	"github.com/foundrydata/foundry/internal/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestEngineCompileEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, project.ConfigFileName), "name: demo\n")
	writeFile(t, filepath.Join(dir, "models", "staging", "orders.sql"), `SELECT id FROM raw_orders`)
	writeFile(t, filepath.Join(dir, "models", "marts", "orders_summary.sql"), `SELECT * FROM ref('staging','orders')`)

	e := engine.New(nil)
	cr, err := e.Compile(dir)
	require.NoError(t, err)
	require.NotNil(t, cr.Graph)
	assert.False(t, cr.Diagnostics.HasErrors())
	assert.Len(t, cr.Manifest, 2)
}

func TestEngineCompileReportsUnknownRef(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, project.ConfigFileName), "name: demo\n")
	writeFile(t, filepath.Join(dir, "models", "marts", "orders_summary.sql"), `SELECT * FROM ref('staging','orders')`)

	e := engine.New(nil)
	_, err := e.Compile(dir)
	assert.Error(t, err)
}
