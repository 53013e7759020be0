package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/foundrydata/foundry/internal/cli"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeDemoProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "foundry-project.yml"), `
name: demo
source_databases:
  app_db:
    schemas:
      - name: public
        tables: [customers]
`)
	writeFile(t, filepath.Join(dir, "models", "staging", "customers.sql"), `SELECT * FROM source('app_db','customers')`)
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCompileAgainstDemoProject(t *testing.T) {
	dir := writeDemoProject(t)
	out, err := runCLI(t, "compile", "--project", dir, "--output", "markdown")
	require.NoError(t, err)
	require.Contains(t, out, "staging_customers")
}

func TestListAgainstDemoProject(t *testing.T) {
	dir := writeDemoProject(t)
	out, err := runCLI(t, "list", "--project", dir, "--output", "markdown")
	require.NoError(t, err)
	require.Contains(t, out, "staging_customers")
}

func TestDAGAgainstDemoProject(t *testing.T) {
	dir := writeDemoProject(t)
	out, err := runCLI(t, "dag", "--project", dir, "--output", "markdown")
	require.NoError(t, err)
	require.Contains(t, out, "Level")
}

func TestValidateAgainstDemoProject(t *testing.T) {
	dir := writeDemoProject(t)
	out, err := runCLI(t, "validate", "--project", dir)
	require.NoError(t, err)
	require.Contains(t, out, "valid")
}

func TestDoctorAgainstDemoProject(t *testing.T) {
	dir := writeDemoProject(t)
	out, err := runCLI(t, "doctor", "--project", dir)
	require.NoError(t, err)
	require.Contains(t, out, "connections.yml")
}

func TestDoctorReportsIncompletePostgresConnection(t *testing.T) {
	dir := writeDemoProject(t)
	writeFile(t, filepath.Join(dir, "connections.yml"), `
profile: default
connections:
  prod:
    adapter_type: postgres
`)
	_, err := runCLI(t, "doctor", "--project", dir)
	require.Error(t, err)
}

func TestValidateReportsUnknownSourceTable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "foundry-project.yml"), "name: demo\n")
	writeFile(t, filepath.Join(dir, "models", "staging", "orders.sql"), `SELECT * FROM source('app_db','orders')`)

	_, err := runCLI(t, "validate", "--project", dir)
	require.Error(t, err)
}
