package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCompileCommand(t *testing.T) {
	cmd := NewCompileCommand()
	assert.Equal(t, "compile", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Example)
	assert.NotNil(t, cmd.Flags().Lookup("watch"))
}

func TestNewRunCommand(t *testing.T) {
	cmd := NewRunCommand()
	assert.Equal(t, "run", cmd.Use)
	for _, flag := range []string{"select", "connection", "cluster"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewDAGCommand(t *testing.T) {
	cmd := NewDAGCommand()
	assert.Equal(t, "dag", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("dot"))
}

func TestNewListCommand(t *testing.T) {
	cmd := NewListCommand()
	assert.Equal(t, "list", cmd.Use)
	assert.Equal(t, "ls", cmd.Aliases[0])
}

func TestNewValidateCommand(t *testing.T) {
	cmd := NewValidateCommand()
	assert.Equal(t, "validate", cmd.Use)
}

func TestNewDoctorCommand(t *testing.T) {
	cmd := NewDoctorCommand()
	assert.Equal(t, "doctor", cmd.Use)
}

func TestNewServeCommand(t *testing.T) {
	cmd := NewServeCommand()
	assert.Equal(t, "serve", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("port"))
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3", "2026-01-01", "abc123")
	assert.Equal(t, "version", cmd.Use)
}
