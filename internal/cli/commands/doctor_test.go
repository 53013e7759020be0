package commands

import (
	"testing"

	"github.com/foundrydata/foundry/internal/catalog"
	"github.com/foundrydata/foundry/internal/project"
	"github.com/stretchr/testify/assert"
)

func TestConnectionChecks_NoConnections(t *testing.T) {
	cat := catalog.New()
	checks := connectionChecks(cat)
	assert.Len(t, checks, 1)
	assert.Equal(t, "warn", checks[0].Status)
}

func TestConnectionChecks_DuckDBPasses(t *testing.T) {
	cat := catalog.New()
	cat.Connections = &catalog.ConnectionProfile{
		Connections: map[string]catalog.ConnectionDef{"dev": {AdapterType: "duckdb"}},
	}
	checks := connectionChecks(cat)
	assert.Len(t, checks, 1)
	assert.Equal(t, "pass", checks[0].Status)
}

func TestConnectionChecks_PostgresMissingFieldsErrors(t *testing.T) {
	cat := catalog.New()
	cat.Connections = &catalog.ConnectionProfile{
		Connections: map[string]catalog.ConnectionDef{"prod": {AdapterType: "postgres"}},
	}
	checks := connectionChecks(cat)
	assert.Len(t, checks, 1)
	assert.Equal(t, "error", checks[0].Status)
}

func TestConnectionChecks_PostgresCompletePasses(t *testing.T) {
	cat := catalog.New()
	cat.Connections = &catalog.ConnectionProfile{
		Connections: map[string]catalog.ConnectionDef{
			"prod": {AdapterType: "postgres", Host: "db", Port: 5432, User: "u", Database: "d"},
		},
	}
	checks := connectionChecks(cat)
	assert.Len(t, checks, 1)
	assert.Equal(t, "pass", checks[0].Status)
}

func TestConnectionChecks_UnknownAdapterErrors(t *testing.T) {
	cat := catalog.New()
	cat.Connections = &catalog.ConnectionProfile{
		Connections: map[string]catalog.ConnectionDef{"x": {AdapterType: "oracle"}},
	}
	checks := connectionChecks(cat)
	assert.Equal(t, "error", checks[0].Status)
}

func TestClusterChecks_MissingConnectEndpointErrors(t *testing.T) {
	cat := catalog.New()
	cat.Clusters = map[string]*catalog.KafkaClusterSpec{"main": {Name: "main"}}
	checks := clusterChecks(cat)
	assert.Len(t, checks, 1)
	assert.Equal(t, "error", checks[0].Status)
}

func TestClusterChecks_CompletePasses(t *testing.T) {
	cat := catalog.New()
	cat.Clusters = map[string]*catalog.KafkaClusterSpec{
		"main": {Name: "main", ConnectHost: "localhost", ConnectPort: 8083},
	}
	checks := clusterChecks(cat)
	assert.Equal(t, "pass", checks[0].Status)
}

func TestDoctorChecks_SurfacesLoadWarnings(t *testing.T) {
	proj := &project.Project{
		Config:   &project.Config{ModelsDir: "models"},
		Catalog:  catalog.New(),
		Warnings: []error{assert.AnError},
	}
	checks := doctorChecks(proj)

	var found bool
	for _, c := range checks {
		if c.Name == "project load" && c.Status == "warn" {
			found = true
		}
	}
	assert.True(t, found, "expected a warn check for the load warning")
}
