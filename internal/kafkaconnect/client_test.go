package kafkaconnect_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foundrydata/foundry/internal/catalog"
	"github.com/foundrydata/foundry/internal/dag"
	"github.com/foundrydata/foundry/internal/kafkaconnect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeployConnectorPutsConfigToRESTAPI(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := kafkaconnect.NewClient(srv.URL)
	node := &dag.Node{
		Name:             "orders_src",
		Kind:             dag.KindConnector,
		Executable:       true,
		CompiledArtifact: "connector.class=io.debezium.connector.postgresql.PostgresConnector\ntasks.max=1",
		Data:             &catalog.ConnectorDecl{Name: "orders_src"},
	}

	require.NoError(t, c.DeployConnector(context.Background(), node))
	assert.Equal(t, "/connectors/orders_src/config", gotPath)
	assert.Equal(t, "1", gotBody["tasks.max"])
}

func TestDeployConnectorReturnsErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := kafkaconnect.NewClient(srv.URL)
	node := &dag.Node{Name: "x", Data: &catalog.ConnectorDecl{Name: "x"}, CompiledArtifact: "a=b"}
	assert.Error(t, c.DeployConnector(context.Background(), node))
}

func TestParseFlatConfigRoundTrips(t *testing.T) {
	cfg, err := kafkaconnect.ParseFlatConfig("a=1\nb=2")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, cfg)
}
