package project

// Config is the parsed `foundry-project.yml` (spec.md §6, SPEC_FULL.md §10
// "Configuration"): project identity plus the directories discovery walks
// and the external specification files it loads before parsing models.
type Config struct {
	Name         string               `koanf:"name" yaml:"name"`
	Version      string               `koanf:"version" yaml:"version"`
	ModelsDir    string               `koanf:"models_dir" yaml:"models_dir"`
	KafkaDir     string               `koanf:"kafka_dir" yaml:"kafka_dir"`
	Warehouses   map[string]DBSpec    `koanf:"warehouses" yaml:"warehouses"`
	SourceDBs    map[string]DBSpec    `koanf:"source_databases" yaml:"source_databases"`
	KafkaCluster map[string]ClusterS  `koanf:"kafka_clusters" yaml:"kafka_clusters"`
	APISources   map[string]APISpec   `koanf:"api_sources" yaml:"api_sources"`
}

// ApplyDefaults fills in the conventional directory names a leapsql-style
// project leaves implicit, mirroring ProjectConfig.ApplyDefaults.
func (c *Config) ApplyDefaults() {
	if c.ModelsDir == "" {
		c.ModelsDir = "models"
	}
	if c.KafkaDir == "" {
		c.KafkaDir = "kafka"
	}
}

// DBSpec is the YAML shape of one warehouse or source-database entry: an
// ordered list of schemas, each with its table list. Declaration order is
// significant (catalog.ResolveSourceFQN's first-schema-wins tie-break), so
// schemas are a YAML sequence rather than the map `original_source/crates/
// catalog` uses internally — a Go map decode would not preserve YAML key
// order, silently breaking that tie-break.
type DBSpec struct {
	Schemas []SchemaEntry `koanf:"schemas" yaml:"schemas"`
}

// SchemaEntry is one named schema within a DBSpec.
type SchemaEntry struct {
	Name   string   `koanf:"name" yaml:"name"`
	Tables []string `koanf:"tables" yaml:"tables"`
}

// ClusterS is one named Kafka cluster's connection coordinates.
type ClusterS struct {
	BootstrapServers string `koanf:"bootstrap_servers" yaml:"bootstrap_servers"`
	ConnectHost      string `koanf:"connect_host" yaml:"connect_host"`
	ConnectPort      int    `koanf:"connect_port" yaml:"connect_port"`
}

// APISpec is one named external API source.
type APISpec struct {
	BaseURL  string `koanf:"base_url" yaml:"base_url"`
	AuthType string `koanf:"auth_type" yaml:"auth_type"`
}

// ConnectionsConfig is the parsed `connections.yml`: a named profile of
// connection definitions, secrets overridable by environment variables
// (spec.md §6, SPEC_FULL.md §10 "file < env < flags" layering).
type ConnectionsConfig struct {
	Profile     string                  `koanf:"profile" yaml:"profile"`
	Connections map[string]ConnectionS  `koanf:"connections" yaml:"connections"`
}

// ConnectionS is one named connection definition.
type ConnectionS struct {
	AdapterType string `koanf:"adapter_type" yaml:"adapter_type"`
	Host        string `koanf:"host" yaml:"host"`
	Port        int    `koanf:"port" yaml:"port"`
	User        string `koanf:"user" yaml:"user"`
	Password    string `koanf:"password" yaml:"password"`
	Database    string `koanf:"database" yaml:"database"`
}

// ModelSidecar is the optional `_<name>.yml` sibling of a model `.sql` file
// (SPEC_FULL.md §6, generalized from the teacher's inline SQL-comment
// frontmatter to a sibling file). Unknown fields are rejected at decode
// time; Meta is the escape hatch for anything else.
type ModelSidecar struct {
	Materialized string         `yaml:"materialized"`
	Owner        string         `yaml:"owner"`
	Tags         []string       `yaml:"tags"`
	Meta         map[string]any `yaml:"meta"`
}

// ConnectorSidecar is the optional `_<connector_name>.yml` sibling of a
// `CREATE KAFKA CONNECTOR` statement: the "adjacent schema YAML" spec.md
// §4.5 step 5 derives include-lists from. A source connector declares the
// schemas/tables (and optionally columns) Debezium should capture; a sink
// connector declares the column list and target table name instead.
// Declaration order is significant (it becomes compiled include-list
// order), so schemas is a sequence, matching DBSpec's same rationale.
type ConnectorSidecar struct {
	Schemas       []SchemaEntry `yaml:"schemas"`
	Columns       []string      `yaml:"columns"`        // fully qualified "schema.table.column", source only
	Fields        []string      `yaml:"fields"`         // bare column names, sink only
	TargetTable   string        `yaml:"target_table"`   // sink only
	DagExecutable bool          `yaml:"dag_executable"` // default false (spec.md §3)
}
