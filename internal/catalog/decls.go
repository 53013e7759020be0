package catalog

// Materialization names how a model's compiled SQL is realized by the
// warehouse adapter.
type Materialization string

// Supported materializations; view is the default (spec.md §3).
const (
	MaterializationView  Materialization = "view"
	MaterializationTable Materialization = "table"
)

// ModelDecl is a parsed `.sql` model file. Identity is "<Layer>_<Name>".
// RawSQL is immutable after parse; CompiledSQL is populated by the resolver
// during pass 1 (macro substitution) and again overwritten by the compiler
// during artifact rendering only if further transformation is needed —
// in this dialect the resolver's substitution output is itself the
// artifact (spec.md §4.5).
type ModelDecl struct {
	Layer           string
	Name            string
	RawSQL          string
	CompiledSQL     string
	Materialization Materialization
	Metadata        map[string]string
}

// Identity returns the model's catalog name, "<layer>_<name>".
func (m *ModelDecl) Identity() string { return m.Layer + "_" + m.Name }

// SourceTableDecl is a non-executable DAG leaf materialized lazily the
// first time a model's `source(db,table)` macro is resolved.
type SourceTableDecl struct {
	SourceDB string
	Schema   string
	Table    string
	FQN      string
}

// ConnectorDecl is a parsed `CREATE KAFKA CONNECTOR` statement, resolved
// against the active connection profile and cluster spec.
type ConnectorDecl struct {
	Name           string
	Kind           string // one of the ConnectorKind values from internal/parser
	ClusterName    string
	Properties     map[string]string
	Version        string
	Pipelines      []string
	IsSink         bool
	ConnectionName string
	TargetSchema   string
	DagExecutable  bool

	// IncludeTables/IncludeColumns are derived from the connector's adjacent
	// schema YAML (spec.md §4.5 step 5) for a source connector: fully
	// qualified "schema.table" and "schema.table.column" entries, in
	// declaration order.
	IncludeTables  []string
	IncludeColumns []string

	// SinkFields is the sink-side equivalent: bare column names feeding
	// `field.include.list`.
	SinkFields []string

	// TargetTable overrides the topic-derived table name used to build a
	// sink's `table.name.format`. Left empty, the compiler falls back to the
	// table part of IncludeTables' entry when there is exactly one, or else
	// the connector name.
	TargetTable string
}

// SmtDecl is a parsed `CREATE KAFKA SIMPLE MESSAGE TRANSFORM` statement.
type SmtDecl struct {
	Name         string
	PresetRef    string
	Config       map[string]string
	Extend       map[string]string
	PredicateRef string
	PredicateNeg bool
	HasPredicate bool
}

// PipelineStep is one step of a PipelineDecl.
type PipelineStep struct {
	SmtName   string
	Overrides map[string]string
	Alias     string
}

// PipelineDecl is a parsed `CREATE KAFKA SIMPLE MESSAGE TRANSFORM PIPELINE`.
type PipelineDecl struct {
	Name              string
	Steps             []PipelineStep
	PipelinePredicate string
	HasPredicate      bool
}

// PredicateKind enumerates the supported predicate kinds (spec.md §3).
type PredicateKind string

// Supported predicate kinds. TopicNameMatches and HasHeaderKey require a
// pattern; RecordIsTombstone forbids one (invariant I6).
const (
	PredicateTopicNameMatches  PredicateKind = "TopicNameMatches"
	PredicateRecordIsTombstone PredicateKind = "RecordIsTombstone"
	PredicateHasHeaderKey      PredicateKind = "HasHeaderKey"
)

// PredicateDecl is a parsed `CREATE KAFKA SIMPLE MESSAGE TRANSFORM PREDICATE`.
type PredicateDecl struct {
	Name    string
	Kind    PredicateKind
	Pattern string
}

// JobDecl is a declarative external-process job descriptor, consumed by
// the job runner collaborator (internal/jobrunner).
type JobDecl struct {
	Name         string
	Workspace    string
	ModuleOrPath string
}
