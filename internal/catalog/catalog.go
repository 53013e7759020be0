// Package catalog is the in-memory, typed store of every declaration
// parsed from a project, plus read-only handles onto externally-loaded
// specifications (warehouse/source databases, Kafka clusters, API sources,
// connection profiles).
package catalog

import (
	"fmt"
	"sort"
	"sync"
)

// Kind names a catalog namespace.
type Kind string

// Supported catalog kinds.
const (
	KindModel     Kind = "model"
	KindSmt       Kind = "smt"
	KindPipeline  Kind = "pipeline"
	KindPredicate Kind = "predicate"
	KindConnector Kind = "connector"
	KindJob       Kind = "job"
)

// key is the (kind,name) identity every declaration is stored under.
type key struct {
	kind Kind
	name string
}

// DuplicateDecl is returned by Insert when (kind,name) is already taken.
type DuplicateDecl struct {
	Kind Kind
	Name string
}

func (e *DuplicateDecl) Error() string {
	return fmt.Sprintf("duplicate %s declaration: %q", e.Kind, e.Name)
}

// NotFound is returned by Get when (kind,name) has no declaration.
type NotFound struct {
	Kind Kind
	Name string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s not found: %q", e.Kind, e.Name)
}

// UnknownSource is returned by ResolveSourceFQN when no external spec
// declares the table under any schema.
type UnknownSource struct {
	DB    string
	Table string
}

func (e *UnknownSource) Error() string {
	return fmt.Sprintf("unknown source table %q in database %q", e.Table, e.DB)
}

// AmbiguousSource is a warning (not fatal) emitted by ResolveSourceFQN when
// more than one schema in the same database declares the table; the tie is
// broken by declaration order, first wins (spec.md §4.2).
type AmbiguousSource struct {
	DB      string
	Table   string
	Schemas []string
	Chosen  string
}

func (e *AmbiguousSource) Error() string {
	return fmt.Sprintf("table %q is ambiguous in database %q across schemas %v, chose %q", e.Table, e.DB, e.Schemas, e.Chosen)
}

// Catalog is the single compile-session store of parsed declarations and
// external specification lookups. Safe for concurrent read access once
// populated; Insert is expected to run single-threaded during the parse
// phase, matching the teacher's registry which only needs write locking for
// its own population step.
type Catalog struct {
	mu    sync.RWMutex
	decls map[key]any

	Warehouses  map[string]*DatabaseSpec
	SourceDBs   map[string]*DatabaseSpec
	Clusters    map[string]*KafkaClusterSpec
	APISources  map[string]*APISourceSpec
	Connections *ConnectionProfile
}

// DatabaseSpec is an external warehouse/source-db specification: a named
// database with an ordered list of schemas, each declaring the tables it
// contains. Declaration order is significant for AmbiguousSource tie-breaks.
type DatabaseSpec struct {
	Name    string
	Schemas []SchemaSpec
}

// SchemaSpec is one schema within a DatabaseSpec.
type SchemaSpec struct {
	Name   string
	Tables []string
}

// KafkaClusterSpec is an external Kafka cluster definition.
type KafkaClusterSpec struct {
	Name             string
	BootstrapServers string
	ConnectHost      string
	ConnectPort      int
}

// APISourceSpec is an external API-backed source definition (consumed by
// the job runner collaborator, not by the core compiler).
type APISourceSpec struct {
	Name     string
	BaseURL  string
	AuthType string
}

// ConnectionProfile is the active set of named connection definitions
// (adapter type, host, credentials) loaded from `connections.yml`.
type ConnectionProfile struct {
	Profile     string
	Connections map[string]ConnectionDef
}

// ConnectionDef is one named connection within a ConnectionProfile.
type ConnectionDef struct {
	AdapterType string
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		decls:      make(map[key]any),
		Warehouses: make(map[string]*DatabaseSpec),
		SourceDBs:  make(map[string]*DatabaseSpec),
		Clusters:   make(map[string]*KafkaClusterSpec),
		APISources: make(map[string]*APISourceSpec),
	}
}

// Insert registers decl under (kind,name). Returns *DuplicateDecl if the
// name is already taken in that namespace (invariant I7).
func (c *Catalog) Insert(kind Kind, name string, decl any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key{kind: kind, name: name}
	if _, exists := c.decls[k]; exists {
		return &DuplicateDecl{Kind: kind, Name: name}
	}
	c.decls[k] = decl
	return nil
}

// Get looks up a declaration by (kind,name). Returns *NotFound if absent.
func (c *Catalog) Get(kind Kind, name string) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if decl, ok := c.decls[key{kind: kind, name: name}]; ok {
		return decl, nil
	}
	return nil, &NotFound{Kind: kind, Name: name}
}

// Has reports whether (kind,name) exists, without an allocation for the
// NotFound error — used by the resolver's cross-reference checks.
func (c *Catalog) Has(kind Kind, name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.decls[key{kind: kind, name: name}]
	return ok
}

// Names returns every registered name for kind, sorted, for deterministic
// listing (`foundry list`) and DAG node enumeration.
func (c *Catalog) Names(kind Kind) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var names []string
	for k := range c.decls {
		if k.kind == kind {
			names = append(names, k.name)
		}
	}
	sort.Strings(names)
	return names
}

// ResolveSourceFQN resolves source(db,table) to a fully-qualified name
// "<db>.<schema>.<table>" by scanning warehouse specs first, then source-db
// specs (spec.md §4.2). Within a database's spec, the first schema in
// declaration order containing the table wins; if more than one schema
// contains it, an *AmbiguousSource warning is returned alongside the
// resolved FQN (not fatal — the caller decides whether to surface it).
func (c *Catalog) ResolveSourceFQN(db, table string) (fqn string, warning error, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	spec, ok := c.Warehouses[db]
	if !ok {
		spec, ok = c.SourceDBs[db]
	}
	if !ok {
		return "", nil, &UnknownSource{DB: db, Table: table}
	}

	var matches []string
	for _, schema := range spec.Schemas {
		for _, t := range schema.Tables {
			if t == table {
				matches = append(matches, schema.Name)
				break
			}
		}
	}

	if len(matches) == 0 {
		return "", nil, &UnknownSource{DB: db, Table: table}
	}

	chosen := matches[0]
	fqn = fmt.Sprintf("%s.%s.%s", db, chosen, table)
	if len(matches) > 1 {
		warning = &AmbiguousSource{DB: db, Table: table, Schemas: matches, Chosen: chosen}
	}
	return fqn, warning, nil
}
