// Package project loads a foundry project off disk: `foundry-project.yml`,
// `connections.yml`, external warehouse/source-db/cluster/API-source specs,
// and every model/Kafka DDL `.sql` file, handing the result to
// internal/catalog and internal/resolver (spec.md §6, SPEC_FULL.md §6/§10).
package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/foundrydata/foundry/internal/catalog"
	"github.com/foundrydata/foundry/internal/parser"
	"github.com/foundrydata/foundry/internal/resolver"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// ConfigFileName and ConfigFileNameAlt are the two recognized project file
// names, following the teacher's `leapsql.yaml`/`leapsql.yml` convention.
const (
	ConfigFileName    = "foundry-project.yml"
	ConfigFileNameAlt = "foundry-project.yaml"
	ConnectionsFile   = "connections.yml"
	envPrefix         = "FOUNDRY_"
)

// Project is the fully loaded project: a populated catalog plus the parsed
// models ready for the resolver, and any non-fatal load warnings.
type Project struct {
	Root     string
	Config   *Config
	Catalog  *catalog.Catalog
	Models   []*resolver.ParsedModel
	Warnings []error
}

// FindProjectRoot walks up from startDir looking for a foundry-project.yml,
// mirroring the teacher's findProjectRootUpward search.
func FindProjectRoot(startDir string) string {
	dir := startDir
	for i := 0; i < 10; i++ {
		if findConfigFile(dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
	return ""
}

func findConfigFile(dir string) string {
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load reads every project input under dir and returns a Project ready for
// resolver.Resolve. Model/Kafka parse errors are collected as Warnings when
// non-fatal (a single bad file), and returned as the error otherwise (the
// project file itself missing or malformed).
func Load(dir string) (*Project, error) {
	cfgPath := findConfigFile(dir)
	if cfgPath == "" {
		return nil, fmt.Errorf("no %s or %s found under %s", ConfigFileName, ConfigFileNameAlt, dir)
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", cfgPath, err)
	}
	cfg.ApplyDefaults()

	cat := catalog.New()
	populateExternalSpecs(cat, cfg)

	if connPath := filepath.Join(dir, ConnectionsFile); fileExists(connPath) {
		conns, err := loadConnections(connPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", ConnectionsFile, err)
		}
		cat.Connections = conns
	}

	proj := &Project{Root: dir, Config: cfg, Catalog: cat}

	modelsDir := filepath.Join(dir, cfg.ModelsDir)
	if fileExists(modelsDir) {
		if err := loadModels(modelsDir, cat, proj); err != nil {
			return nil, err
		}
	}

	kafkaDir := filepath.Join(dir, cfg.KafkaDir)
	if fileExists(kafkaDir) {
		if err := loadKafkaDecls(kafkaDir, cat, proj); err != nil {
			return nil, err
		}
	}

	return proj, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func loadConfig(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConnections layers connections.yml under FOUNDRY_-prefixed environment
// overrides (file < env). `foundry-project.yml` itself is read by loadConfig
// from the file alone.
func loadConnections(path string) (*catalog.ConnectionProfile, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKeyTransform), nil); err != nil {
		return nil, err
	}

	var cfg ConnectionsConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	profile := &catalog.ConnectionProfile{
		Profile:     cfg.Profile,
		Connections: make(map[string]catalog.ConnectionDef, len(cfg.Connections)),
	}
	for name, c := range cfg.Connections {
		profile.Connections[name] = catalog.ConnectionDef{
			AdapterType: c.AdapterType,
			Host:        c.Host,
			Port:        c.Port,
			User:        c.User,
			Password:    c.Password,
			Database:    c.Database,
		}
	}
	return profile, nil
}

// envKeyTransform turns FOUNDRY_CONNECTIONS_APP_DB_PASSWORD into
// connections.app_db.password, matching koanf's "." delimiter.
func envKeyTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	rest, ok := strings.CutPrefix(s, "connections_")
	if !ok {
		return s
	}
	for _, field := range []string{"adapter_type", "host", "port", "user", "password", "database"} {
		if name, ok := strings.CutSuffix(rest, "_"+field); ok {
			return "connections." + name + "." + field
		}
	}
	return "connections." + rest
}

func populateExternalSpecs(cat *catalog.Catalog, cfg *Config) {
	for name, spec := range cfg.Warehouses {
		cat.Warehouses[name] = toDatabaseSpec(name, spec)
	}
	for name, spec := range cfg.SourceDBs {
		cat.SourceDBs[name] = toDatabaseSpec(name, spec)
	}
	for name, spec := range cfg.KafkaCluster {
		cat.Clusters[name] = &catalog.KafkaClusterSpec{
			Name: name, BootstrapServers: spec.BootstrapServers,
			ConnectHost: spec.ConnectHost, ConnectPort: spec.ConnectPort,
		}
	}
	for name, spec := range cfg.APISources {
		cat.APISources[name] = &catalog.APISourceSpec{Name: name, BaseURL: spec.BaseURL, AuthType: spec.AuthType}
	}
}

func toDatabaseSpec(name string, spec DBSpec) *catalog.DatabaseSpec {
	db := &catalog.DatabaseSpec{Name: name}
	for _, schema := range spec.Schemas {
		db.Schemas = append(db.Schemas, catalog.SchemaSpec{Name: schema.Name, Tables: schema.Tables})
	}
	return db
}

// loadModels walks modelsDir for `*.sql` files, parses each, loads its
// optional `_<name>.yml` sidecar, and inserts the resulting ModelDecl into
// cat under "<layer>_<name>" where layer is the immediate parent directory
// name (spec.md §3 model identity).
func loadModels(modelsDir string, cat *catalog.Catalog, proj *Project) error {
	return filepath.WalkDir(modelsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".sql") || strings.HasPrefix(d.Name(), "_") {
			return nil
		}
		layer := filepath.Base(filepath.Dir(path))
		name := strings.TrimSuffix(filepath.Base(path), ".sql")

		raw, err := os.ReadFile(path)
		if err != nil {
			proj.Warnings = append(proj.Warnings, fmt.Errorf("reading %s: %w", path, err))
			return nil
		}
		file, diags := parser.Parse(string(raw))
		if diags.HasErrors() {
			proj.Warnings = append(proj.Warnings, fmt.Errorf("parsing %s: %v", path, diags.Errors))
			return nil
		}

		decl := &catalog.ModelDecl{Layer: layer, Name: name, RawSQL: string(raw), Materialization: catalog.MaterializationView}
		if sidecar, ok := loadModelSidecar(path); ok {
			if sidecar.Materialized == string(catalog.MaterializationTable) {
				decl.Materialization = catalog.MaterializationTable
			}
			decl.Metadata = map[string]string{"owner": sidecar.Owner}
		}

		if err := cat.Insert(catalog.KindModel, decl.Identity(), decl); err != nil {
			proj.Warnings = append(proj.Warnings, err)
			return nil
		}
		proj.Models = append(proj.Models, &resolver.ParsedModel{Decl: decl, MacroCalls: file.MacroCalls})
		return nil
	})
}

func loadModelSidecar(sqlPath string) (*ModelSidecar, bool) {
	sidecarPath := filepath.Join(filepath.Dir(sqlPath), "_"+strings.TrimSuffix(filepath.Base(sqlPath), ".sql")+".yml")
	raw, err := os.ReadFile(sidecarPath)
	if err != nil {
		return nil, false
	}
	var sc ModelSidecar
	dec := yamlv3.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, false
	}
	return &sc, true
}

// loadConnectorSidecar reads the `_<connectorName>.yml` sibling of the
// `.sql` file at path, if any, following the same sibling-file convention
// as loadModelSidecar (spec.md §4.5 step 5's "adjacent schema YAML").
func loadConnectorSidecar(path, connectorName string) (*ConnectorSidecar, bool) {
	sidecarPath := filepath.Join(filepath.Dir(path), "_"+connectorName+".yml")
	raw, err := os.ReadFile(sidecarPath)
	if err != nil {
		return nil, false
	}
	var sc ConnectorSidecar
	dec := yamlv3.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, false
	}
	return &sc, true
}

// applyConnectorSidecar derives decl's include-lists from sidecar, in
// declaration order, per spec.md §4.5 step 5.
func applyConnectorSidecar(decl *catalog.ConnectorDecl, sidecar *ConnectorSidecar) {
	for _, schema := range sidecar.Schemas {
		for _, table := range schema.Tables {
			decl.IncludeTables = append(decl.IncludeTables, schema.Name+"."+table)
		}
	}
	decl.IncludeColumns = append(decl.IncludeColumns, sidecar.Columns...)
	decl.SinkFields = append(decl.SinkFields, sidecar.Fields...)
	if sidecar.TargetTable != "" {
		decl.TargetTable = sidecar.TargetTable
	}
	decl.DagExecutable = sidecar.DagExecutable
}

// loadKafkaDecls walks kafkaDir for `*.sql` files containing Kafka DDL
// statements (connectors, SMTs, pipelines, predicates) and inserts each
// parsed declaration into the catalog.
func loadKafkaDecls(kafkaDir string, cat *catalog.Catalog, proj *Project) error {
	return filepath.WalkDir(kafkaDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			proj.Warnings = append(proj.Warnings, fmt.Errorf("reading %s: %w", path, err))
			return nil
		}
		file, diags := parser.Parse(string(raw))
		if diags.HasErrors() {
			proj.Warnings = append(proj.Warnings, fmt.Errorf("parsing %s: %v", path, diags.Errors))
			return nil
		}
		for _, stmt := range file.Statements {
			if err := insertKafkaStmt(path, cat, stmt); err != nil {
				proj.Warnings = append(proj.Warnings, fmt.Errorf("%s: %w", path, err))
			}
		}
		return nil
	})
}

func insertKafkaStmt(path string, cat *catalog.Catalog, stmt parser.Statement) error {
	switch s := stmt.(type) {
	case *parser.CreateConnectorStmt:
		decl := connectorFromStmt(s)
		if sidecar, ok := loadConnectorSidecar(path, s.Name); ok {
			applyConnectorSidecar(decl, sidecar)
		}
		return cat.Insert(catalog.KindConnector, s.Name, decl)
	case *parser.CreateSmtStmt:
		return cat.Insert(catalog.KindSmt, s.Name, smtFromStmt(s))
	case *parser.CreateSmtPipelineStmt:
		return cat.Insert(catalog.KindPipeline, s.Name, pipelineFromStmt(s))
	case *parser.CreateSmtPredicateStmt:
		return cat.Insert(catalog.KindPredicate, s.Name, predicateFromStmt(s))
	default:
		return nil // a SELECT model statement found in a kafka/ file; not this loader's concern
	}
}

func kvMap(kvs []parser.KeyValue) map[string]string {
	if len(kvs) == 0 {
		return nil
	}
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value
	}
	return m
}

func connectorFromStmt(s *parser.CreateConnectorStmt) *catalog.ConnectorDecl {
	return &catalog.ConnectorDecl{
		Name:           s.Name,
		Kind:           string(s.Kind),
		ClusterName:    s.ClusterName,
		Properties:     kvMap(s.Properties),
		Version:        s.Version,
		Pipelines:      append([]string(nil), s.Pipelines...),
		IsSink:         s.IsSink,
		ConnectionName: s.ConnectionName,
		TargetSchema:   s.TargetSchema,
	}
}

func smtFromStmt(s *parser.CreateSmtStmt) *catalog.SmtDecl {
	return &catalog.SmtDecl{
		Name:         s.Name,
		PresetRef:    s.PresetRef,
		Config:       kvMap(s.Config),
		Extend:       kvMap(s.Extend),
		PredicateRef: s.PredicateRef,
		PredicateNeg: s.PredicateNeg,
		HasPredicate: s.HasPredicate,
	}
}

func pipelineFromStmt(s *parser.CreateSmtPipelineStmt) *catalog.PipelineDecl {
	steps := make([]catalog.PipelineStep, len(s.Steps))
	for i, step := range s.Steps {
		steps[i] = catalog.PipelineStep{SmtName: step.SmtName, Overrides: kvMap(step.Overrides), Alias: step.Alias}
	}
	return &catalog.PipelineDecl{
		Name:              s.Name,
		Steps:             steps,
		PipelinePredicate: s.PipelinePredicate,
		HasPredicate:      s.HasPredicate,
	}
}

func predicateFromStmt(s *parser.CreateSmtPredicateStmt) *catalog.PredicateDecl {
	return &catalog.PredicateDecl{Name: s.Name, Kind: catalog.PredicateKind(s.Kind), Pattern: s.Pattern}
}
