package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/foundrydata/foundry/internal/catalog"
)

// ConnectorArtifact is the rendered Kafka Connect config for one connector,
// plus the SMT aliases (in pipeline-step order) and predicate names it
// references — both needed by the manifest and by property tests P5/P6.
type ConnectorArtifact struct {
	Config           map[string]string
	TransformAliases []string
	PredicateNames   []string
	Warnings         []string
}

// connectorClassByKind maps a connector's declared KIND to the Kafka
// Connect connector.class Kafka Connect will load, following the
// original's per-kind tagged KafkaSourceConnectorConfig/
// KafkaSinkConnectorConfig enum (original_source/crates/components/src/
// kafka/connector.rs:246,979). Kind values match internal/parser/ast.go's
// ConnectorKind constants.
var connectorClassByKind = map[string]string{
	"debezium_pg_source":  "io.debezium.connector.postgresql.PostgresConnector",
	"debezium_pg_sink":    "io.debezium.connector.jdbc.JdbcSinkConnector",
	"confluent_pg_source": "io.confluent.connect.jdbc.JdbcSourceConnector",
	"confluent_pg_sink":   "io.confluent.connect.jdbc.JdbcSinkConnector",
}

// defaultTasksMax is the Kafka Connect default task count absent an
// explicit override, matching the original's `tasks_max` field default.
const defaultTasksMax = "1"

// CompileConnector renders a connector's full Kafka Connect config following
// the seven-step build order (spec.md §4.5).
func (c *Compiler) CompileConnector(conn *catalog.ConnectorDecl) (*ConnectorArtifact, error) {
	art := &ConnectorArtifact{Config: make(map[string]string)}

	// Step 1: seed with connector-level properties.
	for k, v := range conn.Properties {
		art.Config[k] = v
	}

	// Step 1b: derive connector.class/tasks.max from the declared KIND,
	// only for keys not already set by step 1 (P5: every artifact carries
	// both).
	class, ok := connectorClassByKind[conn.Kind]
	if !ok {
		if _, explicit := art.Config["connector.class"]; !explicit {
			return nil, fmt.Errorf("connector %q: unknown kind %q, cannot derive connector.class", conn.Name, conn.Kind)
		}
	} else {
		setIfAbsent(art.Config, "connector.class", class)
	}
	setIfAbsent(art.Config, "tasks.max", defaultTasksMax)

	// Step 2: inject connection metadata from the profile, only for keys
	// not already set by step 1.
	if err := c.injectConnectionMetadata(conn, art); err != nil {
		return nil, err
	}

	// Step 3: inject bootstrap.servers from the cluster, and topic.prefix
	// for sources, both only if absent.
	if conn.ClusterName != "" {
		cluster, ok := c.cat.Clusters[conn.ClusterName]
		if !ok {
			return nil, fmt.Errorf("connector %q: unknown cluster %q", conn.Name, conn.ClusterName)
		}
		setIfAbsent(art.Config, "bootstrap.servers", cluster.BootstrapServers)
	}
	if !conn.IsSink {
		setIfAbsent(art.Config, "topic.prefix", conn.Name)
	}

	// Step 4: sinks set table.name.format from the target schema and the
	// topic-derived table name.
	if conn.IsSink {
		table := conn.TargetTable
		if table == "" && len(conn.IncludeTables) == 1 {
			table = lastSegment(conn.IncludeTables[0])
		}
		if table == "" {
			table = conn.Name
		}
		setIfAbsent(art.Config, "table.name.format", conn.TargetSchema+"."+table)
	}

	// Step 5: derive include-lists from the adjacent schema YAML.
	if !conn.IsSink {
		if len(conn.IncludeTables) > 0 {
			setIfAbsent(art.Config, "table.include.list", strings.Join(conn.IncludeTables, ","))
		}
		if len(conn.IncludeColumns) > 0 {
			setIfAbsent(art.Config, "column.include.list", strings.Join(conn.IncludeColumns, ","))
		}
	} else if len(conn.SinkFields) > 0 {
		setIfAbsent(art.Config, "field.include.list", strings.Join(conn.SinkFields, ","))
	}

	// Step 6: resolve transforms pipeline-by-pipeline, step-by-step, in
	// declaration order.
	predicateSet := map[string]bool{}
	var transformNames []string
	for _, pipelineName := range conn.Pipelines {
		pipeline, err := c.cat.Get(catalog.KindPipeline, pipelineName)
		if err != nil {
			return nil, fmt.Errorf("connector %q: %w", conn.Name, err)
		}
		p := pipeline.(*catalog.PipelineDecl)
		for _, step := range p.Steps {
			alias := step.Alias
			if alias == "" {
				alias = p.Name + "_" + step.SmtName
			}
			cfg, predicateName, negate, hasPredicate, err := c.resolveStepConfig(step)
			if err != nil {
				return nil, fmt.Errorf("connector %q: pipeline %q: %w", conn.Name, p.Name, err)
			}
			if typ, ok := cfg["type"]; ok {
				cfg["type"] = canonicalizeTransformType(typ)
				if _, err := LiftTransform(cfg["type"], cfg); err != nil {
					return nil, fmt.Errorf("connector %q: pipeline %q: transform %q: %w", conn.Name, p.Name, alias, err)
				}
			}
			transformNames = append(transformNames, alias)
			art.Config[fmt.Sprintf("transforms.%s.type", alias)] = cfg["type"]
			for _, k := range sortedKeys(cfg) {
				if k == "type" {
					continue
				}
				art.Config[fmt.Sprintf("transforms.%s.%s", alias, k)] = cfg[k]
			}
			if hasPredicate {
				art.Config[fmt.Sprintf("transforms.%s.predicate", alias)] = predicateName
				if negate {
					art.Config[fmt.Sprintf("transforms.%s.negate", alias)] = "true"
				}
				predicateSet[predicateName] = true
			}
		}
	}
	if len(transformNames) > 0 {
		art.Config["transforms"] = strings.Join(transformNames, ",")
	}
	art.TransformAliases = transformNames

	// Step 7: collect predicates referenced by any resolved step.
	if len(predicateSet) > 0 {
		names := make([]string, 0, len(predicateSet))
		for n := range predicateSet {
			names = append(names, n)
		}
		sort.Strings(names)
		art.PredicateNames = names
		art.Config["predicates"] = strings.Join(names, ",")
		for _, name := range names {
			pred, err := c.cat.Get(catalog.KindPredicate, name)
			if err != nil {
				return nil, fmt.Errorf("connector %q: %w", conn.Name, err)
			}
			p := pred.(*catalog.PredicateDecl)
			art.Config[fmt.Sprintf("predicates.%s.type", name)] = predicateClass(p.Kind)
			if p.Pattern != "" {
				art.Config[fmt.Sprintf("predicates.%s.pattern", name)] = p.Pattern
			}
		}
	}

	return art, nil
}

// resolveStepConfig computes one pipeline step's effective SMT config as
// builtin(preset) ⊕ smt.config ⊕ smt.extend ⊕ step.overrides, later layers
// winning (spec.md §4.5 step 6), and returns the predicate it binds, if any.
// Predicate binding comes only from the SMT declaration itself; a
// pipeline-level predicate is parsed and retained on the PipelineDecl but
// deliberately not applied here (spec.md design note on that limitation).
func (c *Compiler) resolveStepConfig(step catalog.PipelineStep) (cfg map[string]string, predicateName string, negate bool, hasPredicate bool, err error) {
	var layers []map[string]string

	if preset, ok := catalog.BuiltinPreset(step.SmtName); ok {
		layers = append(layers, preset)
		cfg = mergeConfig(append(layers, step.Overrides)...)
		return cfg, "", false, false, nil
	}

	decl, err := c.cat.Get(catalog.KindSmt, step.SmtName)
	if err != nil {
		return nil, "", false, false, err
	}
	smt := decl.(*catalog.SmtDecl)

	if smt.PresetRef != "" {
		if preset, ok := catalog.BuiltinPreset(smt.PresetRef); ok {
			layers = append(layers, preset)
		} else {
			chain, _, _, _, cerr := c.resolveStepConfig(catalog.PipelineStep{SmtName: smt.PresetRef})
			if cerr != nil {
				return nil, "", false, false, cerr
			}
			layers = append(layers, chain)
		}
	}
	layers = append(layers, smt.Config, smt.Extend, step.Overrides)
	cfg = mergeConfig(layers...)

	if smt.HasPredicate {
		hasPredicate = true
		predicateName = smt.PredicateRef
		negate = smt.PredicateNeg
	}
	return cfg, predicateName, negate, hasPredicate, nil
}

func (c *Compiler) injectConnectionMetadata(conn *catalog.ConnectorDecl, art *ConnectorArtifact) error {
	if conn.ConnectionName == "" {
		return nil
	}
	if c.cat.Connections == nil {
		return fmt.Errorf("connector %q: no connection profile loaded", conn.Name)
	}
	def, ok := c.cat.Connections.Connections[conn.ConnectionName]
	if !ok {
		return fmt.Errorf("connector %q: unknown connection %q", conn.Name, conn.ConnectionName)
	}

	if conn.IsSink {
		url := fmt.Sprintf("jdbc:%s://%s:%d/%s", def.AdapterType, def.Host, def.Port, def.Database)
		warnInjected(art, "connection.url", url)
		warnInjected(art, "connection.user", def.User)
		warnInjected(art, "connection.password", def.Password)
		return nil
	}

	warnInjected(art, "database.hostname", def.Host)
	warnInjected(art, "database.port", fmt.Sprintf("%d", def.Port))
	warnInjected(art, "database.user", def.User)
	warnInjected(art, "database.password", def.Password)
	warnInjected(art, "database.dbname", def.Database)
	return nil
}

// warnInjected sets key=val unless key is already present, in which case it
// records a warning that the injected connection metadata was skipped in
// favor of the explicit property (spec.md §4.5 step 2).
func warnInjected(art *ConnectorArtifact, key, val string) {
	if _, exists := art.Config[key]; exists {
		art.Warnings = append(art.Warnings, fmt.Sprintf("connection metadata key %q already set by connector properties, skipping injection", key))
		return
	}
	art.Config[key] = val
}

func setIfAbsent(cfg map[string]string, key, val string) {
	if _, exists := cfg[key]; !exists {
		cfg[key] = val
	}
}

func lastSegment(dotted string) string {
	parts := strings.Split(dotted, ".")
	return parts[len(parts)-1]
}
