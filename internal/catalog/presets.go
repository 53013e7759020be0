package catalog

import "strings"

// builtinPreset is a built-in SMT preset: a canonical name plus its
// recognized aliases and the literal config it expands to.
type builtinPreset struct {
	aliases []string
	config  map[string]string
}

// builtinPresets enumerates the built-in SMT presets this dialect ships
// with, grounded on the original implementation's `SmtPreset` enum and its
// `builtin_preset_config`: `debezium.unwrap_default` (alias
// `debezium.extract_new_record_state`) expands to Debezium's
// ExtractNewRecordState transform with its conventional defaults;
// `debezium.by_logical_table_router` (alias `debezium.route_by_field`)
// expands to the bare ByLogicalTableRouter class with no default
// properties, deferring to the SMT's own config/extend block.
var builtinPresets = []builtinPreset{
	{
		aliases: []string{"debezium.unwrap_default", "debezium.extract_new_record_state"},
		config: map[string]string{
			"type":                 "io.debezium.transforms.ExtractNewRecordState",
			"drop.tombstones":      "true",
			"delete.handling.mode": "rewrite",
		},
	},
	{
		aliases: []string{"debezium.by_logical_table_router", "debezium.route_by_field"},
		config: map[string]string{
			"type": "io.debezium.transforms.ByLogicalTableRouter",
		},
	},
}

// BuiltinPreset returns the literal config map for a built-in preset name,
// matched case-insensitively against every recognized alias, or false if
// name does not name a built-in preset (spec.md §4.2).
func BuiltinPreset(name string) (map[string]string, bool) {
	for _, p := range builtinPresets {
		for _, alias := range p.aliases {
			if strings.EqualFold(alias, name) {
				cfg := make(map[string]string, len(p.config))
				for k, v := range p.config {
					cfg[k] = v
				}
				return cfg, true
			}
		}
	}
	return nil, false
}
