package compiler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/foundrydata/foundry/internal/catalog"
)

// knownTransformClasses maps the short Debezium SMT names this dialect
// recognizes to their fully-qualified class name. An SMT preset or inline
// `type` value may be given in short form; the compiler canonicalizes it
// before it reaches the rendered config (spec.md §4.5 "known transform
// classes"). Anything absent from this table is passed through verbatim —
// custom/third-party transforms are legal, just unrecognized.
var knownTransformClasses = map[string]string{
	"ExtractNewRecordState":               "io.debezium.transforms.ExtractNewRecordState",
	"ByLogicalTableRouter":                "io.debezium.transforms.ByLogicalTableRouter",
	"ContentBasedRouter":                  "io.debezium.transforms.ContentBasedRouter",
	"DecodeLogicalDecodingMessageContent": "io.debezium.transforms.DecodeLogicalDecodingMessageContent",
	"Filter":                              "io.debezium.transforms.Filter",
	"HeaderToValue":                       "io.debezium.transforms.HeaderToValue",
	"OutboxEventRouter":                   "io.debezium.transforms.outbox.EventRouter",
	"PartitionRouting":                    "io.debezium.transforms.partitions.PartitionRouting",
	"TimezoneConverter":                   "io.debezium.transforms.TimezoneConverter",
}

// canonicalizeTransformType rewrites a short known-class name to its fully
// qualified form. Values already fully qualified, or not recognized, pass
// through unchanged.
func canonicalizeTransformType(typ string) string {
	if strings.Contains(typ, ".") {
		return typ
	}
	if fq, ok := knownTransformClasses[typ]; ok {
		return fq
	}
	return typ
}

// predicateClass maps a PredicateKind to its Kafka Connect predicate class.
func predicateClass(kind catalog.PredicateKind) string {
	switch kind {
	case catalog.PredicateTopicNameMatches:
		return "org.apache.kafka.connect.transforms.predicates.TopicNameMatches"
	case catalog.PredicateRecordIsTombstone:
		return "org.apache.kafka.connect.transforms.predicates.RecordIsTombstone"
	case catalog.PredicateHasHeaderKey:
		return "org.apache.kafka.connect.transforms.predicates.HasHeaderKey"
	default:
		return ""
	}
}

// ExtractNewRecordState is the typed, validated property set for
// io.debezium.transforms.ExtractNewRecordState (original_source/crates/
// components/src/kafka/smt/transforms/debezium/extract_new_record_state.rs).
type ExtractNewRecordState struct {
	DropTombstones                 *bool
	DeleteHandlingMode             *string
	DeleteHandlingTombstoneMode    *string
	AddHeaders                     *string
	RouteByField                   *string
	AddFieldsPrefix                *string
	AddFields                      *string
	AddHeadersPrefix                *string
	DropFieldsHeaderName             *string
	DropFieldsFromKey                *bool
	DropFieldsKeepSchemaCompatible    *bool
	ReplaceNullWithDefault            *bool
}

var deleteHandlingModes = []string{"rewrite", "drop", "none"}
var deleteHandlingTombstoneModes = []string{"drop", "tombstone", "rewrite", "rewrite-with-tombstone", "delete-to-tombstone"}

func newExtractNewRecordState(cfg map[string]string) (*ExtractNewRecordState, error) {
	t := &ExtractNewRecordState{}
	remaining := copyOf(cfg)
	var err error

	if t.DropTombstones, err = popBool(remaining, "drop.tombstones"); err != nil {
		return nil, err
	}
	if t.DeleteHandlingMode, err = popEnum(remaining, "delete.handling.mode", deleteHandlingModes); err != nil {
		return nil, err
	}
	if t.DeleteHandlingTombstoneMode, err = popEnum(remaining, "delete.handling.tombstone.mode", deleteHandlingTombstoneModes); err != nil {
		return nil, err
	}
	if t.RouteByField, err = popNonEmptyString(remaining, "route.by.field"); err != nil {
		return nil, err
	}
	if t.AddFieldsPrefix, err = popString(remaining, "add.fields.prefix"); err != nil {
		return nil, err
	}
	if t.AddFields, err = popCSVField(remaining, "add.fields"); err != nil {
		return nil, err
	}
	if t.AddHeadersPrefix, err = popString(remaining, "add.headers.prefix"); err != nil {
		return nil, err
	}
	if t.AddHeaders, err = popCSVField(remaining, "add.headers"); err != nil {
		return nil, err
	}
	if t.DropFieldsHeaderName, err = popNonEmptyString(remaining, "drop.fields.header.name"); err != nil {
		return nil, err
	}
	if t.DropFieldsFromKey, err = popBool(remaining, "drop.fields.from.key"); err != nil {
		return nil, err
	}
	if t.DropFieldsKeepSchemaCompatible, err = popBool(remaining, "drop.fields.keep.schema.compatible"); err != nil {
		return nil, err
	}
	if t.ReplaceNullWithDefault, err = popBool(remaining, "replace.null.with.default"); err != nil {
		return nil, err
	}

	if len(remaining) > 0 {
		return nil, unsupportedPropertiesError("ExtractNewRecordState", remaining)
	}
	return t, nil
}

// ByLogicalTableRouter is the typed, validated property set for
// io.debezium.transforms.ByLogicalTableRouter (original_source/crates/
// components/src/kafka/smt/transforms/debezium/by_logical_table_router.rs).
type ByLogicalTableRouter struct {
	TopicRegex                 *string
	TopicReplacement           *string
	KeyEnforceUniqueness       *bool
	KeyFieldName                *string
	KeyFieldRegex                *string
	KeyFieldReplacement          *string
	SchemaNameAdjustmentMode      *string
	LogicalTableCacheSize          *int
}

var schemaNameAdjustmentModes = []string{"none", "avro"}

func newByLogicalTableRouter(cfg map[string]string) (*ByLogicalTableRouter, error) {
	t := &ByLogicalTableRouter{}
	remaining := copyOf(cfg)
	var err error

	if t.TopicRegex, err = popNonEmptyString(remaining, "topic.regex"); err != nil {
		return nil, err
	}
	if t.TopicReplacement, err = popString(remaining, "topic.replacement"); err != nil {
		return nil, err
	}
	if t.KeyEnforceUniqueness, err = popBool(remaining, "key.enforce.uniqueness"); err != nil {
		return nil, err
	}
	if t.KeyFieldName, err = popString(remaining, "key.field.name"); err != nil {
		return nil, err
	}
	if t.KeyFieldRegex, err = popString(remaining, "key.field.regex"); err != nil {
		return nil, err
	}
	if t.KeyFieldReplacement, err = popString(remaining, "key.field.replacement"); err != nil {
		return nil, err
	}
	if t.SchemaNameAdjustmentMode, err = popEnum(remaining, "schema.name.adjustment.mode", schemaNameAdjustmentModes); err != nil {
		return nil, err
	}
	if t.LogicalTableCacheSize, err = popInt(remaining, "logical.table.cache.size"); err != nil {
		return nil, err
	}

	if len(remaining) > 0 {
		return nil, unsupportedPropertiesError("ByLogicalTableRouter", remaining)
	}
	return t, nil
}

// ContentBasedRouter is the typed, validated property set for
// io.debezium.transforms.ContentBasedRouter.
type ContentBasedRouter struct {
	TopicRegex       *string
	Language          *string
	TopicExpression    *string
	NullHandlingMode    *string
}

var nullHandlingModes = []string{"keep", "drop", "evaluate"}

func newContentBasedRouter(cfg map[string]string) (*ContentBasedRouter, error) {
	t := &ContentBasedRouter{}
	remaining := copyOf(cfg)
	var err error

	if t.TopicRegex, err = popString(remaining, "topic.regex"); err != nil {
		return nil, err
	}
	if t.Language, err = popString(remaining, "language"); err != nil {
		return nil, err
	}
	if t.TopicExpression, err = popString(remaining, "topic.expression"); err != nil {
		return nil, err
	}
	if t.NullHandlingMode, err = popEnum(remaining, "null.handling.mode", nullHandlingModes); err != nil {
		return nil, err
	}

	if len(remaining) > 0 {
		return nil, unsupportedPropertiesError("ContentBasedRouter", remaining)
	}
	return t, nil
}

// DecodeLogicalDecodingMessageContent is the typed, validated property set
// for io.debezium.transforms.DecodeLogicalDecodingMessageContent.
type DecodeLogicalDecodingMessageContent struct {
	FieldsNullInclude *bool
}

func newDecodeLogicalDecodingMessageContent(cfg map[string]string) (*DecodeLogicalDecodingMessageContent, error) {
	t := &DecodeLogicalDecodingMessageContent{}
	remaining := copyOf(cfg)
	var err error

	if t.FieldsNullInclude, err = popBool(remaining, "fields.null.include"); err != nil {
		return nil, err
	}

	if len(remaining) > 0 {
		return nil, unsupportedPropertiesError("DecodeLogicalDecodingMessageContent", remaining)
	}
	return t, nil
}

// Filter is the typed, validated property set for
// io.debezium.transforms.Filter. original_source has no Rust counterpart
// for this class; the property names follow the upstream Debezium
// documentation (`language`, `topic.filter`).
type Filter struct {
	Language    *string
	TopicFilter *string
}

func newFilter(cfg map[string]string) (*Filter, error) {
	t := &Filter{}
	remaining := copyOf(cfg)
	var err error

	if t.Language, err = popString(remaining, "language"); err != nil {
		return nil, err
	}
	if t.TopicFilter, err = popString(remaining, "topic.filter"); err != nil {
		return nil, err
	}

	if len(remaining) > 0 {
		return nil, unsupportedPropertiesError("Filter", remaining)
	}
	return t, nil
}

// HeaderToValue is the typed, validated property set for
// io.debezium.transforms.HeaderToValue.
type HeaderToValue struct {
	Headers   *string
	Fields    *string
	Operation *string
}

var headerToValueOperations = []string{"move", "copy"}

func newHeaderToValue(cfg map[string]string) (*HeaderToValue, error) {
	t := &HeaderToValue{}
	remaining := copyOf(cfg)
	var err error

	if t.Headers, err = popString(remaining, "headers"); err != nil {
		return nil, err
	}
	if t.Fields, err = popString(remaining, "fields"); err != nil {
		return nil, err
	}
	if t.Operation, err = popEnum(remaining, "operation", headerToValueOperations); err != nil {
		return nil, err
	}

	if len(remaining) > 0 {
		return nil, unsupportedPropertiesError("HeaderToValue", remaining)
	}
	return t, nil
}

// OutboxEventRouter is the typed, validated property set for
// io.debezium.transforms.outbox.EventRouter.
type OutboxEventRouter struct {
	ID            *string
	AggregateType *string
	AggregateID   *string
	Payload       *string
}

func newOutboxEventRouter(cfg map[string]string) (*OutboxEventRouter, error) {
	t := &OutboxEventRouter{}
	remaining := copyOf(cfg)
	var err error

	if t.ID, err = popString(remaining, "id"); err != nil {
		return nil, err
	}
	if t.AggregateType, err = popString(remaining, "aggregatetype"); err != nil {
		return nil, err
	}
	if t.AggregateID, err = popString(remaining, "aggregateid"); err != nil {
		return nil, err
	}
	if t.Payload, err = popString(remaining, "payload"); err != nil {
		return nil, err
	}

	if len(remaining) > 0 {
		return nil, unsupportedPropertiesError("OutboxEventRouter", remaining)
	}
	return t, nil
}

// PartitionRouting is the typed, validated property set for
// io.debezium.transforms.partitions.PartitionRouting.
type PartitionRouting struct {
	PartitionPayloadFields *string
	PartitionTopicNum       *int
	PartitionHashFunction    *string
}

var partitionHashFunctions = []string{"java", "murmur"}

func newPartitionRouting(cfg map[string]string) (*PartitionRouting, error) {
	t := &PartitionRouting{}
	remaining := copyOf(cfg)
	var err error

	if t.PartitionPayloadFields, err = popString(remaining, "partition.payload.fields"); err != nil {
		return nil, err
	}
	if t.PartitionTopicNum, err = popInt(remaining, "partition.topic.num"); err != nil {
		return nil, err
	}
	if t.PartitionHashFunction, err = popEnum(remaining, "partition.hash.function", partitionHashFunctions); err != nil {
		return nil, err
	}

	if len(remaining) > 0 {
		return nil, unsupportedPropertiesError("PartitionRouting", remaining)
	}
	return t, nil
}

// TimezoneConverter is the typed, validated property set for
// io.debezium.transforms.TimezoneConverter.
type TimezoneConverter struct {
	ConvertedTimezone *string
	IncludeList        *string
	ExcludeList         *string
}

func newTimezoneConverter(cfg map[string]string) (*TimezoneConverter, error) {
	t := &TimezoneConverter{}
	remaining := copyOf(cfg)
	var err error

	if t.ConvertedTimezone, err = popNonEmptyString(remaining, "converted.timezone"); err != nil {
		return nil, err
	}
	if t.IncludeList, err = popString(remaining, "include.list"); err != nil {
		return nil, err
	}
	if t.ExcludeList, err = popString(remaining, "exclude.list"); err != nil {
		return nil, err
	}

	if len(remaining) > 0 {
		return nil, unsupportedPropertiesError("TimezoneConverter", remaining)
	}
	return t, nil
}

// LiftTransform validates and lifts a resolved step's config (minus `type`,
// already canonicalized to class) into its typed variant for a recognized
// Debezium class, following the same per-field validation original_source's
// Rust setters perform. Unrecognized classes return (nil, nil): the generic
// flat-map config CompileConnector already renders applies instead (spec.md
// §4.5 "known transform classes").
func LiftTransform(class string, cfg map[string]string) (any, error) {
	props := copyOf(cfg)
	delete(props, "type")

	switch class {
	case "io.debezium.transforms.ExtractNewRecordState":
		return newExtractNewRecordState(props)
	case "io.debezium.transforms.ByLogicalTableRouter":
		return newByLogicalTableRouter(props)
	case "io.debezium.transforms.ContentBasedRouter":
		return newContentBasedRouter(props)
	case "io.debezium.transforms.DecodeLogicalDecodingMessageContent":
		return newDecodeLogicalDecodingMessageContent(props)
	case "io.debezium.transforms.Filter":
		return newFilter(props)
	case "io.debezium.transforms.HeaderToValue":
		return newHeaderToValue(props)
	case "io.debezium.transforms.outbox.EventRouter":
		return newOutboxEventRouter(props)
	case "io.debezium.transforms.partitions.PartitionRouting":
		return newPartitionRouting(props)
	case "io.debezium.transforms.TimezoneConverter":
		return newTimezoneConverter(props)
	default:
		return nil, nil
	}
}

func copyOf(cfg map[string]string) map[string]string {
	out := make(map[string]string, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}
	return out
}

func popString(cfg map[string]string, key string) (*string, error) {
	v, ok := cfg[key]
	if !ok {
		return nil, nil
	}
	delete(cfg, key)
	return &v, nil
}

func popNonEmptyString(cfg map[string]string, key string) (*string, error) {
	v, err := popString(cfg, key)
	if err != nil || v == nil {
		return v, err
	}
	if strings.TrimSpace(*v) == "" {
		return nil, fmt.Errorf("%s must not be empty", key)
	}
	return v, nil
}

// popCSVField validates a comma-separated list carries no spaces, matching
// ExtractNewRecordState's add.fields/add.headers constraint.
func popCSVField(cfg map[string]string, key string) (*string, error) {
	v, err := popString(cfg, key)
	if err != nil || v == nil {
		return v, err
	}
	if strings.Contains(*v, " ") {
		return nil, fmt.Errorf("%s must be a comma separated list without spaces", key)
	}
	return v, nil
}

func popBool(cfg map[string]string, key string) (*bool, error) {
	v, ok := cfg[key]
	if !ok {
		return nil, nil
	}
	delete(cfg, key)
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return &b, nil
}

func popInt(cfg map[string]string, key string) (*int, error) {
	v, ok := cfg[key]
	if !ok {
		return nil, nil
	}
	delete(cfg, key)
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return &n, nil
}

func popEnum(cfg map[string]string, key string, allowed []string) (*string, error) {
	v, ok := cfg[key]
	if !ok {
		return nil, nil
	}
	delete(cfg, key)
	for _, a := range allowed {
		if v == a {
			return &v, nil
		}
	}
	return nil, fmt.Errorf("%s: %q is not one of %s", key, v, strings.Join(allowed, ", "))
}

func unsupportedPropertiesError(class string, remaining map[string]string) error {
	keys := make([]string, 0, len(remaining))
	for k := range remaining {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Errorf("%s: unsupported propert(y/ies): %s", class, strings.Join(keys, ", "))
}
