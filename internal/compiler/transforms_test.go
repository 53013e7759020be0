package compiler_test

import (
	"testing"

	"github.com/foundrydata/foundry/internal/compiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiftTransformExtractNewRecordStateValidatesEnum(t *testing.T) {
	_, err := compiler.LiftTransform("io.debezium.transforms.ExtractNewRecordState", map[string]string{
		"type":                 "io.debezium.transforms.ExtractNewRecordState",
		"delete.handling.mode": "bogus",
	})
	assert.Error(t, err)
}

func TestLiftTransformExtractNewRecordStateAcceptsDocumentedProperties(t *testing.T) {
	typed, err := compiler.LiftTransform("io.debezium.transforms.ExtractNewRecordState", map[string]string{
		"type":                 "io.debezium.transforms.ExtractNewRecordState",
		"drop.tombstones":      "true",
		"delete.handling.mode": "rewrite",
		"add.fields":           "op,ts_ms",
	})
	require.NoError(t, err)
	state, ok := typed.(*compiler.ExtractNewRecordState)
	require.True(t, ok)
	require.NotNil(t, state.DropTombstones)
	assert.True(t, *state.DropTombstones)
	require.NotNil(t, state.DeleteHandlingMode)
	assert.Equal(t, "rewrite", *state.DeleteHandlingMode)
}

func TestLiftTransformRejectsUnknownProperty(t *testing.T) {
	_, err := compiler.LiftTransform("io.debezium.transforms.ByLogicalTableRouter", map[string]string{
		"type":             "io.debezium.transforms.ByLogicalTableRouter",
		"topic.regex":      "postgres-(.*)",
		"made.up.property": "x",
	})
	assert.Error(t, err)
}

func TestLiftTransformRejectsEmptyTopicRegex(t *testing.T) {
	_, err := compiler.LiftTransform("io.debezium.transforms.ByLogicalTableRouter", map[string]string{
		"type":        "io.debezium.transforms.ByLogicalTableRouter",
		"topic.regex": "   ",
	})
	assert.Error(t, err)
}

func TestLiftTransformUnrecognizedClassPassesThrough(t *testing.T) {
	typed, err := compiler.LiftTransform("com.example.CustomTransform", map[string]string{"type": "com.example.CustomTransform", "anything": "goes"})
	require.NoError(t, err)
	assert.Nil(t, typed)
}

func TestLiftTransformPartitionRoutingParsesInt(t *testing.T) {
	typed, err := compiler.LiftTransform("io.debezium.transforms.partitions.PartitionRouting", map[string]string{
		"type":                    "io.debezium.transforms.partitions.PartitionRouting",
		"partition.topic.num":     "4",
		"partition.hash.function": "murmur",
	})
	require.NoError(t, err)
	pr, ok := typed.(*compiler.PartitionRouting)
	require.True(t, ok)
	require.NotNil(t, pr.PartitionTopicNum)
	assert.Equal(t, 4, *pr.PartitionTopicNum)
}
