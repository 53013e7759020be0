package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndGet(t *testing.T) {
	c := New()
	m := &ModelDecl{Layer: "staging", Name: "orders"}

	require.NoError(t, c.Insert(KindModel, m.Identity(), m))

	got, err := c.Get(KindModel, "staging_orders")
	require.NoError(t, err)
	assert.Same(t, m, got)
}

func TestInsertDuplicateFails(t *testing.T) {
	c := New()
	require.NoError(t, c.Insert(KindSmt, "mask_pii", &SmtDecl{Name: "mask_pii"}))

	err := c.Insert(KindSmt, "mask_pii", &SmtDecl{Name: "mask_pii"})
	require.Error(t, err)
	var dup *DuplicateDecl
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, KindSmt, dup.Kind)
}

func TestGetNotFound(t *testing.T) {
	c := New()
	_, err := c.Get(KindModel, "missing")
	require.Error(t, err)
	var nf *NotFound
	require.ErrorAs(t, err, &nf)
}

func TestResolveSourceFQNFirstSchemaWins(t *testing.T) {
	c := New()
	c.SourceDBs["app_db"] = &DatabaseSpec{
		Name: "app_db",
		Schemas: []SchemaSpec{
			{Name: "public", Tables: []string{"orders"}},
			{Name: "legacy", Tables: []string{"orders"}},
		},
	}

	fqn, warning, err := c.ResolveSourceFQN("app_db", "orders")
	require.NoError(t, err)
	require.Error(t, warning)
	var amb *AmbiguousSource
	require.ErrorAs(t, warning, &amb)
	assert.Equal(t, "public", amb.Chosen)
	assert.Equal(t, "app_db.public.orders", fqn)
}

func TestResolveSourceFQNUnambiguous(t *testing.T) {
	c := New()
	c.Warehouses["analytics"] = &DatabaseSpec{
		Name:    "analytics",
		Schemas: []SchemaSpec{{Name: "raw", Tables: []string{"customers"}}},
	}

	fqn, warning, err := c.ResolveSourceFQN("analytics", "customers")
	require.NoError(t, err)
	require.NoError(t, warning)
	assert.Equal(t, "analytics.raw.customers", fqn)
}

func TestResolveSourceFQNUnknown(t *testing.T) {
	c := New()
	_, _, err := c.ResolveSourceFQN("nope", "orders")
	require.Error(t, err)
	var unk *UnknownSource
	require.ErrorAs(t, err, &unk)
}

func TestBuiltinPresetAliases(t *testing.T) {
	cfg, ok := BuiltinPreset("debezium.unwrap_default")
	require.True(t, ok)
	assert.Equal(t, "io.debezium.transforms.ExtractNewRecordState", cfg["type"])

	cfg2, ok := BuiltinPreset("DEBEZIUM.EXTRACT_NEW_RECORD_STATE")
	require.True(t, ok)
	assert.Equal(t, cfg["type"], cfg2["type"])

	_, ok = BuiltinPreset("not.a.preset")
	assert.False(t, ok)
}

func TestNamesSorted(t *testing.T) {
	c := New()
	require.NoError(t, c.Insert(KindModel, "staging_b", &ModelDecl{}))
	require.NoError(t, c.Insert(KindModel, "staging_a", &ModelDecl{}))

	assert.Equal(t, []string{"staging_a", "staging_b"}, c.Names(KindModel))
}
