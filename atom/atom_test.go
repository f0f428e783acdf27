package atom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternIsIdempotent(t *testing.T) {
	tbl := NewTable()
	a := tbl.Intern("alice")
	b := tbl.Intern("alice")
	assert.Equal(t, a, b)
}

func TestInternAssignsDistinctIDs(t *testing.T) {
	tbl := NewTable()
	a := tbl.Intern("alice")
	b := tbl.Intern("bob")
	assert.NotEqual(t, a, b)
}

func TestInternIsCaseSensitive(t *testing.T) {
	tbl := NewTable()
	ids := map[int32]bool{
		tbl.Intern("Alice"): true,
		tbl.Intern("alice"): true,
		tbl.Intern("ALICE"): true,
	}
	assert.Len(t, ids, 3)
}

func TestNameRoundTrips(t *testing.T) {
	tbl := NewTable()
	id := tbl.Intern("hello")
	name, ok := tbl.Name(id)
	require.True(t, ok)
	assert.Equal(t, "hello", name)
}

func TestNameUnknownID(t *testing.T) {
	tbl := NewTable()
	tbl.Intern("x")
	_, ok := tbl.Name(42)
	assert.False(t, ok)

	_, ok = tbl.Name(-1)
	assert.False(t, ok)
}

func TestLookupMissing(t *testing.T) {
	tbl := NewTable()
	_, ok := tbl.Lookup("nope")
	assert.False(t, ok)
}

func TestIDsAreDenseAndOrdered(t *testing.T) {
	tbl := NewTable()
	names := []string{"alice", "bob", "carol", "alice"}
	var ids []int32
	for _, n := range names {
		ids = append(ids, tbl.Intern(n))
	}
	assert.Equal(t, []int32{0, 1, 2, 0}, ids)
	assert.Equal(t, 3, tbl.Count())
}

func TestSnapshotOrderedByID(t *testing.T) {
	tbl := NewTable()
	tbl.Intern("parent")
	tbl.Intern("ancestor")
	assert.Equal(t, []string{"parent", "ancestor"}, tbl.Snapshot())
}
