package factdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddIsIdempotent(t *testing.T) {
	db := New()
	assert.True(t, db.Add(1, 2, 3))
	assert.False(t, db.Add(1, 2, 3))
	assert.Equal(t, 1, db.Size(1))
}

func TestContains(t *testing.T) {
	db := New()
	db.Add(1, 2, 3)
	assert.True(t, db.Contains(1, 2, 3))
	assert.False(t, db.Contains(1, 2, 4))
	assert.False(t, db.Contains(2, 2, 3))
}

func TestIterateInsertionOrder(t *testing.T) {
	db := New()
	db.Add(1, 0, 1)
	db.Add(1, 1, 2)
	db.Add(1, 2, 3)
	assert.Equal(t, []Pair{{0, 1}, {1, 2}, {2, 3}}, db.Iterate(1))
}

func TestIterateByFirst(t *testing.T) {
	db := New()
	db.Add(1, 0, 10)
	db.Add(1, 0, 20)
	db.Add(1, 1, 30)
	assert.Equal(t, []int64{10, 20}, db.IterateByFirst(1, 0))
	assert.Equal(t, []int64{30}, db.IterateByFirst(1, 1))
	assert.Empty(t, db.IterateByFirst(1, 99))
}

func TestIterateBySecond(t *testing.T) {
	db := New()
	db.Add(1, 0, 10)
	db.Add(1, 1, 10)
	assert.Equal(t, []int64{0, 1}, db.IterateBySecond(1, 10))
}

func TestUnknownRelationIsEmptyNotError(t *testing.T) {
	db := New()
	assert.Empty(t, db.Iterate(42))
	assert.Equal(t, 0, db.Size(42))
}
