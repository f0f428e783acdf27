package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgramWalkVisitsInOrder(t *testing.T) {
	prog := &Program{Statements: []Statement{
		&RelDecl{Name: "parent"},
		&Solve{},
	}}
	var seen []string
	prog.Walk(func(s Statement) {
		seen = append(seen, s.String())
	})
	assert.Equal(t, []string{"REL parent", "SOLVE"}, seen)
}

func TestFactStringWithAtoms(t *testing.T) {
	a, b := "alice", "bob"
	f := &Fact{Relation: "parent", AtomA: &a, AtomB: &b}
	assert.Equal(t, "FACT parent alice bob", f.String())
}

func TestFactStringWithIntegers(t *testing.T) {
	f := &Fact{Relation: "edge", ANum: 0, BNum: 1}
	assert.Equal(t, "FACT edge 0 1", f.String())
}

func TestQueryStringWithWildcard(t *testing.T) {
	q := &Query{Relation: "anc", ANum: 0, BNum: WildcardSlot}
	assert.Equal(t, "QUERY anc 0 ?", q.String())
}

func TestScanStringWithAndWithoutMatch(t *testing.T) {
	plain := &Scan{Relation: "parent"}
	assert.Equal(t, "SCAN parent", plain.String())

	m := 1
	matched := &Scan{Relation: "parent", MatchVar: &m}
	assert.Equal(t, "SCAN parent MATCH $1", matched.String())
}

func TestRuleString(t *testing.T) {
	r := &Rule{
		Target: "anc",
		Body: []BodyOp{
			&Scan{Relation: "parent"},
			&Join{Relation: "anc", MatchVar: 1},
		},
		Emit: Emit{Relation: "anc", VarA: 0, VarB: 2},
	}
	assert.Equal(t, "RULE anc: SCAN parent, JOIN anc $1, EMIT anc $0 $2", r.String())
}
