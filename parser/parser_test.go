package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigattichouse/bytelogic/ast"
)

func TestEmptyProgramParsesEmpty(t *testing.T) {
	prog, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, prog.Statements)
}

func TestCommentsOnlyProgramParsesEmpty(t *testing.T) {
	prog, err := Parse("; nothing here\n// still nothing\n")
	require.NoError(t, err)
	assert.Empty(t, prog.Statements)
}

func TestParseRelDecl(t *testing.T) {
	prog, err := Parse("REL parent")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)
	rel, ok := prog.Statements[0].(*ast.RelDecl)
	require.True(t, ok)
	assert.Equal(t, "parent", rel.Name)
}

func TestParseFactWithAtoms(t *testing.T) {
	prog, err := Parse("FACT parent alice bob")
	require.NoError(t, err)
	fact := prog.Statements[0].(*ast.Fact)
	require.NotNil(t, fact.AtomA)
	require.NotNil(t, fact.AtomB)
	assert.Equal(t, "alice", *fact.AtomA)
	assert.Equal(t, "bob", *fact.AtomB)
}

func TestParseFactWithIntegers(t *testing.T) {
	prog, err := Parse("FACT edge 0 1")
	require.NoError(t, err)
	fact := prog.Statements[0].(*ast.Fact)
	assert.Nil(t, fact.AtomA)
	assert.Nil(t, fact.AtomB)
	assert.EqualValues(t, 0, fact.ANum)
	assert.EqualValues(t, 1, fact.BNum)
}

func TestParseFactMixedAtomInteger(t *testing.T) {
	prog, err := Parse("FACT likes alice 42")
	require.NoError(t, err)
	fact := prog.Statements[0].(*ast.Fact)
	require.NotNil(t, fact.AtomA)
	assert.Equal(t, "alice", *fact.AtomA)
	assert.Nil(t, fact.AtomB)
	assert.EqualValues(t, 42, fact.BNum)
}

func TestParseQueryWildcards(t *testing.T) {
	prog, err := Parse("QUERY edge ? ?")
	require.NoError(t, err)
	q := prog.Statements[0].(*ast.Query)
	assert.EqualValues(t, ast.WildcardSlot, q.ANum)
	assert.EqualValues(t, ast.WildcardSlot, q.BNum)
	assert.Nil(t, q.AtomA)
	assert.Nil(t, q.AtomB)
}

func TestParseQueryOneWildcard(t *testing.T) {
	prog, err := Parse("QUERY anc 0 ?")
	require.NoError(t, err)
	q := prog.Statements[0].(*ast.Query)
	assert.EqualValues(t, 0, q.ANum)
	assert.EqualValues(t, ast.WildcardSlot, q.BNum)
}

func TestParseTransitiveClosureProgram(t *testing.T) {
	src := `REL parent
REL anc
FACT parent 0 1
FACT parent 1 2
FACT parent 2 3
RULE anc: SCAN parent, EMIT anc $0 $1
RULE anc: SCAN parent, JOIN anc $1, EMIT anc $0 $2
SOLVE
QUERY anc 0 ?`
	prog, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 9)

	rule1 := prog.Statements[5].(*ast.Rule)
	require.Len(t, rule1.Body, 1)
	assert.Equal(t, "anc", rule1.Emit.Relation)
	assert.Equal(t, 0, rule1.Emit.VarA)
	assert.Equal(t, 1, rule1.Emit.VarB)

	rule2 := prog.Statements[6].(*ast.Rule)
	require.Len(t, rule2.Body, 2)
	join, ok := rule2.Body[1].(*ast.Join)
	require.True(t, ok)
	assert.Equal(t, "anc", join.Relation)
	assert.Equal(t, 1, join.MatchVar)

	require.NoError(t, Validate(prog))
}

func TestParseScanWithMatch(t *testing.T) {
	prog, err := Parse("RULE r: SCAN a, SCAN b MATCH $1, EMIT r $0 $2")
	require.NoError(t, err)
	rule := prog.Statements[0].(*ast.Rule)
	scan, ok := rule.Body[1].(*ast.Scan)
	require.True(t, ok)
	require.NotNil(t, scan.MatchVar)
	assert.Equal(t, 1, *scan.MatchVar)
}

func TestParseErrorHasLineAndColumn(t *testing.T) {
	_, err := Parse("REL")
	require.Error(t, err)
	synErr, ok := err.(*SyntaxError)
	require.True(t, ok)
	assert.Equal(t, 1, synErr.Line)
	assert.Contains(t, err.Error(), "at line 1, column")
}

func TestParseFailsFastOnFirstError(t *testing.T) {
	_, err := Parse("REL ok\nFACT\nREL alsobad")
	require.Error(t, err)
	assert.Equal(t, 2, err.(*SyntaxError).Line)
}

func TestValidateCatchesJoinOpeningRule(t *testing.T) {
	prog, err := Parse("RULE r: JOIN a $0, EMIT r $0 $0")
	require.NoError(t, err)
	err = Validate(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first body op must be SCAN")
}

func TestValidateCatchesUnboundEmitRegister(t *testing.T) {
	prog, err := Parse("RULE r: SCAN a, EMIT r $0 $5")
	require.NoError(t, err)
	err = Validate(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unbound register $5")
}

func TestValidateAggregatesAcrossRules(t *testing.T) {
	src := `RULE bad1: JOIN a $0, EMIT bad1 $0 $0
RULE bad2: SCAN a, EMIT bad2 $9 $9`
	prog, err := Parse(src)
	require.NoError(t, err)
	err = Validate(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad1")
	assert.Contains(t, err.Error(), "bad2")
}

func TestValidateAcceptsUnconstrainedSecondScan(t *testing.T) {
	prog, err := Parse("RULE r: SCAN a, SCAN b, EMIT r $0 $2")
	require.NoError(t, err)
	assert.NoError(t, Validate(prog))
}
