package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapResolver map[string]Value

func (m mapResolver) Attr(name string) (Value, bool) {
	v, ok := m[name]
	return v, ok
}

func TestParseSimpleEquality(t *testing.T) {
	expr, err := Parse(`name=="foo"`)
	require.NoError(t, err)
	cmp, ok := expr.(*Compare)
	require.True(t, ok)
	assert.Equal(t, "name", cmp.Attr)
	assert.Equal(t, OpEq, cmp.Op)
	assert.Equal(t, "foo", cmp.Value.Str)
}

func TestParseWildcardBecomesContains(t *testing.T) {
	expr, err := Parse(`name=="*.txt"`)
	require.NoError(t, err)
	cmp := expr.(*Compare)
	assert.Equal(t, OpContains, cmp.Op)
}

func TestParseAndOrPrecedence(t *testing.T) {
	expr, err := Parse(`size>10 && size<100 || name=="x"`)
	require.NoError(t, err)
	or, ok := expr.(*Or)
	require.True(t, ok)
	_, ok = or.Left.(*And)
	assert.True(t, ok)
	_, ok = or.Right.(*Compare)
	assert.True(t, ok)
}

func TestParseParenthesesOverridePrecedence(t *testing.T) {
	expr, err := Parse(`size>10 && (name=="a" || name=="b")`)
	require.NoError(t, err)
	and, ok := expr.(*And)
	require.True(t, ok)
	_, ok = and.Right.(*Or)
	assert.True(t, ok)
}

func TestParseNot(t *testing.T) {
	expr, err := Parse(`!(size>10)`)
	require.NoError(t, err)
	_, ok := expr.(*Not)
	assert.True(t, ok)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse(`size >`)
	assert.Error(t, err)
}

func TestEvalEqualityAndRange(t *testing.T) {
	prog := MustCompile(`size>10 && size<=100`)
	assert.True(t, prog.Eval(mapResolver{"size": {Type: ValInt64, Int: 50}}))
	assert.False(t, prog.Eval(mapResolver{"size": {Type: ValInt64, Int: 5}}))
	assert.True(t, prog.Eval(mapResolver{"size": {Type: ValInt64, Int: 100}}))
	assert.False(t, prog.Eval(mapResolver{"size": {Type: ValInt64, Int: 101}}))
}

func TestEvalMissingAttributeIsFalse(t *testing.T) {
	prog := MustCompile(`foo=="bar"`)
	assert.False(t, prog.Eval(mapResolver{}))
}

func TestEvalWildcardGlob(t *testing.T) {
	prog := MustCompile(`name=="*.txt"`)
	assert.True(t, prog.Eval(mapResolver{"name": {Type: ValString, Str: "report.txt"}}))
	assert.False(t, prog.Eval(mapResolver{"name": {Type: ValString, Str: "report.csv"}}))
}

func TestEvalNot(t *testing.T) {
	prog := MustCompile(`!(name=="a")`)
	assert.False(t, prog.Eval(mapResolver{"name": {Type: ValString, Str: "a"}}))
	assert.True(t, prog.Eval(mapResolver{"name": {Type: ValString, Str: "b"}}))
}

func TestEvalOr(t *testing.T) {
	prog := MustCompile(`name=="a" || name=="b"`)
	assert.True(t, prog.Eval(mapResolver{"name": {Type: ValString, Str: "b"}}))
	assert.False(t, prog.Eval(mapResolver{"name": {Type: ValString, Str: "c"}}))
}
