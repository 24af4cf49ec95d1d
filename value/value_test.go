package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareNumericWidening(t *testing.T) {
	c, err := Compare(Integer(3), Float(3.0))
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	c, err = Compare(Integer(2), Float(3.5))
	require.NoError(t, err)
	assert.Equal(t, -1, c)
}

func TestCompareTextLexicographic(t *testing.T) {
	c, err := Compare(Text("apple"), Text("banana"))
	require.NoError(t, err)
	assert.Equal(t, -1, c)
}

func TestCompareDate(t *testing.T) {
	a := DateOf(Date{2024, 1, 1})
	b := DateOf(Date{2024, 2, 1})
	c, err := Compare(a, b)
	require.NoError(t, err)
	assert.Equal(t, -1, c)
}

func TestCompareCrossTypeError(t *testing.T) {
	_, err := Compare(Text("x"), Boolean(true))
	require.Error(t, err)
	var tm *TypeMismatchError
	assert.ErrorAs(t, err, &tm)
}

func TestArithmeticNullPropagation(t *testing.T) {
	v, err := Add(Null, Integer(5))
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestDivisionByZeroYieldsNull(t *testing.T) {
	v, err := Div(Integer(10), Integer(0))
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	v, err = Div(Float(1), Float(0))
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestIntegerArithmeticStaysInteger(t *testing.T) {
	v, err := Add(Integer(2), Integer(3))
	require.NoError(t, err)
	assert.Equal(t, KindInteger, v.Kind())
	assert.Equal(t, int64(5), v.AsInteger())
}

func TestThreeValuedAnd(t *testing.T) {
	assert.Equal(t, TriFalse, And(TriUnknown, TriFalse))
	assert.Equal(t, TriUnknown, And(TriUnknown, TriTrue))
	assert.Equal(t, TriTrue, And(TriTrue, TriTrue))
}

func TestThreeValuedOr(t *testing.T) {
	assert.Equal(t, TriTrue, Or(TriUnknown, TriTrue))
	assert.Equal(t, TriUnknown, Or(TriUnknown, TriFalse))
	assert.Equal(t, TriFalse, Or(TriFalse, TriFalse))
}

func TestThreeValuedNot(t *testing.T) {
	assert.Equal(t, TriUnknown, Not(TriUnknown))
	assert.Equal(t, TriFalse, Not(TriTrue))
}

func TestTypeMismatchOnArithmetic(t *testing.T) {
	_, err := Add(Text("x"), Integer(1))
	require.Error(t, err)
}
