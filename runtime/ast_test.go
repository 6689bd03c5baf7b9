package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestEvalExprArithmetic(t *testing.T) {
	v, err := evalExpr("1 + 2 * 3", lookupFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, "7", v)
}

func TestEvalExprComparisonAndLogic(t *testing.T) {
	vars := map[string]string{"count": "5"}
	v, err := evalExpr("count > 3 && count < 10", lookupFrom(vars))
	require.NoError(t, err)
	assert.Equal(t, "true", v)
}

func TestEvalExprStringConcat(t *testing.T) {
	vars := map[string]string{"name": "world"}
	v, err := evalExpr(`"hello " + name`, lookupFrom(vars))
	require.NoError(t, err)
	assert.Equal(t, "hello world", v)
}

func TestEvalExprUnboundIdentifierIsEmptyString(t *testing.T) {
	v, err := evalExpr("missing", lookupFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestEvalExprDivisionByZero(t *testing.T) {
	_, err := evalExpr("1 / 0", lookupFrom(nil))
	assert.Error(t, err)
}

func TestEvalExprNegationAndParens(t *testing.T) {
	v, err := evalExpr("!(1 == 2)", lookupFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, "true", v)
}
