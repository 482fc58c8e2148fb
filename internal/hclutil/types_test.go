package hclutil

import (
	"fmt"
	"testing"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func parseTypeExpr(t *testing.T, src string) (cty.Type, bool) {
	t.Helper()
	file, diags := hclparse.NewParser().ParseHCL([]byte(fmt.Sprintf("type = %s\n", src)), "test.hcl")
	require.False(t, diags.HasErrors())
	attrs, diags := file.Body.JustAttributes()
	require.False(t, diags.HasErrors())

	typ, typeDiags := TypeFromExpr(attrs["type"].Expr)
	return typ, typeDiags.HasErrors()
}

func TestTypeFromExpr(t *testing.T) {
	t.Parallel()

	typ, hasErr := parseTypeExpr(t, "string")
	require.False(t, hasErr)
	assert.Equal(t, cty.String, typ)

	typ, hasErr = parseTypeExpr(t, "number")
	require.False(t, hasErr)
	assert.Equal(t, cty.Number, typ)

	typ, hasErr = parseTypeExpr(t, "bool")
	require.False(t, hasErr)
	assert.Equal(t, cty.Bool, typ)
}

func TestTypeFromExpr_Rejections(t *testing.T) {
	t.Parallel()

	_, hasErr := parseTypeExpr(t, "banana")
	assert.True(t, hasErr)

	_, hasErr = parseTypeExpr(t, `"string"`)
	assert.True(t, hasErr, "a quoted string is not a type keyword")

	_, hasErr = parseTypeExpr(t, "a.b")
	assert.True(t, hasErr, "multi-segment traversals are rejected")
}

func TestGoValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "x", GoValue(cty.StringVal("x")))
	assert.Equal(t, float64(7), GoValue(cty.NumberIntVal(7)))
	assert.Equal(t, true, GoValue(cty.True))
	assert.Nil(t, GoValue(cty.NullVal(cty.String)))

	assert.Panics(t, func() {
		GoValue(cty.ListVal([]cty.Value{cty.StringVal("a")}))
	})
}
