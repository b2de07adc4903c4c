package tp

import (
	"testing"

	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"
)

func TestParse(t *testing.T) {
	for _, k := range []Kind{I8, I16, I32, I64, U8, U16, U32, U64, F32, F64, Bool, String} {
		p, err := Parse(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, p)
	}

	p, err := Parse("string")
	require.NoError(t, err)
	assert.Equal(t, String, p)

	_, err = Parse("i128")
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestKindClasses(t *testing.T) {
	assert.True(t, U16.IsInt())
	assert.False(t, U16.Signed())
	assert.True(t, I16.Signed())
	assert.True(t, F64.IsFloat())
	assert.True(t, F32.IsNumeric())
	assert.False(t, String.IsNumeric())
	assert.False(t, Bool.IsNumeric())

	assert.Equal(t, 32, U32.Bits())
	assert.Equal(t, 8, I64.Size())
	assert.Equal(t, 1, Bool.Size())
}

func TestLLType(t *testing.T) {
	assert.Equal(t, types.I8, U8.LLType())
	assert.Equal(t, types.I64, I64.LLType())
	assert.Equal(t, types.Double, F64.LLType())
	assert.Equal(t, types.I1, Bool.LLType())
	assert.True(t, types.Equal(types.I8Ptr, String.LLType()))
}

func TestZero(t *testing.T) {
	assert.Equal(t, "i32 0", I32.Zero().String())
	assert.Equal(t, "i8 0", U8.Zero().String())
	assert.Nil(t, String.Zero())
}
