package tp

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"tlog.app/go/errors"
)

type (
	// Kind is a semantic type tag attached to every declaration and reference.
	Kind int
)

const (
	Invalid Kind = iota

	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	Bool
	String
)

var names = [...]string{
	Invalid: "invalid",
	I8:      "i8",
	I16:     "i16",
	I32:     "i32",
	I64:     "i64",
	U8:      "u8",
	U16:     "u16",
	U32:     "u32",
	U64:     "u64",
	F32:     "f32",
	F64:     "f64",
	Bool:    "bool",
	String:  "str",
}

var ErrUnknownKind = errors.New("unknown type")

func Parse(s string) (Kind, error) {
	if s == "string" {
		return String, nil
	}

	for k, n := range names {
		if k != int(Invalid) && n == s {
			return Kind(k), nil
		}
	}

	return Invalid, errors.Wrap(ErrUnknownKind, "%q", s)
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(names) {
		return "invalid"
	}

	return names[k]
}

func (k Kind) IsInt() bool {
	return k >= I8 && k <= U64
}

func (k Kind) IsFloat() bool {
	return k == F32 || k == F64
}

func (k Kind) IsNumeric() bool {
	return k.IsInt() || k.IsFloat()
}

func (k Kind) Signed() bool {
	return k >= I8 && k <= I64 || k.IsFloat()
}

func (k Kind) Bits() int {
	switch k {
	case I8, U8:
		return 8
	case I16, U16:
		return 16
	case I32, U32, F32:
		return 32
	case I64, U64, F64:
		return 64
	case Bool:
		return 1
	case String:
		return 64
	default:
		return 0
	}
}

// Size is the storage size in bytes. Bool occupies a whole byte.
func (k Kind) Size() int {
	if k == Bool {
		return 1
	}

	return k.Bits() / 8
}

// LLType is the native representation of a value of kind k.
// Signedness is not part of LLVM integer types.
func (k Kind) LLType() types.Type {
	switch k {
	case I8, U8:
		return types.I8
	case I16, U16:
		return types.I16
	case I32, U32:
		return types.I32
	case I64, U64:
		return types.I64
	case F32:
		return types.Float
	case F64:
		return types.Double
	case Bool:
		return types.I1
	case String:
		return types.I8Ptr
	default:
		return types.Void
	}
}

// Zero returns the zero value of a numeric kind.
func (k Kind) Zero() constant.Constant {
	switch {
	case k.IsInt():
		return constant.NewInt(k.LLType().(*types.IntType), 0)
	case k.IsFloat():
		return constant.NewFloat(k.LLType().(*types.FloatType), 0)
	case k == Bool:
		return constant.False
	default:
		return nil
	}
}
