package executor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tetratelabs/wazero/api"
)

// Value is a single WebAssembly number with its type.
type Value struct {
	Type api.ValueType
	Raw  uint64
}

// I32 returns the value as a signed 32-bit integer.
func (v Value) I32() int32 { return api.DecodeI32(v.Raw) }

// U32 returns the value as an unsigned 32-bit integer.
func (v Value) U32() uint32 { return api.DecodeU32(v.Raw) }

// I64 returns the value as a signed 64-bit integer.
func (v Value) I64() int64 { return int64(v.Raw) }

// F32 returns the value as a 32-bit float.
func (v Value) F32() float32 { return api.DecodeF32(v.Raw) }

// F64 returns the value as a 64-bit float.
func (v Value) F64() float64 { return api.DecodeF64(v.Raw) }

func (v Value) String() string {
	switch v.Type {
	case api.ValueTypeI32:
		return strconv.FormatInt(int64(v.I32()), 10)
	case api.ValueTypeI64:
		return strconv.FormatInt(v.I64(), 10)
	case api.ValueTypeF32:
		return strconv.FormatFloat(float64(v.F32()), 'g', -1, 32)
	case api.ValueTypeF64:
		return strconv.FormatFloat(v.F64(), 'g', -1, 64)
	default:
		return fmt.Sprintf("0x%x", v.Raw)
	}
}

func newValues(types []api.ValueType, raw []uint64) []Value {
	values := make([]Value, len(raw))
	for i, r := range raw {
		values[i] = Value{Raw: r}
		if i < len(types) {
			values[i].Type = types[i]
		}
	}
	return values
}

var ErrParamCount = errors.New("wrong number of parameters")

// ParseParams encodes decimal strings as parameters of the given types.
// Integer parameters accept the full signed and unsigned range of their width.
func ParseParams(types []api.ValueType, args []string) ([]uint64, error) {
	if len(types) != len(args) {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrParamCount, len(types), len(args))
	}

	params := make([]uint64, len(args))
	for i, arg := range args {
		arg = strings.TrimSpace(arg)
		var err error
		switch types[i] {
		case api.ValueTypeI32:
			params[i], err = parseInt(arg, 32)
		case api.ValueTypeI64:
			params[i], err = parseInt(arg, 64)
		case api.ValueTypeF32:
			var f float64
			f, err = strconv.ParseFloat(arg, 32)
			params[i] = api.EncodeF32(float32(f))
		case api.ValueTypeF64:
			var f float64
			f, err = strconv.ParseFloat(arg, 64)
			params[i] = api.EncodeF64(f)
		default:
			err = fmt.Errorf("unsupported type %s", api.ValueTypeName(types[i]))
		}
		if err != nil {
			return nil, fmt.Errorf("param %d (%s): %w", i, api.ValueTypeName(types[i]), err)
		}
	}
	return params, nil
}

func parseInt(s string, bits int) (uint64, error) {
	if i, err := strconv.ParseInt(s, 0, bits); err == nil {
		if bits == 32 {
			return api.EncodeI32(int32(i)), nil
		}
		return uint64(i), nil
	}
	u, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, err
	}
	if bits == 32 {
		return api.EncodeU32(uint32(u)), nil
	}
	return u, nil
}

// FormatSignature renders a function type as "name(i32, f32) -> i32".
func FormatSignature(name string, params, results []api.ValueType) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(api.ValueTypeName(p))
	}
	b.WriteByte(')')
	if len(results) > 0 {
		b.WriteString(" -> ")
		for i, r := range results {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(api.ValueTypeName(r))
		}
	}
	return b.String()
}
