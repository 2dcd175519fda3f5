package executor

import (
	"errors"
	"math"
	"testing"

	"github.com/tetratelabs/wazero/api"
)

func TestParseParams(t *testing.T) {
	types := []api.ValueType{api.ValueTypeI32, api.ValueTypeF32, api.ValueTypeI64, api.ValueTypeF64}

	params, err := ParseParams(types, []string{"-1", "2.5", "9223372036854775807", "0.125"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if got := api.DecodeI32(params[0]); got != -1 {
		t.Errorf("i32: expected -1, got %d", got)
	}
	if got := api.DecodeF32(params[1]); got != 2.5 {
		t.Errorf("f32: expected 2.5, got %v", got)
	}
	if got := int64(params[2]); got != math.MaxInt64 {
		t.Errorf("i64: expected MaxInt64, got %d", got)
	}
	if got := api.DecodeF64(params[3]); got != 0.125 {
		t.Errorf("f64: expected 0.125, got %v", got)
	}
}

func TestParseParamsUnsigned(t *testing.T) {
	params, err := ParseParams([]api.ValueType{api.ValueTypeI32}, []string{"4294967295"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := api.DecodeU32(params[0]); got != math.MaxUint32 {
		t.Errorf("expected MaxUint32, got %d", got)
	}

	params, err = ParseParams([]api.ValueType{api.ValueTypeI32}, []string{"0x10"})
	if err != nil {
		t.Fatalf("parse hex failed: %v", err)
	}
	if got := api.DecodeI32(params[0]); got != 16 {
		t.Errorf("expected 16, got %d", got)
	}
}

func TestParseParamsErrors(t *testing.T) {
	tests := []struct {
		name  string
		types []api.ValueType
		args  []string
	}{
		{"count", []api.ValueType{api.ValueTypeI32}, nil},
		{"not a number", []api.ValueType{api.ValueTypeI32}, []string{"abc"}},
		{"i32 overflow", []api.ValueType{api.ValueTypeI32}, []string{"4294967296"}},
		{"bad float", []api.ValueType{api.ValueTypeF32}, []string{"1.2.3"}},
		{"externref", []api.ValueType{api.ValueTypeExternref}, []string{"1"}},
	}

	for _, tc := range tests {
		if _, err := ParseParams(tc.types, tc.args); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}

	_, err := ParseParams([]api.ValueType{api.ValueTypeI32}, []string{"1", "2"})
	if !errors.Is(err, ErrParamCount) {
		t.Errorf("expected ErrParamCount, got %v", err)
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{Value{Type: api.ValueTypeI32, Raw: api.EncodeI32(-1337)}, "-1337"},
		{Value{Type: api.ValueTypeI32, Raw: api.EncodeU32(404)}, "404"},
		{Value{Type: api.ValueTypeF32, Raw: api.EncodeF32(4.2)}, "4.2"},
		{Value{Type: api.ValueTypeI64, Raw: api.EncodeI64(-5)}, "-5"},
		{Value{Type: api.ValueTypeF64, Raw: api.EncodeF64(0.5)}, "0.5"},
	}

	for _, tc := range tests {
		if got := tc.value.String(); got != tc.want {
			t.Errorf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestFormatSignature(t *testing.T) {
	got := FormatSignature("a", []api.ValueType{api.ValueTypeI32, api.ValueTypeF32}, []api.ValueType{api.ValueTypeI32})
	if got != "a(i32, f32) -> i32" {
		t.Errorf("unexpected signature %q", got)
	}

	got = FormatSignature("_initialize", nil, nil)
	if got != "_initialize()" {
		t.Errorf("unexpected signature %q", got)
	}
}
