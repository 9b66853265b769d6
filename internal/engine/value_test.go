package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValue_Display(t *testing.T) {
	tests := []struct {
		name string
		val  Value
		want string
	}{
		{"null is blank", Null(), ""},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"integer collapses", Number(42), "42"},
		{"negative integer", Number(-7), "-7"},
		{"float keeps fraction", Number(3.25), "3.25"},
		{"text verbatim", Text("hello"), "hello"},
		{"structured is json", Structured([]any{1.0, "a"}), `[1,"a"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.val.Display())
		})
	}
}

func TestValue_DisplayOr(t *testing.T) {
	assert.Equal(t, "NULL", Null().DisplayOr("NULL"))
	assert.Equal(t, "x", Text("x").DisplayOr("NULL"))
}

func TestFromDriver(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null()},
		{"bool", true, Bool(true)},
		{"int64", int64(5), Number(5)},
		{"uint32", uint32(9), Number(9)},
		{"float64", 1.5, Number(1.5)},
		{"string", "abc", Text("abc")},
		{"bytes", []byte("raw"), Text("raw")},
		{"time", ts, Text("2024-03-01T12:30:00Z")},
		{"map", map[string]any{"k": 1.0}, Structured(map[string]any{"k": 1.0})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromDriver(tt.in))
		})
	}
}

func TestSerializeRow(t *testing.T) {
	row := []Value{Number(1), Text("alpha"), Null(), Bool(true)}
	assert.Equal(t, `[1,"alpha",null,true]`, SerializeRow(row))
}

func TestSerializeRow_Structured(t *testing.T) {
	row := []Value{Structured(map[string]any{"a": 1.0})}
	assert.Equal(t, `[{"a":1}]`, SerializeRow(row))
}
