package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ValueKind discriminates the closed set of cell value types.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindText
	KindStructured
)

// Value is one dynamically-typed result cell. The set of kinds is closed
// so display, clipboard, and export serialization are total: null, bool,
// number, text, or a structured value carried as canonical JSON.
type Value struct {
	kind ValueKind
	b    bool
	n    float64
	s    string
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Structured returns a value carrying v's canonical JSON form. Values that
// cannot marshal fall back to their Go string form as text.
func Structured(v any) Value {
	raw, err := json.Marshal(v)
	if err != nil {
		return Text(fmt.Sprintf("%v", v))
	}
	return Value{kind: KindStructured, s: string(raw)}
}

// Kind returns the value's kind.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Num returns the numeric value; zero for non-numbers.
func (v Value) Num() float64 { return v.n }

// Display returns the canonical display string. Null renders blank;
// structured values render as their JSON form.
func (v Value) Display() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return formatNumber(v.n)
	default:
		return v.s
	}
}

// DisplayOr returns Display, substituting marker for null.
func (v Value) DisplayOr(marker string) string {
	if v.kind == KindNull {
		return marker
	}
	return v.Display()
}

// JSON returns the value in a form that json.Marshal encodes canonically.
func (v Value) JSON() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindStructured:
		return json.RawMessage(v.s)
	default:
		return v.s
	}
}

// formatNumber collapses integral floats so counts do not render with a
// trailing ".0".
func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// FromDriver converts a database/sql driver value into a Value. Composite
// values become structured JSON.
func FromDriver(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(x)
	case int:
		return Number(float64(x))
	case int8:
		return Number(float64(x))
	case int16:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint:
		return Number(float64(x))
	case uint8:
		return Number(float64(x))
	case uint16:
		return Number(float64(x))
	case uint32:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case float32:
		return Number(float64(x))
	case float64:
		return Number(x)
	case string:
		return Text(x)
	case []byte:
		return Text(string(x))
	case time.Time:
		return Text(x.Format(time.RFC3339))
	case time.Duration:
		return Text(x.String())
	default:
		return Structured(x)
	}
}

// SerializeRow renders a full row as a JSON array string, the structured
// form used by copy-row.
func SerializeRow(row []Value) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range row {
		if i > 0 {
			sb.WriteByte(',')
		}
		raw, err := json.Marshal(v.JSON())
		if err != nil {
			raw, _ = json.Marshal(v.Display())
		}
		sb.Write(raw)
	}
	sb.WriteByte(']')
	return sb.String()
}
