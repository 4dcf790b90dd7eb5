package feature

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawRecord is an untyped record as received from an upload row or API payload.
type RawRecord map[string]any

// Value is a typed feature value.
type Value struct {
	kind   Kind
	number float64
	text   string
}

// Number builds a numeric value.
func Number(f float64) Value { return Value{kind: KindNumeric, number: f} }

// Flag builds a boolean value stored as 0 or 1.
func Flag(on bool) Value {
	if on {
		return Value{kind: KindBoolean, number: 1}
	}
	return Value{kind: KindBoolean}
}

// Text builds a categorical value.
func Text(s string) Value { return Value{kind: KindCategorical, text: s} }

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// Float returns the value as a vector element. Categorical text that does not
// parse as a number yields 0.
func (v Value) Float() float64 {
	if v.kind == KindCategorical {
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return v.number
}

// String renders the value for explanations and one-hot matching.
func (v Value) String() string {
	switch v.kind {
	case KindCategorical:
		return v.text
	case KindBoolean:
		return strconv.Itoa(int(v.number))
	default:
		return FormatNumber(v.number)
	}
}

// MarshalJSON emits numbers for numeric and boolean values and strings otherwise.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindCategorical {
		return json.Marshal(v.text)
	}
	if v.kind == KindBoolean {
		return json.Marshal(int(v.number))
	}
	return json.Marshal(v.number)
}

// FormatNumber prints whole numbers with one decimal place and everything else
// in the shortest form, so 150000 reads "150000.0" and 0.25 reads "0.25".
func FormatNumber(f float64) string {
	if math.Abs(f) < 1e15 && math.Trunc(f) == f {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Set is a validated, typed subset of the catalog fields.
type Set map[string]Value

// Float returns the named field as a float, 0 when absent.
func (s Set) Float(name string) float64 {
	v, ok := s[name]
	if !ok {
		return 0
	}
	return v.Float()
}

// Text returns the string form of a present field.
func (s Set) Text(name string) (string, bool) {
	v, ok := s[name]
	if !ok {
		return "", false
	}
	return v.String(), true
}

// Clone returns a shallow copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// isEmpty reports a missing field: nil or the empty string.
func isEmpty(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return false
}

// stringOf renders raw input the way a user typed it.
func stringOf(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func parseFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(stringOf(raw)), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
