package feature

import (
	"strings"
)

// ValidationError carries the per-field problems of a rejected record.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, ", ")
}

var truthy = map[string]struct{}{"1": {}, "true": {}, "yes": {}}

// Normalize validates and coerces a raw record. Every offending field adds one
// problem; normalization never stops at the first one. A nil problem list
// means the Set is usable.
func Normalize(raw RawRecord) (Set, []string) {
	set := make(Set)
	var problems []string

	if v, ok := raw[RequiredField]; !ok || isEmpty(v) {
		problems = append(problems, "Missing "+RequiredField)
	} else if f, ok := parseFloat(v); ok {
		set[RequiredField] = Number(f)
	} else {
		problems = append(problems, "Invalid "+RequiredField)
	}

	for _, name := range NumericFields {
		v, ok := raw[name]
		if !ok || isEmpty(v) {
			continue
		}
		f, ok := parseFloat(v)
		if !ok {
			problems = append(problems, "Invalid "+name)
			continue
		}
		set[name] = Number(f)
	}

	for _, name := range BooleanFields {
		v, ok := raw[name]
		if !ok || isEmpty(v) {
			continue
		}
		_, on := truthy[strings.ToLower(stringOf(v))]
		set[name] = Flag(on)
	}

	for _, name := range CategoricalFields {
		v, ok := raw[name]
		if !ok || isEmpty(v) {
			continue
		}
		set[name] = Text(strings.TrimSpace(stringOf(v)))
	}

	return set, problems
}
