package runner

import (
	"encoding/json"
	"reflect"
)

// canonicalize pushes a value through a JSON round trip so that both sides
// of a comparison live in the same type universe: all numbers become
// float64, all objects become map[string]any with no key ordering.
func canonicalize(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// Equal reports exact equality on the canonical forms. 3 and 3.0 compare
// equal; {"a":1,"b":2} equals {"b":2,"a":1}. No approximate matching.
func Equal(a, b any) bool {
	return reflect.DeepEqual(canonicalize(a), canonicalize(b))
}
