// Package filter evaluates recursive AND/OR/NOT filter trees against
// parsed JSON document values. Unlike the teacher's docMatchesFilters,
// which switches on the document field's runtime Go type, evaluation here
// dispatches on the condition's declared type: the client states what kind
// of value it expects at that property path. A missing or mismatched
// runtime value is not converted; it is replaced by the declared type's
// zero value ("", 0, empty array, false) and the comparator still runs, so
// it can match (e.g. a missing number property equals 0).
package filter

import "strings"

// Condition is a single typed leaf predicate.
type Condition struct {
	Property  string      `json:"property"`
	Type      string      `json:"type"`
	Operation string      `json:"operation"`
	Value     interface{} `json:"value"`
}

// Tree is a recursive filter node: either a combinator (Type one of
// "AND"/"OR"/"NOT" with Children) or a leaf (Condition set, Type/Children
// left zero).
type Tree struct {
	Type      string     `json:"type"`
	Children  []Tree     `json:"children,omitempty"`
	Condition *Condition `json:"condition,omitempty"`
}

// Evaluate resolves t against doc, a parsed JSON value (normally a
// map[string]interface{} at the top level, though the recursive property
// walk tolerates nested arrays/objects).
func Evaluate(t Tree, doc interface{}) bool {
	switch t.Type {
	case "AND":
		for _, child := range t.Children {
			if !Evaluate(child, doc) {
				return false
			}
		}
		return true
	case "OR":
		for _, child := range t.Children {
			if Evaluate(child, doc) {
				return true
			}
		}
		return false
	case "NOT":
		if len(t.Children) == 0 {
			return false
		}
		return !Evaluate(t.Children[0], doc)
	default:
		if t.Condition == nil {
			return false
		}
		return evaluateCondition(*t.Condition, doc)
	}
}

func evaluateCondition(c Condition, doc interface{}) bool {
	val := resolvePath(doc, c.Property)

	switch c.Type {
	case "string":
		target, _ := val.(string)
		want, _ := c.Value.(string)
		switch c.Operation {
		case "=":
			return target == want
		case "?":
			return strings.Contains(target, want)
		}
	case "number":
		// A missing or non-numeric target defaults to 0.0 and the
		// comparator still runs, per the type's default-value treatment
		// of a resolved null (spec.md §4.3).
		target, _ := toFloat64(val)
		want, _ := toFloat64(c.Value)
		switch c.Operation {
		case "=":
			diff := target - want
			if diff < 0 {
				diff = -diff
			}
			return diff < 1e-6
		case ">":
			return target > want
		case "<":
			return target < want
		}
	case "array":
		// A missing or non-array target defaults to an empty array.
		arr, _ := val.([]interface{})
		switch c.Operation {
		case "?":
			for _, item := range arr {
				if jsonEqual(item, c.Value) {
					return true
				}
			}
			return false
		case "length":
			want, _ := toFloat64(c.Value)
			return float64(len(arr)) == want
		}
	case "boolean":
		// A missing or non-boolean target defaults to false.
		target, _ := val.(bool)
		want, _ := c.Value.(bool)
		if c.Operation == "=" {
			return target == want
		}
	case "null":
		if c.Operation == "=" {
			return val == nil
		}
	}

	return false
}

// resolvePath navigates doc via dot-notation property, returning nil on any
// missing segment or non-object intermediate.
func resolvePath(doc interface{}, property string) interface{} {
	current := doc
	if property == "" {
		return current
	}
	for _, segment := range strings.Split(property, ".") {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = obj[segment]
		if !ok {
			return nil
		}
	}
	return current
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func jsonEqual(a, b interface{}) bool {
	af, aok := toFloat64(a)
	bf, bok := toFloat64(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}
