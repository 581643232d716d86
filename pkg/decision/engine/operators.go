package engine

import (
	"fmt"
	"reflect"
	"regexp"
)

// Built-in operator symbols.
const (
	OperatorEqual        = "=="
	OperatorNotEqual     = "!="
	OperatorLessThan     = "<"
	OperatorGreaterThan  = ">"
	OperatorLessEqual    = "<="
	OperatorGreaterEqual = ">="
	OperatorIn           = "in"     // Set membership
	OperatorNotIn        = "not_in" // Set exclusion
	OperatorMatches      = "matches" // Full-string regex match
)

// builtinOperators returns the operator set installed at registry
// initialization.
func builtinOperators() map[string]OperatorFunc {
	return map[string]OperatorFunc{
		OperatorEqual: evaluateEqual,
		OperatorNotEqual: func(value, reference interface{}) (bool, error) {
			equal, err := evaluateEqual(value, reference)
			return !equal, err
		},
		OperatorLessThan: func(value, reference interface{}) (bool, error) {
			v, ref, err := toNumeric(value, reference)
			if err != nil {
				return false, err
			}
			return v < ref, nil
		},
		OperatorGreaterThan: func(value, reference interface{}) (bool, error) {
			v, ref, err := toNumeric(value, reference)
			if err != nil {
				return false, err
			}
			return v > ref, nil
		},
		OperatorLessEqual: func(value, reference interface{}) (bool, error) {
			v, ref, err := toNumeric(value, reference)
			if err != nil {
				return false, err
			}
			return v <= ref, nil
		},
		OperatorGreaterEqual: func(value, reference interface{}) (bool, error) {
			v, ref, err := toNumeric(value, reference)
			if err != nil {
				return false, err
			}
			return v >= ref, nil
		},
		OperatorIn: evaluateIn,
		OperatorNotIn: func(value, reference interface{}) (bool, error) {
			in, err := evaluateIn(value, reference)
			return !in, err
		},
		OperatorMatches: evaluateMatches,
	}
}

// evaluateEqual checks if two values are equal. Numeric values of
// different Go types compare by magnitude (int 500 equals float64 500,
// the usual mix after YAML/JSON decoding); everything else compares by
// deep equality.
func evaluateEqual(value, reference interface{}) (bool, error) {
	if value == nil && reference == nil {
		return true, nil
	}
	if value == nil || reference == nil {
		return false, nil
	}

	valueNum, valueErr := convertToFloat64(value)
	refNum, refErr := convertToFloat64(reference)
	if valueErr == nil && refErr == nil {
		return valueNum == refNum, nil
	}

	return reflect.DeepEqual(value, reference), nil
}

// evaluateIn checks if value is a member of the reference collection.
func evaluateIn(value, reference interface{}) (bool, error) {
	refVal := reflect.ValueOf(reference)
	if refVal.Kind() != reflect.Slice && refVal.Kind() != reflect.Array {
		return false, fmt.Errorf("in operator requires slice or array reference, got %T", reference)
	}

	for i := 0; i < refVal.Len(); i++ {
		equal, err := evaluateEqual(value, refVal.Index(i).Interface())
		if err != nil {
			return false, err
		}
		if equal {
			return true, nil
		}
	}

	return false, nil
}

// evaluateMatches checks if the value, coerced to text, matches the
// reference regex pattern against the full string.
func evaluateMatches(value, reference interface{}) (bool, error) {
	pattern, ok := reference.(string)
	if !ok {
		return false, fmt.Errorf("matches operator requires string pattern reference, got %T", reference)
	}

	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return false, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
	}

	return re.MatchString(toText(value)), nil
}

// toNumeric converts both operands to float64 for numeric comparison.
func toNumeric(value, reference interface{}) (float64, float64, error) {
	valueNum, err := convertToFloat64(value)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot convert answer value to number: %w", err)
	}

	refNum, err := convertToFloat64(reference)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot convert reference value to number: %w", err)
	}

	return valueNum, refNum, nil
}

// convertToFloat64 converts a value to float64.
func convertToFloat64(v interface{}) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int8:
		return float64(val), nil
	case int16:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case uint8:
		return float64(val), nil
	case uint16:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to float64", v)
	}
}

// toText coerces a value to its text form.
func toText(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(v)
	}
}
