package engine

import (
	"testing"
)

func TestBuiltinOperators(t *testing.T) {
	tests := []struct {
		name      string
		operator  string
		value     interface{}
		reference interface{}
		want      bool
		wantErr   bool
	}{
		{name: "equal strings", operator: "==", value: "yes", reference: "yes", want: true},
		{name: "equal mixed numerics", operator: "==", value: 500, reference: float64(500), want: true},
		{name: "not equal", operator: "!=", value: "yes", reference: "no", want: true},
		{name: "less than", operator: "<", value: 500, reference: 1000, want: true},
		{name: "less than false", operator: "<", value: 2000, reference: 1000, want: false},
		{name: "less than non-numeric", operator: "<", value: "high", reference: 1000, wantErr: true},
		{name: "greater than", operator: ">", value: 120, reference: 90, want: true},
		{name: "less or equal boundary", operator: "<=", value: 1000, reference: 1000, want: true},
		{name: "greater or equal boundary", operator: ">=", value: 120, reference: 120, want: true},
		{name: "in membership", operator: "in", value: 125, reference: []interface{}{120, 125, 130}, want: true},
		{name: "in membership numeric coercion", operator: "in", value: float64(125), reference: []interface{}{120, 125, 130}, want: true},
		{name: "in no membership", operator: "in", value: 111, reference: []interface{}{120, 125, 130}, want: false},
		{name: "in non-collection reference", operator: "in", value: 125, reference: 130, wantErr: true},
		{name: "not_in exclusion", operator: "not_in", value: "aspirin", reference: []interface{}{"warfarin", "heparin"}, want: true},
		{name: "matches full string", operator: "matches", value: "A123", reference: `[A-Z]\d+`, want: true},
		{name: "matches rejects partial", operator: "matches", value: "xA123x", reference: `[A-Z]\d+`, want: false},
		{name: "matches coerces value to text", operator: "matches", value: 42, reference: `\d+`, want: true},
		{name: "matches invalid pattern", operator: "matches", value: "x", reference: `([`, wantErr: true},
	}

	registry := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := registry.Lookup(tt.operator)
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", tt.operator, err)
			}

			got, err := fn(tt.value, tt.reference)
			if (err != nil) != tt.wantErr {
				t.Fatalf("%s(%v, %v) error = %v, wantErr %v", tt.operator, tt.value, tt.reference, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("%s(%v, %v) = %v, want %v", tt.operator, tt.value, tt.reference, got, tt.want)
			}
		})
	}
}

func TestRegistry_RegisterAndOverwrite(t *testing.T) {
	registry := NewRegistry()

	registry.Register("between", func(value, reference interface{}) (bool, error) {
		bounds, ok := reference.([]interface{})
		if !ok || len(bounds) != 2 {
			return false, nil
		}
		v, lo, err := toNumeric(value, bounds[0])
		if err != nil {
			return false, err
		}
		_, hi, err := toNumeric(value, bounds[1])
		if err != nil {
			return false, err
		}
		return v >= lo && v <= hi, nil
	})

	fn, err := registry.Lookup("between")
	if err != nil {
		t.Fatalf("Lookup(between) error = %v", err)
	}
	if got, _ := fn(150, []interface{}{100, 200}); !got {
		t.Errorf("between(150, [100 200]) = false, want true")
	}

	// Re-registering overwrites.
	registry.Register("between", func(value, reference interface{}) (bool, error) {
		return false, nil
	})
	fn, _ = registry.Lookup("between")
	if got, _ := fn(150, []interface{}{100, 200}); got {
		t.Errorf("overwritten between = true, want false")
	}
}

func TestRegistry_UnknownSymbol(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Lookup("between")
	opErr, ok := err.(*UnsupportedOperatorError)
	if !ok {
		t.Fatalf("Lookup(between) error = %v (%T), want *UnsupportedOperatorError", err, err)
	}
	if opErr.Symbol != "between" {
		t.Errorf("Symbol = %q, want between", opErr.Symbol)
	}
}

func TestRegistry_Symbols(t *testing.T) {
	symbols := NewRegistry().Symbols()

	want := map[string]bool{
		"==": true, "!=": true, "<": true, ">": true,
		"<=": true, ">=": true, "in": true, "not_in": true, "matches": true,
	}
	if len(symbols) != len(want) {
		t.Fatalf("Symbols() = %v, want %d built-ins", symbols, len(want))
	}
	for _, s := range symbols {
		if !want[s] {
			t.Errorf("unexpected symbol %q", s)
		}
	}
}
