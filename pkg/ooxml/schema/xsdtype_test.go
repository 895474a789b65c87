package schema

import "testing"

func TestStringType_LengthFacets(t *testing.T) {
	minLen, maxLen := 2, 4
	typ := StringType{MinLen: &minLen, MaxLen: &maxLen}

	if err := typ.Validate("abc"); err != nil {
		t.Errorf("Validate(%q) = %v, want nil", "abc", err)
	}
	if err := typ.Validate("a"); err == nil {
		t.Error("Validate(\"a\") = nil, want a below-minimum-length error")
	}
	if err := typ.Validate("abcde"); err == nil {
		t.Error("Validate(\"abcde\") = nil, want an above-maximum-length error")
	}
}

func TestStringType_LengthIsCodePointsNotBytes(t *testing.T) {
	maxLen := 1
	typ := StringType{MaxLen: &maxLen}
	// "é" here is a single code point (U+00E9) encoded as two UTF-8
	// bytes; a byte-counting length check would wrongly reject it.
	if err := typ.Validate("é"); err != nil {
		t.Errorf("Validate(%q) = %v, want nil (one code point)", "é", err)
	}
}

func TestStringType_Enum(t *testing.T) {
	typ := StringType{Enum: []string{"solid", "gradient", "pattern"}}

	if err := typ.Validate("gradient"); err != nil {
		t.Errorf("Validate(%q) = %v, want nil", "gradient", err)
	}
	if err := typ.Validate("Gradient"); err == nil {
		t.Error("Validate(\"Gradient\") = nil, want an error (enum match is case-sensitive)")
	}
	if err := typ.Validate("unknown"); err == nil {
		t.Error("Validate(\"unknown\") = nil, want a not-in-enum error")
	}
}

func TestDecimalType_BoundViolationReasonsIncludeLiteralBound(t *testing.T) {
	min, max := 0.0, 10.0
	typ := DecimalType{Min: &min, Max: &max}

	if err := typ.Validate("-1"); err == nil || !containsAll(err.Error(), "0") {
		t.Errorf("Validate(\"-1\") = %v, want an error reason naming the minimum 0", err)
	}
	if err := typ.Validate("11"); err == nil || !containsAll(err.Error(), "10") {
		t.Errorf("Validate(\"11\") = %v, want an error reason naming the maximum 10", err)
	}
}

func containsAll(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
