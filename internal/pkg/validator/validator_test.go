package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUIC(t *testing.T) {
	valid := []string{"W6CJAA", "WABC01", "000000"}
	invalid := []string{"w6cjaa", "W6CJA", "W6CJAAA", "W6CJA-", "", " W6CJA"}
	for _, uic := range valid {
		if !IsValidUIC(uic) {
			t.Errorf("IsValidUIC(%q) = false, want true", uic)
		}
	}
	for _, uic := range invalid {
		if IsValidUIC(uic) {
			t.Errorf("IsValidUIC(%q) = true, want false", uic)
		}
	}
}

func TestIsValidUPI(t *testing.T) {
	valid := []string{"E0001", "A12345"}
	invalid := []string{"e0001", "0001", "E001", "EA001", ""}
	for _, upi := range valid {
		if !IsValidUPI(upi) {
			t.Errorf("IsValidUPI(%q) = false, want true", upi)
		}
	}
	for _, upi := range invalid {
		if IsValidUPI(upi) {
			t.Errorf("IsValidUPI(%q) = true, want false", upi)
		}
	}
}

func TestIsValidPLN(t *testing.T) {
	valid := []string{"101A", "1", "9999", "12B"}
	invalid := []string{"A101", "101a", "10101", ""}
	for _, pln := range valid {
		if !IsValidPLN(pln) {
			t.Errorf("IsValidPLN(%q) = false, want true", pln)
		}
	}
	for _, pln := range invalid {
		if IsValidPLN(pln) {
			t.Errorf("IsValidPLN(%q) = true, want false", pln)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	if !IsInSlice("a", slice) {
		t.Errorf("IsInSlice('a') = false, want true")
	}
	if IsInSlice("d", slice) {
		t.Errorf("IsInSlice('d') = true, want false")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "uic", Message: "invalid"},
		{Field: "seed", Message: "required"},
	}
	got := errs.Error()
	want := "uic: invalid; seed: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "uic", Message: "invalid"},
		{Field: "seed", Message: "required"},
	}
	got := errs.ToMap()
	want := map[string]string{"uic": "invalid", "seed": "required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}
