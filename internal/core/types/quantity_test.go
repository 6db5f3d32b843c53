package types

import (
	"encoding/json"
	"testing"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    Quantity
		wantErr bool
	}{
		{"10", Quantity(100_000), false},
		{"10.5", Quantity(105_000), false},
		{"0.0001", Quantity(1), false},
		{"-2.25", Quantity(-22_500), false},
		{"+3", Quantity(30_000), false},
		{"  7 ", Quantity(70_000), false},
		{".5", Quantity(5_000), false},
		{"1.23456789", Quantity(12_345), false}, // extra digits truncated
		{"", 0, true},
		{"abc", 0, true},
		{"1.2x", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseQuantity(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseQuantity(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseQuantity(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseQuantity(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestQuantityString(t *testing.T) {
	tests := []struct {
		in   Quantity
		want string
	}{
		{MustQuantity("10"), "10.0000"},
		{MustQuantity("0.5"), "0.5000"},
		{MustQuantity("-2.25"), "-2.2500"},
		{0, "0.0000"},
	}

	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("String(%d) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestQuantityJSON(t *testing.T) {
	type payload struct {
		Qty Quantity `json:"qty"`
	}

	// Numbers and quoted strings both decode; null decodes to zero.
	for _, in := range []string{`{"qty": 12.5}`, `{"qty": "12.5"}`} {
		var p payload
		if err := json.Unmarshal([]byte(in), &p); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if p.Qty != MustQuantity("12.5") {
			t.Errorf("unmarshal %s: got %s", in, p.Qty)
		}
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"qty": null}`), &p); err != nil {
		t.Fatal(err)
	}
	if !p.Qty.IsZero() {
		t.Errorf("null must decode to zero, got %s", p.Qty)
	}

	out, err := json.Marshal(payload{Qty: MustQuantity("3.25")})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"qty":3.2500}` {
		t.Errorf("marshal = %s", out)
	}
}

func TestQuantityArithmeticHelpers(t *testing.T) {
	q := MustQuantity("4.5")
	if q.Neg() != MustQuantity("-4.5") {
		t.Error("Neg")
	}
	if MustQuantity("-4.5").Abs() != q {
		t.Error("Abs")
	}
	if !q.IsPositive() || q.IsNegative() || q.IsZero() {
		t.Error("sign predicates")
	}
	if q.Float64() != 4.5 {
		t.Errorf("Float64 = %v", q.Float64())
	}
}
