package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"0.01", 1, true},
		{"1", 100, true},
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12.345", 1235, true},
		{"12.344", 1234, true},
		{"400", 40000, true},
		{"0", 0, true},
		{"0,00", 0, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{".", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, err := ParseDecimalToCents(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Fatalf("%q => got %d, err %v; want %d", c.in, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Fatalf("%q => expected error", c.in)
		}
	}
}

func TestMoneyJSONNumberOfEuros(t *testing.T) {
	b, err := json.Marshal(Money{Cents: 40000})
	if err != nil || string(b) != "400" {
		t.Fatalf("marshal = %s, %v", b, err)
	}

	var m Money
	for in, want := range map[string]int64{`400`: 40000, `"12.5"`: 1250, `null`: 0, `0.1`: 10} {
		if err := json.Unmarshal([]byte(in), &m); err != nil || m.Cents != want {
			t.Fatalf("unmarshal %s => %d, %v; want %d", in, m.Cents, err, want)
		}
	}
	if err := json.Unmarshal([]byte(`"abc"`), &m); err == nil {
		t.Fatal("expected error for non numeric amount")
	}
}

func TestMoneyString(t *testing.T) {
	if got := (Money{Cents: 40000}).String(); got != "400 €" {
		t.Fatalf("got %q", got)
	}
	if got := (Money{Cents: 1250}).String(); got != "12,5 €" {
		t.Fatalf("got %q", got)
	}
}
