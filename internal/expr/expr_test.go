package expr

import (
	"errors"
	"math"
	"testing"
)

func testLookup(name string) (Binding, bool) {
	switch name {
	case "X":
		return Var(0), true
	case "Y":
		return Var(1), true
	case "k":
		return Const(2.5), true
	case "a0":
		return Const(0.005), true
	}
	return Binding{}, false
}

func TestCompileEvaluate(t *testing.T) {
	pop := []int64{10, 4}

	tests := []struct {
		src  string
		want float64
	}{
		{"1", 1},
		{".5", 0.5},
		{"1e3", 1000},
		{"2.5E-1", 0.25},
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 / 4 / 5", 0.5},
		{"2 ^ 3 ^ 2", 512},
		{"2 ** 3", 8},
		{"-2 ^ 2", -4},
		{"--3", 3},
		{"+X", 10},
		{"k * X", 25},
		{"X * (X - 1) / 2", 45},
		{"Y / (a0 + Y)", 4 / 4.005},
		{"150*1/(1+(Y*Y/((150*150))))", 150 / (1 + 16.0/22500)},
		{"exp(0) + log(1)", 1},
		{"pow(X, 2)", 100},
		{"min(X, Y) + max(X, Y)", 14},
		{"sqrt(abs(-16))", 4},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			n, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("parse %q: %v", tt.src, err)
			}
			fn, err := Compile(n, testLookup)
			if err != nil {
				t.Fatalf("compile %q: %v", tt.src, err)
			}
			if got := fn(pop); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("%q = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"1 +",
		"(1 + 2",
		"1 2",
		"X $ Y",
		"pow(1,",
		"pow(1 2)",
		")",
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := Parse(src)
			var synErr *SyntaxError
			if !errors.As(err, &synErr) {
				t.Fatalf("Parse(%q) error = %v, want SyntaxError", src, err)
			}
		})
	}
}

func TestCompileUnknownSymbol(t *testing.T) {
	n, err := Parse("k * Z")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	_, err = Compile(n, testLookup)
	if !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}

	var symErr *SymbolError
	if !errors.As(err, &symErr) || symErr.Name != "Z" {
		t.Errorf("expected symbol error naming Z, got %v", err)
	}
}

func TestCompileFunctionErrors(t *testing.T) {
	n, _ := Parse("gamma(X)")
	if _, err := Compile(n, testLookup); !errors.Is(err, ErrUnknownFunction) {
		t.Errorf("expected ErrUnknownFunction, got %v", err)
	}

	n, _ = Parse("exp(X, Y)")
	if _, err := Compile(n, testLookup); !errors.Is(err, ErrArity) {
		t.Errorf("expected ErrArity, got %v", err)
	}
}

func TestEvalConstant(t *testing.T) {
	n, _ := Parse("k * 4 + exp(0)")
	v, err := Eval(n, testLookup)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if v != 11 {
		t.Errorf("expected 11, got %v", v)
	}

	n, _ = Parse("k * X")
	if _, err := Eval(n, testLookup); !errors.Is(err, ErrVariable) {
		t.Errorf("expected ErrVariable, got %v", err)
	}
}

func TestSymbols(t *testing.T) {
	n, err := Parse("Y / (a0 + a1*(Y/150) + a2*Y*Y) + exp(k)")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	got := Symbols(n)
	want := []string{"Y", "a0", "a1", "a2", "k"}
	if len(got) != len(want) {
		t.Fatalf("Symbols = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Symbols[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestIsIdentifier(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"X", true},
		{"_tmp", true},
		{"kd2", true},
		{"", false},
		{"2x", false},
		{"X decay", false},
		{"a-b", false},
	}

	for _, tt := range tests {
		if got := IsIdentifier(tt.s); got != tt.want {
			t.Errorf("IsIdentifier(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}
