package formula

import (
	"testing"

	"trainload/internal/scalar"
)

func TestEvalArithmetic(t *testing.T) {
	expr, err := Parse("duration * IF ^ 2 * 100")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	env := Env{
		"duration": scalar.MustNew("1"),
		"IF":       scalar.MustNew("0.8"),
	}
	got, err := expr.Eval(env)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	want := scalar.MustNew("64")
	if got.Cmp(want) != 0 {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestEvalPrecedenceAndParens(t *testing.T) {
	expr, err := Parse("(a + b) * 2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	env := Env{"a": scalar.FromInt(3), "b": scalar.FromInt(4)}
	got, err := expr.Eval(env)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got.Cmp(scalar.FromInt(14)) != 0 {
		t.Fatalf("got %s want 14", got)
	}
}

func TestEvalUndefinedVariable(t *testing.T) {
	expr, err := Parse("x + 1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = expr.Eval(Env{})
	if err == nil {
		t.Fatal("expected undefined-variable error")
	}
}

func TestEvalDivByZero(t *testing.T) {
	expr, err := Parse("1 / x")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = expr.Eval(Env{"x": scalar.Zero})
	if err == nil {
		t.Fatal("expected division-by-zero error")
	}
}
