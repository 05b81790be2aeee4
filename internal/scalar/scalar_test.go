package scalar

import "testing"

func TestAddSubExact(t *testing.T) {
	a := MustNew("200.1234")
	b := MustNew("0.0001")
	got := a.Add(b)
	want := MustNew("200.1235")
	if got.Cmp(want) != 0 {
		t.Fatalf("Add: got %s want %s", got, want)
	}
	if got.Sub(b).Cmp(a) != 0 {
		t.Fatalf("Sub did not invert Add: got %s want %s", got.Sub(b), a)
	}
}

func TestDivBankersRounding(t *testing.T) {
	// 1/8 = 0.125 -> rounds to 0.12 at 2 digits under round-half-to-even.
	one := FromInt(1)
	eight := FromInt(8)
	got, ok := one.Div(eight, 2)
	if !ok {
		t.Fatalf("Div reported not ok for nonzero divisor")
	}
	want := MustNew("0.12")
	if got.Cmp(want) != 0 {
		t.Fatalf("Div: got %s want %s", got, want)
	}
}

func TestDivByZero(t *testing.T) {
	a := FromInt(5)
	_, ok := a.Div(Zero, 4)
	if ok {
		t.Fatalf("Div by zero should report ok=false")
	}
}

func TestMinMax(t *testing.T) {
	a := MustNew("1.5")
	b := MustNew("2.5")
	if Min(a, b).Cmp(a) != 0 {
		t.Fatalf("Min wrong")
	}
	if Max(a, b).Cmp(b) != 0 {
		t.Fatalf("Max wrong")
	}
}

func TestSum(t *testing.T) {
	vals := []D{FromInt(1), FromInt(2), FromInt(3)}
	got := Sum(vals)
	if got.Cmp(FromInt(6)) != 0 {
		t.Fatalf("Sum: got %s want 6", got)
	}
}

func TestFromFloatRounding(t *testing.T) {
	got := FromFloat(200.0, 0)
	if got.Cmp(FromInt(200)) != 0 {
		t.Fatalf("FromFloat: got %s want 200", got)
	}
}
