package bayes

import (
	"testing"
)

func TestFactor_Reduce(t *testing.T) {
	// f(A, B) with A in {0,1}, B in {0,1,2}
	f := NewFactor([]string{"A", "B"}, []int{2, 3}, []float64{1, 2, 3, 4, 5, 6})

	got := f.Reduce(Assignment{"A": 1})
	if vars := got.Vars(); len(vars) != 1 || vars[0] != "B" {
		t.Fatalf("Expected scope [B], got %v", vars)
	}
	want := []float64{4, 5, 6}
	for i, v := range got.Values() {
		if v != want[i] {
			t.Errorf("Reduce(A=1)[%d] = %f, expected %f", i, v, want[i])
		}
	}

	got = f.Reduce(Assignment{"B": 2, "C": 0})
	want = []float64{3, 6}
	for i, v := range got.Values() {
		if v != want[i] {
			t.Errorf("Reduce(B=2)[%d] = %f, expected %f", i, v, want[i])
		}
	}

	scalar := f.Reduce(Assignment{"A": 0, "B": 1})
	if !scalar.Scalar() || scalar.Values()[0] != 2 {
		t.Errorf("Expected scalar 2, got %v over %v", scalar.Values(), scalar.Vars())
	}
}

func TestFactor_ProductAndSumOut(t *testing.T) {
	a := NewFactor([]string{"A"}, []int{2}, []float64{0.6, 0.4})
	ba := NewFactor([]string{"A", "B"}, []int{2, 2}, []float64{0.9, 0.1, 0.2, 0.8})

	joint := a.Product(ba)
	want := []float64{0.54, 0.06, 0.08, 0.32}
	for i, v := range joint.Values() {
		if !approx(v, want[i]) {
			t.Errorf("joint[%d] = %f, expected %f", i, v, want[i])
		}
	}

	b := joint.SumOut("A")
	if vars := b.Vars(); len(vars) != 1 || vars[0] != "B" {
		t.Fatalf("Expected scope [B], got %v", vars)
	}
	if got := b.Values(); !approx(got[0], 0.62) || !approx(got[1], 0.38) {
		t.Errorf("P(B) = %v, expected [0.62 0.38]", got)
	}

	if same := b.SumOut("Z"); len(same.Vars()) != 1 {
		t.Errorf("SumOut of absent variable changed scope: %v", same.Vars())
	}
}

func TestFactor_ProductDisjointScopes(t *testing.T) {
	a := NewFactor([]string{"A"}, []int{2}, []float64{1, 2})
	b := NewFactor([]string{"B"}, []int{3}, []float64{1, 10, 100})

	got := a.Product(b)
	want := []float64{1, 10, 100, 2, 20, 200}
	for i, v := range got.Values() {
		if v != want[i] {
			t.Errorf("product[%d] = %f, expected %f", i, v, want[i])
		}
	}
}

func TestFactor_Normalize(t *testing.T) {
	f := NewFactor([]string{"A"}, []int{2}, []float64{3, 1})
	got, ok := f.Normalize()
	if !ok {
		t.Fatal("Normalize reported zero mass")
	}
	if v := got.Values(); v[0] != 0.75 || v[1] != 0.25 {
		t.Errorf("Normalize = %v, expected [0.75 0.25]", v)
	}

	if _, ok := NewFactor([]string{"A"}, []int{2}, []float64{0, 0}).Normalize(); ok {
		t.Error("Expected Normalize to fail on zero mass")
	}
}
