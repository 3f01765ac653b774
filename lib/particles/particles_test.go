package particles

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/mice-ics/mice/lib/eq"
)

// fakeSet creates a component with n particles whose masses are all m.
func fakeSet(name string, t PType, n int, m float32) *Set {
	s := &Set{
		Name: name, Type: t,
		Pos: make([][3]float32, n),
		Vel: make([][3]float32, n),
		Mass: make([]float32, n),
	}
	for i := range s.Mass { s.Mass[i] = m }

	if t == Gas {
		s.U = make([]float32, n)
		s.Rho = make([]float32, n)
		s.Hsml = make([]float32, n)
	}
	return s
}

func TestParsePType(t *testing.T) {
	names := []string{"gas", "halo", "disk", "bulge", "stars", "boundary"}
	for i := range names {
		ty, err := ParsePType(names[i])
		if err != nil {
			t.Errorf("Expected '%s' to parse, got error: %s",
				names[i], err.Error())
		} else if ty != PType(i) {
			t.Errorf("Expected '%s' to parse to type %d, got %d.",
				names[i], i, ty)
		}
		if s := PType(i).String(); s != names[i] {
			t.Errorf("Expected type %d to print as '%s', got '%s'.",
				i, names[i], s)
		}
	}

	if _, err := ParsePType("dark_matter"); err == nil {
		t.Errorf("Expected 'dark_matter' to fail to parse, but it didn't.")
	}
}

func TestRecombineCountsAndOrder(t *testing.T) {
	// Components are given out of type order on purpose: recombination
	// must put the gas block first regardless.
	sets := []*Set{
		fakeSet("dm", Halo, 50, 2.0),
		fakeSet("icm", Gas, 100, 1.0),
		fakeSet("bcg", Stars, 25, 3.0),
	}

	out, counts, err := Recombine(sets)
	if err != nil {
		t.Fatalf("Expected valid recombination, got error: %s", err.Error())
	}

	expCounts := []int32{100, 50, 0, 0, 25, 0}
	if !eq.Int32s(counts, expCounts) {
		t.Fatalf("Expected counts = %d, got %d.", expCounts, counts)
	}

	if out.N() != 175 {
		t.Fatalf("Expected 175 recombined particles, got %d.", out.N())
	}
	if len(out.U) != 100 || len(out.Rho) != 100 || len(out.Hsml) != 100 {
		t.Errorf("Expected the gas-only arrays to cover the 100 gas " +
			"particles, got U: %d, Rho: %d, Hsml: %d.",
			len(out.U), len(out.Rho), len(out.Hsml))
	}
	if out.Metals != nil {
		t.Errorf("Expected no metallicity array, got one with %d elements.",
			len(out.Metals))
	}

	// The gas component's unit masses must come first, then the halo's,
	// then the stars'.
	if out.Mass[0] != 1.0 || out.Mass[99] != 1.0 {
		t.Errorf("Expected the first 100 masses to be the gas component's.")
	}
	if out.Mass[100] != 2.0 || out.Mass[149] != 2.0 {
		t.Errorf("Expected masses 100-149 to be the halo component's.")
	}
	if out.Mass[150] != 3.0 || out.Mass[174] != 3.0 {
		t.Errorf("Expected masses 150-174 to be the stars component's.")
	}
}

func TestRecombineFailures(t *testing.T) {
	short := fakeSet("short", Halo, 10, 1.0)
	short.Vel = short.Vel[:9]

	gasless := fakeSet("gasless", Gas, 10, 1.0)
	gasless.Rho = nil

	crossed := fakeSet("crossed", Halo, 10, 1.0)
	crossed.U = make([]float32, 10)

	tests := [][]*Set{
		{short},
		{gasless},
		{crossed},
		{fakeSet("ok", Gas, 10, 1.0), short},
	}

	for i := range tests {
		_, _, err := Recombine(tests[i])
		if err == nil {
			t.Errorf("Expected test %d to fail to recombine, but it " +
				"succeeded.", i)
		} else if !errors.Is(err, ErrRecombination) {
			t.Errorf("Expected test %d to fail with ErrRecombination, " +
				"got: %s", i, err.Error())
		}
	}
}

func TestRecombineMixedMetallicities(t *testing.T) {
	withZ := fakeSet("cool", Gas, 10, 1.0)
	withZ.Metals = make([]float32, 10)
	withoutZ := fakeSet("hot", Gas, 10, 1.0)

	if _, _, err := Recombine([]*Set{withZ, withoutZ}); err == nil {
		t.Errorf("Expected mixed Z/no-Z gas components to fail, but they " +
			"recombined.")
	}

	other := fakeSet("cool2", Gas, 5, 1.0)
	other.Metals = make([]float32, 5)
	out, _, err := Recombine([]*Set{withZ, other})
	if err != nil {
		t.Fatalf("Expected two Z components to recombine, got error: %s",
			err.Error())
	}
	if len(out.Metals) != 15 {
		t.Errorf("Expected 15 recombined metallicities, got %d.",
			len(out.Metals))
	}
}

func TestIDs(t *testing.T) {
	ids, err := IDs(5)
	if err != nil {
		t.Fatalf("Expected valid IDs, got error: %s", err.Error())
	}
	if !eq.Int32s(ids, []int32{1, 2, 3, 4, 5}) {
		t.Errorf("Expected IDs 1-5, got %d.", ids)
	}
}
