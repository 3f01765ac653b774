package snapio

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"

	"github.com/mice-ics/mice/lib/eq"
)

// testData creates a SnapshotData with nGas gas particles and nOther
// non-gas particles, filled with distinguishable values. withGas controls
// whether the gas-only arrays are allocated; withZ controls the optional
// metallicity array.
func testData(nGas, nOther int, withGas, withZ bool) *SnapshotData {
	n := nGas + nOther
	data := &SnapshotData{
		Pos: make([][3]float32, n),
		Vel: make([][3]float32, n),
		ID: make([]int32, n),
		Mass: make([]float32, n),
	}

	for i := 0; i < n; i++ {
		fi := float32(i)
		data.Pos[i] = [3]float32{fi, fi + 0.25, fi + 0.5}
		data.Vel[i] = [3]float32{-fi, fi, 2 * fi}
		data.ID[i] = int32(i + 1)
		data.Mass[i] = 0.125
	}

	if withGas {
		data.U = make([]float32, nGas)
		data.Rho = make([]float32, nGas)
		data.Hsml = make([]float32, nGas)
		for i := 0; i < nGas; i++ {
			data.U[i] = float32(i) + 100
			data.Rho[i] = float32(i) + 200
			data.Hsml[i] = float32(i) + 300
		}
	}
	if withZ {
		data.Metals = make([]float32, nGas)
		for i := 0; i < nGas; i++ { data.Metals[i] = 0.02 }
	}

	return data
}

func blockNames(blocks []BlockInfo) []string {
	names := make([]string, len(blocks))
	for i := range blocks { names[i] = blocks[i].Name }
	return names
}

func TestWriteSnapshotOrder(t *testing.T) {
	tests := []struct {
		counts []int32
		withGas, withZ bool
		names []string
	} {
		{ []int32{0, 150, 0, 0, 0, 0}, false, false,
			[]string{"HEAD", "POS ", "VEL ", "ID  ", "MASS"} },
		{ []int32{100, 50, 0, 0, 0, 0}, true, false,
			[]string{"HEAD", "POS ", "VEL ", "ID  ", "MASS",
				"U   ", "RHO ", "HSML"} },
		{ []int32{100, 50, 0, 0, 0, 0}, true, true,
			[]string{"HEAD", "POS ", "VEL ", "ID  ", "MASS",
				"U   ", "Z   ", "RHO ", "HSML"} },
	}

	for i := range tests {
		nGas := int(tests[i].counts[0])
		data := testData(nGas, 150 - nGas, tests[i].withGas, tests[i].withZ)

		buf := &bytes.Buffer{ }
		err := WriteSnapshot(tests[i].counts, data, buf, Gadget2,
			DefaultHeaderConfig())
		if err != nil {
			t.Errorf("Expected counts = %d to write, got error: %s",
				tests[i].counts, err.Error())
			continue
		}

		_, blocks, err := ReadSnapshot(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Errorf("Expected counts = %d to read back, got error: %s",
				tests[i].counts, err.Error())
			continue
		}

		if names := blockNames(blocks); !eq.Strings(names, tests[i].names) {
			t.Errorf("Expected counts = %d to produce blocks %v, got %v.",
				tests[i].counts, tests[i].names, names)
		}
	}
}

func TestConditionalBlocksSuppressedWithoutGas(t *testing.T) {
	// The gas-only arrays are supplied, but the gas count is zero, so none
	// of U, Z, RHO, or HSML may appear.
	counts := []int32{0, 150, 0, 0, 0, 0}
	data := testData(0, 150, true, true)

	buf := &bytes.Buffer{ }
	err := WriteSnapshot(counts, data, buf, Gadget2, DefaultHeaderConfig())
	if err != nil {
		t.Fatalf("Expected valid write, got error: %s", err.Error())
	}

	_, blocks, err := ReadSnapshot(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Expected valid read-back, got error: %s", err.Error())
	}

	exp := []string{"HEAD", "POS ", "VEL ", "ID  ", "MASS"}
	if names := blockNames(blocks); !eq.Strings(names, exp) {
		t.Errorf("Expected a gasless snapshot to contain only %v, got %v.",
			exp, names)
	}
}

func TestMissingGasArrays(t *testing.T) {
	counts := []int32{10, 0, 0, 0, 0, 0}
	data := testData(10, 0, false, false)

	buf := &bytes.Buffer{ }
	err := WriteSnapshot(counts, data, buf, Gadget2, DefaultHeaderConfig())
	if err == nil {
		t.Fatalf("Expected a gas snapshot without gas arrays to fail, but " +
			"it wrote.")
	} else if !errors.Is(err, ErrMissingGasArrays) {
		t.Fatalf("Expected ErrMissingGasArrays, got: %s", err.Error())
	}

	if buf.Len() != 0 {
		t.Errorf("Expected zero bytes written after a validation failure, " +
			"got %d.", buf.Len())
	}
}

func TestUnsupportedFormat(t *testing.T) {
	counts := []int32{0, 10, 0, 0, 0, 0}
	data := testData(0, 10, false, false)

	buf := &bytes.Buffer{ }
	err := WriteSnapshot(counts, data, buf, Format(17),
		DefaultHeaderConfig())
	if err == nil {
		t.Fatalf("Expected format 17 to be rejected, but the write " +
			"succeeded.")
	} else if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Expected ErrUnsupportedFormat, got: %s", err.Error())
	}

	if buf.Len() != 0 {
		t.Errorf("Expected zero bytes written for a bad format, got %d.",
			buf.Len())
	}
}

func TestWriteSnapshotIdempotent(t *testing.T) {
	counts := []int32{100, 50, 0, 0, 0, 0}
	data := testData(100, 50, true, true)

	buf1, buf2 := &bytes.Buffer{ }, &bytes.Buffer{ }
	cfg := DefaultHeaderConfig()

	if err := WriteSnapshot(counts, data, buf1, Gadget2, cfg); err != nil {
		t.Fatalf("Expected first write to succeed, got error: %s",
			err.Error())
	}
	if err := WriteSnapshot(counts, data, buf2, Gadget2, cfg); err != nil {
		t.Fatalf("Expected second write to succeed, got error: %s",
			err.Error())
	}

	if !eq.Bytes(buf1.Bytes(), buf2.Bytes()) {
		t.Errorf("Writing the same data twice produced different bytes " +
			"(%d vs %d).", buf1.Len(), buf2.Len())
	}
}

func TestExampleScenario(t *testing.T) {
	// 100 gas + 50 halo particles, gas arrays but no metallicity.
	counts := []int32{100, 50, 0, 0, 0, 0}
	data := testData(100, 50, true, false)

	buf := &bytes.Buffer{ }
	err := WriteSnapshot(counts, data, buf, Gadget2, DefaultHeaderConfig())
	if err != nil {
		t.Fatalf("Expected valid write, got error: %s", err.Error())
	}

	hd, blocks, err := ReadSnapshot(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Expected valid read-back, got error: %s", err.Error())
	}

	exp := []string{"HEAD", "POS ", "VEL ", "ID  ", "MASS",
		"U   ", "RHO ", "HSML"}
	if names := blockNames(blocks); !eq.Strings(names, exp) {
		t.Fatalf("Expected blocks %v, got %v.", exp, names)
	}

	sizes := map[string]int32{ }
	for i := range blocks { sizes[blocks[i].Name] = blocks[i].NBytes }

	if sizes["POS "] != 150*3*4 {
		t.Errorf("Expected the POS payload to be %d bytes, got %d.",
			150*3*4, sizes["POS "])
	}
	if sizes["U   "] != 100*4 {
		t.Errorf("Expected the U payload to be %d bytes, got %d.",
			100*4, sizes["U   "])
	}
	if sizes["ID  "] != 150*4 {
		t.Errorf("Expected the ID payload to be %d bytes, got %d.",
			150*4, sizes["ID  "])
	}

	if hd.NGas() != 100 || hd.NTot() != 150 {
		t.Errorf("Expected the header to report 100 gas of 150 total " +
			"particles, got %d of %d.", hd.NGas(), hd.NTot())
	}
}

func TestReadSnapshotRejectsCorruptMarkers(t *testing.T) {
	counts := []int32{0, 10, 0, 0, 0, 0}
	data := testData(0, 10, false, false)

	buf := &bytes.Buffer{ }
	err := WriteSnapshot(counts, data, buf, Gadget2, DefaultHeaderConfig())
	if err != nil {
		t.Fatalf("Expected valid write, got error: %s", err.Error())
	}

	// Corrupt the opening size marker of the POS block. The header block
	// takes 24 + 256 bytes, so POS starts at offset 280 and its opening
	// size marker lives at bytes 296-299.
	b := buf.Bytes()
	b[296]++

	if _, _, err := ReadSnapshot(bytes.NewReader(b)); err == nil {
		t.Errorf("Expected a corrupted size marker to fail the read, but " +
			"it succeeded.")
	}

	if _, _, err := ReadSnapshot(bytes.NewReader([]byte{1, 2})); err == nil {
		t.Errorf("Expected a truncated file to fail the read, but it " +
			"succeeded.")
	}
}
