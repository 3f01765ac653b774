package snapio

/* writer.go assembles the fixed block sequence that makes up one snapshot
file. */

import (
	"io"

	"github.com/pkg/errors"
)

// SnapshotData bundles the per-particle arrays of one snapshot in the order
// they are consumed. The arrays are borrowed from the caller for the
// duration of a single WriteSnapshot call, read once each, and never
// retained. Pos, Vel, ID, and Mass cover every particle in particle-type
// order; U, Rho, and Hsml cover only the gas particles and may be nil when
// there are none. Metals is optional even for gas.
type SnapshotData struct {
	Pos, Vel [][3]float32
	ID []int32
	Mass []float32
	U, Rho, Hsml []float32
	Metals []float32
}

// WriteSnapshot writes one complete snapshot to w: the header built from
// counts and cfg, then the POS, VEL, ID, and MASS blocks, then, if
// counts[0] > 0, the gas-only blocks U, Z (only when Metals was supplied),
// RHO, and HSML, in exactly that order.
//
// All validation happens before the first byte is written, so a validation
// failure leaves w untouched. An I/O failure mid-sequence leaves a
// truncated, non-conforming file behind; callers must treat such a file as
// unusable and discard it. WriteSnapshot does not check that Pos, Vel, ID,
// and Mass agree in length with counts; that is the particle-generation
// stage's contract.
func WriteSnapshot(
	counts []int32, data *SnapshotData, w io.Writer,
	format Format, cfg HeaderConfig,
) error {
	if format != Gadget2 {
		return errors.Wrapf(ErrUnsupportedFormat,
			"the format code %d is not a supported file format; only " +
				"'%s' snapshots can be written", format, Gadget2)
	}

	hd, err := EncodeHeader(counts, cfg)
	if err != nil { return err }

	nGas := counts[0]
	if nGas > 0 &&
		(data.U == nil || data.Rho == nil || data.Hsml == nil) {
		return errors.Wrapf(ErrMissingGasArrays,
			"the snapshot has %d gas particles, so the internal energy, " +
				"density, and smoothing length arrays are all required " +
				"(got U: %v, Rho: %v, Hsml: %v)",
			nGas, data.U != nil, data.Rho != nil, data.Hsml != nil)
	}

	if err := WriteBlock(w, BlockHead, hd); err != nil { return err }
	if err := WriteBlock(w, BlockPos, data.Pos); err != nil { return err }
	if err := WriteBlock(w, BlockVel, data.Vel); err != nil { return err }
	if err := WriteBlock(w, BlockID, data.ID); err != nil { return err }
	if err := WriteBlock(w, BlockMass, data.Mass); err != nil { return err }

	if nGas > 0 {
		if err := WriteBlock(w, BlockU, data.U); err != nil { return err }
		if data.Metals != nil {
			err := WriteBlock(w, BlockZ, data.Metals)
			if err != nil { return err }
		}
		if err := WriteBlock(w, BlockRho, data.Rho); err != nil { return err }
		err := WriteBlock(w, BlockHsml, data.Hsml)
		if err != nil { return err }
	}

	return nil
}
