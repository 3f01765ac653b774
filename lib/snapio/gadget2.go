package snapio

/* gadget2.go contains the 256-byte Gadget-2 header and its encoder. */

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const (
	// HeaderSize is the exact serialized size of a Gadget-2 header. The
	// struct is padded out to this size regardless of how many fields it
	// contains.
	HeaderSize = 256

	// NTypes is the number of Gadget-2 particle types: gas, halo, disk,
	// bulge, stars, and boundary, in that order. Index 0 (gas) gates the
	// emission of the gas-only blocks.
	NTypes = 6
)

// Header is a struct with the same fields as the raw header data of a
// Gadget-2 file. Its serialized form with a little-endian byte order is
// exactly the first data block of the file.
type Header struct {
	NPart [6]int32
	Mass [6]float64
	Time, Redshift float64
	FlagSFR, FlagFeedback int32
	NPartTotal [6]int32
	FlagCooling, NumFiles int32
	BoxSize, Omega0, OmegaLambda, HubbleParam float64
	FlagAge, FlagMetals int32
	Empty [88]byte
}

// HeaderConfig collects the scenario metadata that gets copied into the
// header. It is passed explicitly to NewHeader rather than read from any
// process-wide state, so two snapshots written by the same process can use
// different configurations.
type HeaderConfig struct {
	// MassTable holds the per-type particle masses. A zero entry means the
	// masses of that type are stored in the MASS block instead.
	MassTable [6]float64
	Time, Redshift float64
	FlagSFR, FlagFeedback, FlagCooling, FlagAge, FlagMetals int32
	NumFiles int32
	BoxSize, Omega0, OmegaLambda, HubbleParam float64
}

// DefaultHeaderConfig returns the configuration used when the scenario
// doesn't override anything: all masses in the MASS block, t = 0, z = 0, all
// flags off, a single file, and h = 1.
func DefaultHeaderConfig() HeaderConfig {
	return HeaderConfig{ NumFiles: 1, HubbleParam: 1.0 }
}

// NewHeader builds a Header from the per-type particle counts and the
// scenario metadata. counts must have exactly NTypes non-negative elements.
// The writer only produces single-file snapshots, so the total counts are
// the same as the per-file counts.
func NewHeader(counts []int32, cfg HeaderConfig) (*Header, error) {
	if len(counts) != NTypes {
		return nil, errors.Wrapf(ErrInvalidHeader,
			"the particle count sequence has %d elements, but Gadget-2 " +
				"headers require exactly %d, one for each particle type",
			len(counts), NTypes)
	}

	hd := &Header{
		Mass: cfg.MassTable,
		Time: cfg.Time, Redshift: cfg.Redshift,
		FlagSFR: cfg.FlagSFR, FlagFeedback: cfg.FlagFeedback,
		FlagCooling: cfg.FlagCooling, NumFiles: cfg.NumFiles,
		BoxSize: cfg.BoxSize, Omega0: cfg.Omega0,
		OmegaLambda: cfg.OmegaLambda, HubbleParam: cfg.HubbleParam,
		FlagAge: cfg.FlagAge, FlagMetals: cfg.FlagMetals,
	}

	for i, n := range counts {
		if n < 0 {
			return nil, errors.Wrapf(ErrInvalidHeader,
				"particle type %d has a negative count, %d", i, n)
		}
		hd.NPart[i] = n
		hd.NPartTotal[i] = n
	}

	return hd, nil
}

// EncodeHeader serializes the header built from counts and cfg into exactly
// HeaderSize little-endian bytes. It is a pure function of its inputs.
func EncodeHeader(counts []int32, cfg HeaderConfig) ([]byte, error) {
	hd, err := NewHeader(counts, cfg)
	if err != nil { return nil, err }

	buf := &bytes.Buffer{ }
	err = binary.Write(buf, byteOrder, hd)
	if err != nil { return nil, err }

	return buf.Bytes(), nil
}

// DecodeHeader reads a raw 256-byte header payload back into a Header.
func DecodeHeader(r io.Reader) (*Header, error) {
	hd := &Header{ }
	err := binary.Read(r, byteOrder, hd)
	if err != nil { return nil, err }
	return hd, nil
}

// NGas returns the number of gas particles in the header, which controls
// whether the gas-only blocks appear in the file.
func (hd *Header) NGas() int32 { return hd.NPart[0] }

// NTot returns the total number of particles in the file across all types.
func (hd *Header) NTot() int64 {
	n := int64(0)
	for i := range hd.NPart { n += int64(hd.NPart[i]) }
	return n
}
