package snapio

/* block.go frames byte payloads as the size-tagged blocks of the legacy
Fortran unformatted-record convention. Each block on disk looks like

    [4B dummy = 8][4B name][4B dummy = nbytes+8][4B dummy = 8]
    [4B dummy = nbytes][payload: nbytes bytes][4B dummy = nbytes]

The triple dummy sequence in the middle looks redundant, but existing Gadget
readers navigate files by these exact markers, so it is reproduced
bit-for-bit. A reader can skip any block by reading its opening and closing
size markers without interpreting the payload. */

import (
	"encoding/binary"
	"io"
	"reflect"
	"unsafe"

	"github.com/pkg/errors"
)

// ElementKind describes how the elements of a block payload are encoded on
// disk. Every typed element occupies 4 bytes regardless of the host
// platform's native widths.
type ElementKind int

const (
	// RawBytes is used for the pre-encoded header payload, which is written
	// verbatim.
	RawBytes ElementKind = iota
	// Float32 elements are 4-byte IEEE-754 floats.
	Float32
	// Int32 elements are 4-byte signed integers.
	Int32
	// Vec32 elements are 3-vectors of 4-byte floats, 3 elements per
	// particle.
	Vec32
)

// BlockKind enumerates the blocks a Gadget-2 snapshot can contain. Each kind
// carries its 4-character on-disk name, the element kind of its payload,
// and whether it is only emitted for snapshots with gas particles.
type BlockKind int

const (
	BlockHead BlockKind = iota
	BlockPos
	BlockVel
	BlockID
	BlockMass
	BlockU
	BlockZ
	BlockRho
	BlockHsml
)

var blockTable = []struct {
	name string
	elem ElementKind
	gasOnly bool
} {
	BlockHead: { "HEAD", RawBytes, false },
	BlockPos:  { "POS ", Vec32, false },
	BlockVel:  { "VEL ", Vec32, false },
	BlockID:   { "ID  ", Int32, false },
	BlockMass: { "MASS", Float32, false },
	BlockU:    { "U   ", Float32, true },
	BlockZ:    { "Z   ", Float32, true },
	BlockRho:  { "RHO ", Float32, true },
	BlockHsml: { "HSML", Float32, true },
}

// Name returns the block's 4-character on-disk name, space-padded.
func (k BlockKind) Name() string { return blockTable[k].name }

// Element returns the element kind the block's payload must have.
func (k BlockKind) Element() ElementKind { return blockTable[k].elem }

// GasOnly returns true if the block only appears in snapshots with a
// positive gas particle count.
func (k BlockKind) GasOnly() bool { return blockTable[k].gasOnly }

// WriteBlock frames payload as the block kind and appends it to w. The
// payload must be []byte for RawBytes blocks, []float32 for Float32 blocks,
// []int32 for Int32 blocks, and [][3]float32 for Vec32 blocks; anything
// else fails with an ErrElementKind error.
func WriteBlock(w io.Writer, kind BlockKind, payload interface{}) error {
	return WriteNamedBlock(w, kind.Name(), kind.Element(), payload)
}

// WriteNamedBlock is the general form of WriteBlock: it frames payload,
// whose elements are encoded as elem, under an arbitrary block name. The
// name is padded to 4 characters with trailing spaces; names which are
// empty or longer than 4 characters fail with an ErrBlockName error.
func WriteNamedBlock(
	w io.Writer, name string, elem ElementKind, payload interface{},
) error {
	name, err := padBlockName(name)
	if err != nil { return err }

	nbytes, err := payloadSize(name, elem, payload)
	if err != nil { return err }

	// The leading dummy holds the size of the name field, which is 8 bytes
	// in the convention Gadget uses (4 name characters + a trailing size
	// int that this writer folds into the next marker group).
	if err := writeDummy(w, 8); err != nil { return err }
	if _, err := w.Write([]byte(name)); err != nil { return err }
	if err := writeDummy(w, nbytes+8, 8, nbytes); err != nil { return err }
	if err := writePayload(w, payload); err != nil { return err }
	return writeDummy(w, nbytes)
}

// padBlockName pads name with trailing spaces to exactly 4 characters.
func padBlockName(name string) (string, error) {
	if len(name) == 0 || len(name) > 4 {
		return "", errors.Wrapf(ErrBlockName,
			"block names must be 1 to 4 characters, got '%s'", name)
	}
	for len(name) < 4 { name += " " }
	return name, nil
}

// payloadSize computes nbytes, the on-disk payload size recorded in the
// block's markers, and checks that the payload's type matches elem. The
// header payload has a fixed size of HeaderSize bytes independent of its
// element count; every other block stores 4 bytes per element.
func payloadSize(
	name string, elem ElementKind, payload interface{},
) (int32, error) {
	switch elem {
	case RawBytes:
		b, ok := payload.([]byte)
		if !ok {
			return 0, errors.Wrapf(ErrElementKind,
				"block '%s' declares raw bytes, but its payload is %T",
				name, payload)
		}
		if len(b) != HeaderSize {
			return 0, errors.Wrapf(ErrElementKind,
				"raw-byte blocks are only used for the %d-byte header, " +
					"but block '%s' has %d bytes", HeaderSize, name, len(b))
		}
		return HeaderSize, nil
	case Float32:
		x, ok := payload.([]float32)
		if !ok {
			return 0, errors.Wrapf(ErrElementKind,
				"block '%s' declares float32 elements, but its payload " +
					"is %T", name, payload)
		}
		return 4*int32(len(x)), nil
	case Int32:
		x, ok := payload.([]int32)
		if !ok {
			return 0, errors.Wrapf(ErrElementKind,
				"block '%s' declares int32 elements, but its payload is %T",
				name, payload)
		}
		return 4*int32(len(x)), nil
	case Vec32:
		x, ok := payload.([][3]float32)
		if !ok {
			return 0, errors.Wrapf(ErrElementKind,
				"block '%s' declares 3-vector elements, but its payload " +
					"is %T", name, payload)
		}
		return 12*int32(len(x)), nil
	}
	return 0, errors.Wrapf(ErrElementKind,
		"block '%s' declares the unknown element kind %d", name, elem)
}

// writeDummy writes each value as a 4-byte size marker, mirroring the dummy
// integers of the unformatted-record convention.
func writeDummy(w io.Writer, values ...int32) error {
	for _, v := range values {
		if err := binary.Write(w, byteOrder, v); err != nil { return err }
	}
	return nil
}

func writePayload(w io.Writer, payload interface{}) error {
	switch x := payload.(type) {
	case []byte:
		_, err := w.Write(x)
		return err
	case []float32:
		return binary.Write(w, byteOrder, x)
	case []int32:
		return binary.Write(w, byteOrder, x)
	case [][3]float32:
		// binary.Write falls back to reflection for [][3]float32 and makes
		// a heap allocation per vector, so flatten the slice first.
		hd := *(*reflect.SliceHeader)(unsafe.Pointer(&x))
		hd.Len *= 3
		hd.Cap *= 3

		f32x := *(*[]float32)(unsafe.Pointer(&hd))
		err := binary.Write(w, byteOrder, f32x)

		hd.Len /= 3
		hd.Cap /= 3

		return err
	}
	panic("Internal error: payloadSize() let an unsupported type through.")
}
