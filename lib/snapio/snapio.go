/*package snapio writes and reads Gadget-2 snapshot files. The on-disk layout
is fixed by the reader ecosystem: a 256-byte header followed by a sequence of
named data blocks, each framed with the Fortran unformatted-record markers
that legacy Gadget readers expect. Adding support for a new on-disk format
requires adding a Format constant and teaching WriteSnapshot about it.
*/
package snapio

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Format identifies an on-disk snapshot layout. Gadget2 is currently the only
// supported format.
type Format int

const (
	Gadget2 Format = iota
)

func (f Format) String() string {
	switch f {
	case Gadget2: return "gadget2"
	}
	return "unknown"
}

// ParseFormat converts a user-supplied format name into a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "gadget2": return Gadget2, nil
	}
	return -1, errors.Wrapf(ErrUnsupportedFormat,
		"'%s' is not a supported file format", s)
}

// byteOrder is the byte order of every supported snapshot format. It is
// dictated by the simulation codes that consume these files, not a choice
// this package gets to make.
var byteOrder binary.ByteOrder = binary.LittleEndian

// The error kinds returned by this package. Callers can test for them with
// errors.Is(); the errors actually returned wrap these with context about
// what went wrong.
var (
	// ErrInvalidHeader means the particle-count sequence handed to the
	// header encoder was malformed.
	ErrInvalidHeader = errors.New("invalid header configuration")
	// ErrUnsupportedFormat means the requested on-disk format isn't one
	// this package knows how to write.
	ErrUnsupportedFormat = errors.New("unsupported snapshot format")
	// ErrMissingGasArrays means the gas particle count is positive, but one
	// of the gas-only arrays (U, Rho, Hsml) wasn't supplied.
	ErrMissingGasArrays = errors.New("missing gas-only arrays")
	// ErrElementKind means a block payload's type doesn't match the element
	// kind declared for that block.
	ErrElementKind = errors.New("unsupported element kind")
	// ErrBlockName means a block name couldn't be padded to exactly four
	// characters.
	ErrBlockName = errors.New("invalid block name")
)
