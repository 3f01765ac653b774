package snapio

/* reader.go walks the blocks of an existing snapshot, checking every framing
marker along the way. It backs the "verify" command and the round-trip
tests; it is not a general-purpose Gadget-2 reader. */

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// BlockInfo describes one block found while reading a snapshot back.
type BlockInfo struct {
	// Name is the block's 4-character identifier, e.g. "POS ".
	Name string
	// NBytes is the payload size recorded in the block's size markers.
	NBytes int32
	// Payload is the raw payload bytes.
	Payload []byte
}

// ReadSnapshot reads a complete snapshot from r, validating the framing of
// every block, and returns the decoded header along with the blocks in file
// order (the header block included, first). Any marker that doesn't match
// the unformatted-record convention makes the whole file invalid.
func ReadSnapshot(r io.Reader) (*Header, []BlockInfo, error) {
	blocks := []BlockInfo{ }

	for {
		block, err := readBlock(r, len(blocks))
		if err == io.EOF { break }
		if err != nil { return nil, nil, err }
		blocks = append(blocks, *block)
	}

	if len(blocks) == 0 {
		return nil, nil, fmt.Errorf("the file contains no blocks at all; " +
			"it is not a Gadget-2 snapshot")
	} else if blocks[0].Name != BlockHead.Name() {
		return nil, nil, fmt.Errorf("the first block in the file is '%s', " +
			"but Gadget-2 snapshots always start with '%s'",
			blocks[0].Name, BlockHead.Name())
	} else if blocks[0].NBytes != HeaderSize {
		return nil, nil, fmt.Errorf("the header block has %d bytes instead " +
			"of %d; the file was probably written by something other than " +
			"a Gadget-2 code", blocks[0].NBytes, HeaderSize)
	}

	hd, err := DecodeHeader(bytes.NewReader(blocks[0].Payload))
	if err != nil { return nil, nil, err }

	return hd, blocks, nil
}

// readBlock reads one framed block. It returns io.EOF, untouched, when the
// reader is cleanly exhausted before a new block starts.
func readBlock(r io.Reader, i int) (*BlockInfo, error) {
	var nameSize int32
	err := binary.Read(r, byteOrder, &nameSize)
	if err == io.EOF { return nil, io.EOF }
	if err != nil { return nil, err }
	if nameSize != 8 {
		return nil, fmt.Errorf("block %d starts with the marker %d instead " +
			"of the name-size marker 8. Either the previous block's size " +
			"markers are wrong or this is not a Gadget-2 snapshot.",
			i, nameSize)
	}

	rawName := make([]byte, 4)
	if _, err := io.ReadFull(r, rawName); err != nil { return nil, err }
	name := string(rawName)

	var combined, nameClose, nbytes, footer int32
	if err := binary.Read(r, byteOrder, &combined); err != nil {
		return nil, err
	}
	if err := binary.Read(r, byteOrder, &nameClose); err != nil {
		return nil, err
	}
	if err := binary.Read(r, byteOrder, &nbytes); err != nil {
		return nil, err
	}

	if nameClose != 8 {
		return nil, fmt.Errorf("block '%s' closes its name record with the " +
			"marker %d instead of 8", name, nameClose)
	} else if combined != nbytes+8 {
		return nil, fmt.Errorf("block '%s' has a combined size marker of " +
			"%d, but its payload size marker is %d, so the combined marker " +
			"should be %d", name, combined, nbytes, nbytes+8)
	} else if nbytes < 0 {
		return nil, fmt.Errorf("block '%s' claims a negative payload size, " +
			"%d", name, nbytes)
	}

	payload := make([]byte, nbytes)
	if _, err := io.ReadFull(r, payload); err != nil { return nil, err }

	if err := binary.Read(r, byteOrder, &footer); err != nil {
		return nil, err
	}
	if footer != nbytes {
		return nil, fmt.Errorf("the opening size marker of block '%s', %d, " +
			"and its closing marker, %d, don't match", name, nbytes, footer)
	}

	return &BlockInfo{ name, nbytes, payload }, nil
}
