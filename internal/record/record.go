package record

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// State is the allocation state of a directory slot.
type State uint8

const (
	// Live marks a slot whose content region is owned by the record.
	Live State = 0
	// Reclaimable marks a freed slot. Its Length is the capacity a future
	// allocation may reuse.
	Reclaimable State = 1
)

func (s State) String() string {
	switch s {
	case Live:
		return "live"
	case Reclaimable:
		return "free"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Record is a single directory entry mapping a slot id to a byte range in
// the content store.
type Record struct {
	ID     uint32 // Slot index, also the record's position in the directory file
	Offset uint32 // Byte offset of the content region
	Length uint32 // Content length, or reusable capacity once freed
	State  State
}

// ID (4) + Offset (4) + Length (4) + State (1)
const Size = 13

// ErrCorrupt is returned when directory bytes cannot be decoded into whole records.
var ErrCorrupt = errors.New("record: corrupt directory data")

// IsFree reports whether the slot may be reused by the allocator.
func (r Record) IsFree() bool {
	return r.State == Reclaimable
}

// Free returns a copy of r marked reclaimable. Offset and Length are kept.
func (r Record) Free() Record {
	r.State = Reclaimable
	return r
}

// End returns the first byte past the record's content region.
func (r Record) End() uint64 {
	return uint64(r.Offset) + uint64(r.Length)
}

// Position returns the byte offset of the record inside the directory file.
func (r Record) Position() int64 {
	return int64(r.ID) * Size
}

func (r Record) String() string {
	return fmt.Sprintf("id=%d offset=%d length=%d state=%s", r.ID, r.Offset, r.Length, r.State)
}

// Encode serializes r into exactly Size bytes.
func Encode(r Record) []byte {
	buf := make([]byte, Size)
	binary.LittleEndian.PutUint32(buf[0:4], r.ID)
	binary.LittleEndian.PutUint32(buf[4:8], r.Offset)
	binary.LittleEndian.PutUint32(buf[8:12], r.Length)
	buf[12] = byte(r.State)
	return buf
}

// DecodeFirst decodes the record held in the first Size bytes of data and
// returns the remaining bytes.
func DecodeFirst(data []byte) (Record, []byte, error) {
	if len(data) < Size {
		return Record{}, data, errors.Wrapf(ErrCorrupt, "%d trailing bytes", len(data))
	}

	state := State(data[12])
	if state != Live && state != Reclaimable {
		return Record{}, data, errors.Wrapf(ErrCorrupt, "unknown state byte %d", data[12])
	}

	r := Record{
		ID:     binary.LittleEndian.Uint32(data[0:4]),
		Offset: binary.LittleEndian.Uint32(data[4:8]),
		Length: binary.LittleEndian.Uint32(data[8:12]),
		State:  state,
	}

	return r, data[Size:], nil
}

// DecodeAll decodes every record in data, in file order. The length of data
// must be a multiple of Size.
func DecodeAll(data []byte) ([]Record, error) {
	if len(data)%Size != 0 {
		return nil, errors.Wrapf(ErrCorrupt, "directory length %d is not a multiple of %d", len(data), Size)
	}

	records := make([]Record, 0, len(data)/Size)

	for len(data) >= Size {
		var (
			r   Record
			err error
		)
		r, data, err = DecodeFirst(data)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, nil
}
