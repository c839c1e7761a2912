package alloc

import (
	"errors"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/0xRadioAc7iv/go-slotstore/internal/record"
)

// ErrIDSpaceExhausted indicates that no fresh slot id can be assigned.
var ErrIDSpaceExhausted = errors.New("alloc: slot id space exhausted")

// Placement is the allocator's decision for a piece of content.
type Placement struct {
	ID uint32
	// Reuse is true when the content goes into a freed slot's region at
	// Offset. Otherwise the content is appended to the content store.
	Reuse  bool
	Offset uint32
}

// FindPlacement picks a slot for requested bytes of content given every
// record currently in the directory, in directory order.
func FindPlacement(requested uint32, records []record.Record) (Placement, error) {
	if len(records) == 0 {
		return Placement{ID: 0}, nil
	}

	var maxID uint32
	for _, r := range records {
		if r.ID > maxID {
			maxID = r.ID
		}
		if r.IsFree() && r.Length >= requested {
			return Placement{ID: r.ID, Reuse: true, Offset: r.Offset}, nil
		}
	}

	if maxID == math.MaxUint32 {
		return Placement{}, ErrIDSpaceExhausted
	}

	return Placement{ID: maxID + 1}, nil
}

// FreeSlots returns the ids of all reclaimable records.
func FreeSlots(records []record.Record) *roaring.Bitmap {
	bm := roaring.New()
	for _, r := range records {
		if r.IsFree() {
			bm.Add(r.ID)
		}
	}
	return bm
}
