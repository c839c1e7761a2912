package core

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/dustin/go-humanize"

	"github.com/0xRadioAc7iv/go-slotstore/internal/alloc"
	"github.com/0xRadioAc7iv/go-slotstore/internal/record"
)

// Stats summarizes a store pair.
type Stats struct {
	Records int // Total slots in the directory
	Live    int
	Free    int

	FreeIDs *roaring.Bitmap // Ids of reclaimable slots

	ContentBytes int64 // Size of the content store
	IndexBytes   int64 // Size of the directory store

	LiveBytes        uint64 // Sum of live record lengths
	ReclaimableBytes uint64 // Sum of freed slot capacities
}

func computeStats(records []record.Record, contentBytes, indexBytes int64) Stats {
	s := Stats{
		Records:      len(records),
		FreeIDs:      alloc.FreeSlots(records),
		ContentBytes: contentBytes,
		IndexBytes:   indexBytes,
	}

	for _, r := range records {
		if r.IsFree() {
			s.Free++
			s.ReclaimableBytes += uint64(r.Length)
			continue
		}
		s.Live++
		s.LiveBytes += uint64(r.Length)
	}

	return s
}

func (s Stats) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "records:     %d (%d live, %d free)\n", s.Records, s.Live, s.Free)
	fmt.Fprintf(&b, "content:     %s\n", humanize.Bytes(uint64(s.ContentBytes)))
	fmt.Fprintf(&b, "index:       %s\n", humanize.Bytes(uint64(s.IndexBytes)))
	fmt.Fprintf(&b, "live:        %s\n", humanize.Bytes(s.LiveBytes))
	fmt.Fprintf(&b, "reclaimable: %s", humanize.Bytes(s.ReclaimableBytes))

	if s.FreeIDs != nil && !s.FreeIDs.IsEmpty() {
		fmt.Fprintf(&b, "\nfree ids:    %s", s.FreeIDs.String())
	}

	return b.String()
}
