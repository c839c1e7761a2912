package core

import (
	"math"

	"github.com/pkg/errors"

	"github.com/0xRadioAc7iv/go-slotstore/internal/alloc"
	"github.com/0xRadioAc7iv/go-slotstore/internal/bytestore"
	"github.com/0xRadioAc7iv/go-slotstore/internal/record"
)

// The functions in this file operate on a raw (content, directory) store
// pair and take no locks. Running two of them at once against the same pair
// can hand out the same placement twice; Slotstore serializes them.

// Create stores content in a new or reused slot and persists its record.
func Create(content []byte, contentStore, dirStore bytestore.Store) (record.Record, error) {
	length, err := contentLength(uint64(len(content)))
	if err != nil {
		return record.Record{}, errors.Wrap(err, "create")
	}

	records, err := Enumerate(dirStore)
	if err != nil {
		return record.Record{}, errors.Wrap(err, "create")
	}

	r, err := place(length, records, contentStore)
	if err != nil {
		return record.Record{}, errors.Wrap(err, "create")
	}

	if err := writeContent(r, content, contentStore); err != nil {
		return record.Record{}, errors.Wrap(err, "create")
	}
	if err := Save(r, dirStore); err != nil {
		return record.Record{}, errors.Wrap(err, "create")
	}

	return r, nil
}

func contentLength(n uint64) (uint32, error) {
	if n > math.MaxUint32 {
		return 0, errors.Wrapf(ErrContentTooLarge, "%d bytes", n)
	}
	return uint32(n), nil
}

// place picks the slot for length bytes of content without writing
// anything. An append that would end past the 32-bit offset space fails.
func place(length uint32, records []record.Record, contentStore bytestore.Store) (record.Record, error) {
	placement, err := alloc.FindPlacement(length, records)
	if err != nil {
		return record.Record{}, err
	}

	offset := placement.Offset
	if !placement.Reuse {
		end, err := contentStore.Len()
		if err != nil {
			return record.Record{}, err
		}
		if uint64(end)+uint64(length) > math.MaxUint32 {
			return record.Record{}, errors.Wrapf(ErrOffsetOverflow, "append %d bytes at %d", length, end)
		}
		offset = uint32(end)
	}

	return record.Record{
		ID:     placement.ID,
		Offset: offset,
		Length: length,
		State:  record.Live,
	}, nil
}

func writeContent(r record.Record, content []byte, contentStore bytestore.Store) error {
	if err := contentStore.WriteAt(int64(r.Offset), content); err != nil {
		return errors.Wrapf(err, "write content at %d", r.Offset)
	}
	return nil
}

// Save writes r at its slot in the directory, replacing whatever was there.
func Save(r record.Record, dirStore bytestore.Store) error {
	if err := dirStore.WriteAt(r.Position(), record.Encode(r)); err != nil {
		return errors.Wrapf(err, "save slot %d", r.ID)
	}
	return nil
}

// Enumerate returns every record in the directory in slot order.
func Enumerate(dirStore bytestore.Store) ([]record.Record, error) {
	data, err := dirStore.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate")
	}

	records, err := record.DecodeAll(data)
	if err != nil {
		return nil, errors.Wrap(err, "enumerate")
	}

	return records, nil
}

// Lookup reads the record stored at slot id.
func Lookup(id uint32, dirStore bytestore.Store) (record.Record, error) {
	pos := record.Record{ID: id}.Position()

	data, err := dirStore.ReadAt(pos, record.Size)
	if err != nil {
		if errors.Is(err, bytestore.ErrOutOfBounds) {
			return record.Record{}, errors.Wrapf(ErrNotFound, "slot %d", id)
		}
		return record.Record{}, errors.Wrapf(err, "lookup slot %d", id)
	}

	r, _, err := record.DecodeFirst(data)
	if err != nil {
		return record.Record{}, errors.Wrapf(err, "lookup slot %d", id)
	}
	if r.ID != id {
		return record.Record{}, errors.Wrapf(record.ErrCorrupt, "slot %d holds record with id %d", id, r.ID)
	}

	return r, nil
}

// Free marks r reclaimable in place. Its offset and length are kept so the
// region can be reused by a later allocation of at most Length bytes.
func Free(r record.Record, dirStore bytestore.Store) (record.Record, error) {
	freed := r.Free()
	if err := Save(freed, dirStore); err != nil {
		return record.Record{}, errors.Wrap(err, "free")
	}
	return freed, nil
}

// GetContent reads the content region described by r.
func GetContent(r record.Record, contentStore bytestore.Store) ([]byte, error) {
	content, err := contentStore.ReadAt(int64(r.Offset), int(r.Length))
	if err != nil {
		return nil, errors.Wrapf(err, "read slot %d", r.ID)
	}
	return content, nil
}

// Update replaces the content of r.
//
// Content that fits within r.Length is written over the existing region and
// the same slot is returned with the new length. Bytes past the new length
// are left in place; reads never return them. Larger content frees r and is
// created elsewhere, so the returned record may have a different id.
//
// The new placement is chosen and its content written before r is freed.
// When either step fails r is still live.
func Update(r record.Record, contentStore, dirStore bytestore.Store, content []byte) (record.Record, error) {
	length, err := contentLength(uint64(len(content)))
	if err != nil {
		return record.Record{}, errors.Wrapf(err, "update slot %d", r.ID)
	}

	if length > r.Length {
		return relocate(r, contentStore, dirStore, content)
	}

	if err := writeContent(r, content, contentStore); err != nil {
		return record.Record{}, errors.Wrapf(err, "update slot %d", r.ID)
	}

	r.Length = length
	r.State = record.Live

	if err := Save(r, dirStore); err != nil {
		return record.Record{}, errors.Wrapf(err, "update slot %d", r.ID)
	}

	return r, nil
}

// relocate moves r's content to a new slot chosen as if r were already free.
func relocate(r record.Record, contentStore, dirStore bytestore.Store, content []byte) (record.Record, error) {
	records, err := Enumerate(dirStore)
	if err != nil {
		return record.Record{}, errors.Wrapf(err, "update slot %d", r.ID)
	}
	if int(r.ID) < len(records) {
		records[r.ID] = r.Free()
	}

	next, err := place(uint32(len(content)), records, contentStore)
	if err != nil {
		return record.Record{}, errors.Wrapf(err, "update slot %d", r.ID)
	}
	if err := writeContent(next, content, contentStore); err != nil {
		return record.Record{}, errors.Wrapf(err, "update slot %d", r.ID)
	}

	if _, err := Free(r, dirStore); err != nil {
		return record.Record{}, errors.Wrapf(err, "update slot %d", r.ID)
	}
	if err := Save(next, dirStore); err != nil {
		return record.Record{}, errors.Wrapf(err, "update slot %d", r.ID)
	}

	return next, nil
}

// Reset discards every record and all content.
func Reset(contentStore, dirStore bytestore.Store) error {
	if err := contentStore.Truncate(); err != nil {
		return errors.Wrap(err, "reset content store")
	}
	if err := dirStore.Truncate(); err != nil {
		return errors.Wrap(err, "reset directory store")
	}
	return nil
}
