package core_test

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xRadioAc7iv/go-slotstore/core"
	"github.com/0xRadioAc7iv/go-slotstore/internal/bytestore"
	"github.com/0xRadioAc7iv/go-slotstore/internal/record"
)

func fileStores(t *testing.T) (content, dir *bytestore.File) {
	t.Helper()

	base := t.TempDir()

	content, err := bytestore.Open(filepath.Join(base, "collections"))
	require.NoError(t, err)
	dir, err = bytestore.Open(filepath.Join(base, "index"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = content.Close()
		_ = dir.Close()
	})

	return content, dir
}

func mustCreate(t *testing.T, content string, cs, ds bytestore.Store) record.Record {
	t.Helper()

	r, err := core.Create([]byte(content), cs, ds)
	require.NoError(t, err)
	return r
}

func storeLen(t *testing.T, s bytestore.Store) int64 {
	t.Helper()

	n, err := s.Len()
	require.NoError(t, err)
	return n
}

func TestCreateTwoIdenticalContents(t *testing.T) {
	cs, ds := fileStores(t)
	require.NoError(t, core.Reset(cs, ds))

	content := "Hey works"

	mustCreate(t, content, cs, ds)
	mustCreate(t, content, cs, ds)

	records, err := core.Enumerate(ds)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, record.Record{ID: 0, Offset: 0, Length: uint32(len(content))}, records[0])
	assert.Equal(t, record.Record{ID: 1, Offset: uint32(len(content)), Length: uint32(len(content))}, records[1])
	assert.EqualValues(t, 2*len(content), storeLen(t, cs))

	for _, r := range records {
		got, err := core.GetContent(r, cs)
		require.NoError(t, err)
		assert.Equal(t, content, string(got))
	}
}

func TestFullLifecycle(t *testing.T) {
	cs, ds := fileStores(t)

	first := "Hey works"
	mustCreate(t, first, cs, ds)
	mustCreate(t, first, cs, ds)

	records, err := core.Enumerate(ds)
	require.NoError(t, err)

	longer := "update with longer content Works"
	updated, err := core.Update(records[0], cs, ds, []byte(longer))
	require.NoError(t, err)

	assert.EqualValues(t, 2, updated.ID, "overflowing update gets a fresh id")
	assert.EqualValues(t, 2*len(first), updated.Offset)

	got, err := core.GetContent(updated, cs)
	require.NoError(t, err)
	assert.Equal(t, longer, string(got))

	old, err := core.Lookup(0, ds)
	require.NoError(t, err)
	assert.True(t, old.IsFree())
	assert.EqualValues(t, len(first), old.Length, "freed slot keeps its capacity")

	small := mustCreate(t, "small", cs, ds)
	assert.EqualValues(t, 0, small.ID)
	assert.EqualValues(t, 0, small.Offset)

	got, err = core.GetContent(small, cs)
	require.NoError(t, err)
	assert.Equal(t, "small", string(got))

	before := storeLen(t, cs)
	next := mustCreate(t, "small", cs, ds)
	assert.EqualValues(t, 3, next.ID)
	assert.EqualValues(t, before, next.Offset)
	assert.EqualValues(t, before+5, storeLen(t, cs))
}

func TestDenseIDs(t *testing.T) {
	cs, ds := bytestore.NewMemory(), bytestore.NewMemory()

	const n = 25
	for i := 0; i < n; i++ {
		mustCreate(t, "payload", cs, ds)
	}

	records, err := core.Enumerate(ds)
	require.NoError(t, err)
	require.Len(t, records, n)

	for i, r := range records {
		assert.EqualValues(t, i, r.ID)
		assert.EqualValues(t, i*len("payload"), r.Offset)
		assert.False(t, r.IsFree())
	}
	assert.EqualValues(t, n*record.Size, storeLen(t, ds))
}

func TestFirstFitReuse(t *testing.T) {
	cs, ds := bytestore.NewMemory(), bytestore.NewMemory()

	a := mustCreate(t, "0123456789", cs, ds)
	mustCreate(t, "tail", cs, ds)

	_, err := core.Free(a, ds)
	require.NoError(t, err)

	t.Run("content larger than capacity appends", func(t *testing.T) {
		before := storeLen(t, cs)
		r := mustCreate(t, "0123456789A", cs, ds)
		assert.EqualValues(t, 2, r.ID)
		assert.EqualValues(t, before, r.Offset)
	})

	t.Run("content within capacity reuses slot", func(t *testing.T) {
		before := storeLen(t, cs)
		r := mustCreate(t, "abc", cs, ds)
		assert.Equal(t, a.ID, r.ID)
		assert.Equal(t, a.Offset, r.Offset)
		assert.EqualValues(t, 3, r.Length)
		assert.Equal(t, before, storeLen(t, cs), "reuse must not grow the content store")
	})
}

func TestFreeKeepsOffsetAndLength(t *testing.T) {
	cs, ds := bytestore.NewMemory(), bytestore.NewMemory()

	mustCreate(t, "first", cs, ds)
	r := mustCreate(t, "second", cs, ds)
	before := storeLen(t, cs)

	freed, err := core.Free(r, ds)
	require.NoError(t, err)
	assert.Equal(t, r.Free(), freed)

	stored, err := core.Lookup(r.ID, ds)
	require.NoError(t, err)
	assert.Equal(t, freed, stored)
	assert.Equal(t, before, storeLen(t, cs), "freeing never shrinks the content store")
}

func TestUpdateInPlace(t *testing.T) {
	cs, ds := bytestore.NewMemory(), bytestore.NewMemory()

	mustCreate(t, "neighbour", cs, ds)
	r := mustCreate(t, "original!", cs, ds)

	t.Run("shorter content", func(t *testing.T) {
		updated, err := core.Update(r, cs, ds, []byte("tiny"))
		require.NoError(t, err)
		assert.Equal(t, r.ID, updated.ID)
		assert.Equal(t, r.Offset, updated.Offset)
		assert.EqualValues(t, 4, updated.Length)

		got, err := core.GetContent(updated, cs)
		require.NoError(t, err)
		assert.Equal(t, "tiny", string(got), "stale trailing bytes must not be visible")

		stored, err := core.Lookup(r.ID, ds)
		require.NoError(t, err)
		assert.Equal(t, updated, stored)
		r = updated
	})

	t.Run("equal length content", func(t *testing.T) {
		updated, err := core.Update(r, cs, ds, []byte("same"))
		require.NoError(t, err)
		assert.Equal(t, r, updated)
	})
}

func TestUpdateOverflowFreesOriginal(t *testing.T) {
	cs, ds := bytestore.NewMemory(), bytestore.NewMemory()

	r := mustCreate(t, "short", cs, ds)
	mustCreate(t, "other", cs, ds)

	updated, err := core.Update(r, cs, ds, []byte("definitely longer"))
	require.NoError(t, err)
	assert.NotEqual(t, r.ID, updated.ID)

	old, err := core.Lookup(r.ID, ds)
	require.NoError(t, err)
	assert.True(t, old.IsFree())

	reuse := mustCreate(t, "fits", cs, ds)
	assert.Equal(t, r.ID, reuse.ID)
	assert.Equal(t, r.Offset, reuse.Offset)
}

func TestUpdateFreedRecordRevivesIt(t *testing.T) {
	cs, ds := bytestore.NewMemory(), bytestore.NewMemory()

	r := mustCreate(t, "content", cs, ds)
	freed, err := core.Free(r, ds)
	require.NoError(t, err)

	updated, err := core.Update(freed, cs, ds, []byte("again"))
	require.NoError(t, err)
	assert.False(t, updated.IsFree())
	assert.Equal(t, r.ID, updated.ID)
}

func TestReset(t *testing.T) {
	cs, ds := fileStores(t)

	mustCreate(t, "one", cs, ds)
	mustCreate(t, "two", cs, ds)

	require.NoError(t, core.Reset(cs, ds))

	assert.Zero(t, storeLen(t, cs))
	assert.Zero(t, storeLen(t, ds))

	records, err := core.Enumerate(ds)
	require.NoError(t, err)
	assert.Empty(t, records)

	r := mustCreate(t, "fresh", cs, ds)
	assert.Equal(t, record.Record{ID: 0, Offset: 0, Length: 5}, r)
}

func TestZeroLengthContent(t *testing.T) {
	cs, ds := bytestore.NewMemory(), bytestore.NewMemory()

	r := mustCreate(t, "", cs, ds)
	assert.Equal(t, record.Record{ID: 0, Offset: 0, Length: 0}, r)

	got, err := core.GetContent(r, cs)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEnumerateDetectsCorruption(t *testing.T) {
	cs, ds := bytestore.NewMemory(), bytestore.NewMemory()

	mustCreate(t, "hello", cs, ds)
	require.NoError(t, ds.WriteAt(record.Size, []byte{0x01, 0x02, 0x03}))

	_, err := core.Enumerate(ds)
	require.ErrorIs(t, err, record.ErrCorrupt)

	_, err = core.Create([]byte("more"), cs, ds)
	require.ErrorIs(t, err, record.ErrCorrupt, "allocation must stop on a corrupt directory")
}

func TestGetContentPastEnd(t *testing.T) {
	cs, ds := fileStores(t)

	r := mustCreate(t, "0123456789", cs, ds)
	require.NoError(t, cs.Truncate())

	_, err := core.GetContent(r, cs)
	require.ErrorIs(t, err, bytestore.ErrOutOfBounds)
}

func TestLookup(t *testing.T) {
	cs, ds := bytestore.NewMemory(), bytestore.NewMemory()

	mustCreate(t, "a", cs, ds)
	b := mustCreate(t, "b", cs, ds)

	got, err := core.Lookup(1, ds)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	_, err = core.Lookup(2, ds)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestCreateWriteFailureLeavesDirectoryUntouched(t *testing.T) {
	cs, ds := bytestore.NewMemory(), bytestore.NewMemory()
	boom := errors.New("no space left")
	cs.FailWrites = boom

	_, err := core.Create([]byte("data"), cs, ds)
	require.ErrorIs(t, err, boom)

	var ioErr *bytestore.IOError
	require.ErrorAs(t, err, &ioErr)

	assert.Zero(t, storeLen(t, ds))
}

// nearOffsetLimit grows the content file, sparsely, to within 2 bytes of the
// largest offset a record can hold.
func nearOffsetLimit(t *testing.T, cs bytestore.Store) {
	t.Helper()
	require.NoError(t, cs.WriteAt(math.MaxUint32-3, []byte{1}))
}

func TestCreateOffsetOverflow(t *testing.T) {
	cs, ds := fileStores(t)

	mustCreate(t, "abc", cs, ds)
	nearOffsetLimit(t, cs)

	_, err := core.Create([]byte("0123456789"), cs, ds)
	require.ErrorIs(t, err, core.ErrOffsetOverflow)

	assert.EqualValues(t, record.Size, storeLen(t, ds))
	assert.EqualValues(t, math.MaxUint32-2, storeLen(t, cs))
}

func TestUpdateOverflowFailureKeepsSlotLive(t *testing.T) {
	cs, ds := fileStores(t)

	r := mustCreate(t, "abc", cs, ds)
	nearOffsetLimit(t, cs)

	_, err := core.Update(r, cs, ds, []byte("0123456789"))
	require.ErrorIs(t, err, core.ErrOffsetOverflow)

	got, err := core.Lookup(r.ID, ds)
	require.NoError(t, err)
	assert.Equal(t, r, got)

	content, err := core.GetContent(got, cs)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(content))
}

func TestUpdateWriteFailureKeepsSlotLive(t *testing.T) {
	cs, ds := bytestore.NewMemory(), bytestore.NewMemory()

	r := mustCreate(t, "abc", cs, ds)
	boom := errors.New("no space left")
	cs.FailWrites = boom

	_, err := core.Update(r, cs, ds, []byte("much longer content"))
	require.ErrorIs(t, err, boom)

	got, err := core.Lookup(r.ID, ds)
	require.NoError(t, err)
	assert.False(t, got.IsFree())
	assert.EqualValues(t, record.Size, storeLen(t, ds))
}
