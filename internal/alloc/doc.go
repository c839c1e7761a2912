// Package alloc decides where new content goes.
//
// # Overview
//
// The directory file is a dense array of fixed-size records indexed by slot
// id. There is no persisted free-list: the allocator rebuilds its view of
// free space from a full scan of the directory on every call.
//
// # Policy
//
// FindPlacement walks records in directory order and returns the first
// reclaimable slot whose recorded Length is at least the requested size
// (first-fit, not best-fit). The reused slot keeps its id and offset. When no
// slot qualifies, content is appended past the end of the content store and
// receives a fresh id one greater than the largest id seen.
//
// # Scaling
//
// Each allocation is O(n) in the number of directory records. This is fine
// for small collections and is not meant for large ones; a persisted
// free-list or tree would be needed for those.
//
// # Thread Safety
//
// FindPlacement is a pure function. Callers must hold a lock across the scan
// and the writes that act on its result, otherwise two callers can be handed
// the same placement.
package alloc
