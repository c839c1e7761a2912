package core

import "github.com/pkg/errors"

var (
	// ErrContentTooLarge indicates content whose length does not fit the 32-bit length field.
	ErrContentTooLarge = errors.New("slotstore: content length exceeds 32-bit limit")

	// ErrOffsetOverflow indicates that appending would push the content store past the 32-bit offset space.
	ErrOffsetOverflow = errors.New("slotstore: content store exceeds 32-bit offset space")

	// ErrNotFound indicates a slot id beyond the end of the directory.
	ErrNotFound = errors.New("slotstore: no such slot")

	// ErrSlotFree indicates an operation on a slot that has been freed.
	ErrSlotFree = errors.New("slotstore: slot is free")

	// ErrClosed indicates an operation on a store that is not started.
	ErrClosed = errors.New("slotstore: store is not open")
)
