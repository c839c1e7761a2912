// Package lock guards a data directory so that only one process at a time
// owns its store pair.
package lock

import "errors"

// LockFileName is the name of the lock file created inside the data directory.
const LockFileName = "LOCK"

// ErrLocked indicates that another process already holds the directory lock.
var ErrLocked = errors.New("lock: directory already in use by another slotstore instance")
