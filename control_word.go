package mmf

import (
	"errors"
	"sync/atomic"
	"unsafe"
)

const (
	writeBit uint32 = 1 << 31
	initMask uint32 = 0x7F << 24
	readMask uint32 = 0x00FFFFFF
)

// ControlWord is the 32-bit cross-process readers-writer lock stored as the
// first four bytes of every mapping. Bit 31 is the exclusive writer flag,
// bits 30-24 are a 7-bit initialization sentinel (all-ones means
// uninitialized), and bits 23-0 are the shared reader count.
//
// Every transition is a single atomic compare-and-swap. Go's sync/atomic
// gives Load/CompareAndSwap sequentially-consistent semantics, so no
// explicit memory fence is needed after a successful CAS: payload writes
// made under the lock are visible to whoever acquires it next.
type ControlWord struct {
	chunk *atomic.Uint32
}

// FromExisting adopts an already-published control word at ptr without
// touching its contents. ptr must point to at least 4 bytes of memory
// suitably aligned for a 32-bit atomic; passing nil is a programmer error.
func FromExisting(ptr unsafe.Pointer) ControlWord {
	if ptr == nil {
		panic("mmf: FromExisting called with a nil pointer")
	}
	return ControlWord{chunk: (*atomic.Uint32)(ptr)}
}

// FromRaw claims ptr for a brand-new control word, marking it
// uninitialized. Callers must have already zeroed the surrounding region;
// FromRaw only writes the 4 bytes of the control word itself.
func FromRaw(ptr unsafe.Pointer) ControlWord {
	if ptr == nil {
		panic("mmf: FromRaw called with a nil pointer")
	}
	c := ControlWord{chunk: (*atomic.Uint32)(ptr)}
	c.chunk.Store(initMask)
	return c
}

func initializedChunk(chunk uint32) bool { return chunk&initMask != initMask }
func readLockedChunk(chunk uint32) bool  { return chunk&readMask != 0 }
func writeLockedChunk(chunk uint32) bool { return chunk&writeBit != 0 }

// Publish marks the control word initialized. It is idempotent: calling it
// again after the word is already published is a no-op that never touches
// the writer flag or reader count, so a late joiner can never clobber a
// peer's live lock by re-publishing.
func (c ControlWord) Publish() {
	_ = casRetry(c.chunk.Load, c.chunk.CompareAndSwap, func(old uint32) (uint32, error) {
		if old&initMask == 0 {
			return old, nil
		}
		return old &^ initMask, nil
	})
}

// Initialized reports whether Publish has been called.
func (c ControlWord) Initialized() bool {
	return initializedChunk(c.chunk.Load())
}

// ReadLocked reports whether at least one shared lock is currently held.
func (c ControlWord) ReadLocked() bool {
	return readLockedChunk(c.chunk.Load())
}

// WriteLocked reports whether the exclusive lock is currently held.
func (c ControlWord) WriteLocked() bool {
	return writeLockedChunk(c.chunk.Load())
}

// LockRead acquires a shared lock, incrementing the reader count.
func (c ControlWord) LockRead() error {
	return casRetry(c.chunk.Load, c.chunk.CompareAndSwap, func(old uint32) (uint32, error) {
		if !initializedChunk(old) {
			return old, ErrUninitialized
		}
		if writeLockedChunk(old) {
			return old, ErrWriteLocked
		}
		if old&readMask == readMask {
			return old, ErrMaxReaders
		}
		return old + 1, nil
	})
}

// UnlockRead releases one previously acquired shared lock.
func (c ControlWord) UnlockRead() error {
	return casRetry(c.chunk.Load, c.chunk.CompareAndSwap, func(old uint32) (uint32, error) {
		if !initializedChunk(old) {
			return old, ErrUninitialized
		}
		if writeLockedChunk(old) {
			return old, ErrWriteLocked
		}
		if old&readMask == 0 {
			return old, ErrGeneralFailure.WithDetail("unlock_read called with no readers held")
		}
		return old - 1, nil
	})
}

// LockWrite acquires the exclusive lock. It fails if either a reader or
// the writer already holds the lock.
func (c ControlWord) LockWrite() error {
	return casRetry(c.chunk.Load, c.chunk.CompareAndSwap, func(old uint32) (uint32, error) {
		if !initializedChunk(old) {
			return old, ErrUninitialized
		}
		if writeLockedChunk(old) {
			return old, ErrWriteLocked
		}
		if readLockedChunk(old) {
			return old, ErrReadLocked
		}
		return old | writeBit, nil
	})
}

// UnlockWrite releases the exclusive lock.
func (c ControlWord) UnlockWrite() error {
	return casRetry(c.chunk.Load, c.chunk.CompareAndSwap, func(old uint32) (uint32, error) {
		if !initializedChunk(old) {
			return old, ErrUninitialized
		}
		if !writeLockedChunk(old) {
			return old, ErrWriteLocked
		}
		if readLockedChunk(old) {
			return old, ErrReadLocked
		}
		return old &^ writeBit, nil
	})
}

// SpinAndLockRead retries LockRead, tolerating a writer holding the lock,
// until it succeeds or maxTries attempts have failed, without a sleep or
// backoff between attempts.
func (c ControlWord) SpinAndLockRead(maxTries uint32) error {
	for tries := uint32(0); ; tries++ {
		err := c.LockRead()
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrWriteLocked) {
			return err
		}
		if tries+1 >= maxTries {
			return ErrMaxTriesReached
		}
	}
}

// SpinAndLockWrite retries LockWrite, tolerating either a reader or the
// writer holding the lock, until it succeeds or maxTries attempts have
// failed.
func (c ControlWord) SpinAndLockWrite(maxTries uint32) error {
	for tries := uint32(0); ; tries++ {
		err := c.LockWrite()
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrWriteLocked) && !errors.Is(err, ErrReadLocked) {
			return err
		}
		if tries+1 >= maxTries {
			return ErrMaxTriesReached
		}
	}
}
