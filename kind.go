package mmf

import (
	"reflect"

	"github.com/JeffreyRichter/enum/enum"
)

// Kind identifies a member of this package's closed error taxonomy.
type Kind uint8

// EKind exposes the Kind taxonomy's named variants for discovery, e.g.
// EKind.WriteLocked().
var EKind = Kind(0)

// ReadLocked: a write was attempted while at least one reader held the lock.
func (Kind) ReadLocked() Kind { return Kind(0) }

// WriteLocked: a read or write was attempted while the writer held the lock.
func (Kind) WriteLocked() Kind { return Kind(1) }

// Uninitialized: an operation was attempted before the mapping was published.
func (Kind) Uninitialized() Kind { return Kind(2) }

// MaxReaders: the 24-bit reader count is saturated.
func (Kind) MaxReaders() Kind { return Kind(3) }

// NotEnoughMemory: a write is larger than the mapping's payload size.
func (Kind) NotEnoughMemory() Kind { return Kind(4) }

// MMFNotFound: the Mapping has been closed, its view is absent, or a write
// was attempted through a read-only handle. Opening a name that was never
// created reports the OS error (OSError) instead.
func (Kind) MMFNotFound() Kind { return Kind(5) }

// LockViolation: the OS reported ERROR_LOCK_VIOLATION from a mapping call.
func (Kind) LockViolation() Kind { return Kind(6) }

// MaxTriesReached: a spin loop exhausted its try budget without acquiring
// the lock.
func (Kind) MaxTriesReached() Kind { return Kind(7) }

// GeneralFailure: an invariant this package relies on was violated.
func (Kind) GeneralFailure() Kind { return Kind(253) }

// OSError: an OS call failed for a reason not covered by a dedicated Kind.
func (Kind) OSError() Kind { return Kind(254) }

// OSOK: the OS reported success through its error-return channel. This
// package always folds that case into a nil error at the winapi boundary,
// so no Error value with this Kind is ever constructed; it exists only so
// the taxonomy stays a faithful, complete mirror of the protocol it mirrors.
func (Kind) OSOK() Kind { return Kind(255) }

func (k Kind) String() string {
	return enum.StringInt(k, reflect.TypeOf(k))
}

// ParseKind parses one of the names above, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k, err := enum.ParseInt(reflect.TypeOf((*Kind)(nil)), s, true, true)
	if err != nil {
		return 0, err
	}
	return k.(Kind), nil
}
