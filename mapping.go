package mmf

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/RivenSkaye/winmmf-go/internal/winapi"
)

// controlWordSize is the number of bytes the Control Word occupies at the
// head of every mapping, ahead of the caller's payload.
const controlWordSize = 4

// Mapping is a named, pagefile-backed shared-memory region guarded by a
// Control Word stored in its first four bytes. Zero value is not usable;
// construct one with Create, Open, OpenRead, or OpenWrite.
type Mapping struct {
	provider winapi.Provider
	handle   winapi.Handle
	view     winapi.View
	control  ControlWord
	payload  unsafe.Pointer

	size     int
	name     string
	readonly bool
	closed   bool
	released bool
}

// Create creates a new named mapping of size bytes of payload (plus the
// Control Word's own 4 bytes), zeroes it, and publishes the Control Word.
// If a mapping by that name already exists, the OS hands back a view onto
// it instead of failing; Create still zeroes the whole region and
// re-initializes the Control Word, discarding the payload and any lock
// state that other handles on that mapping hold.
func Create(size int, name string, ns Namespace) (*Mapping, error) {
	return create(winapi.Default(), size, name, ns)
}

func create(p winapi.Provider, size int, name string, ns Namespace) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrGeneralFailure.WithDetail("size must be greater than zero")
	}
	full := ns.qualify(name)
	total := uint64(size) + controlWordSize

	h, err := p.CreateFileMapping(full, total)
	if err != nil {
		return nil, translateOSError(err)
	}
	view, err := p.MapViewOfFile(h, total)
	if err != nil {
		_ = p.CloseHandle(h)
		return nil, translateOSError(err)
	}

	clear(unsafe.Slice((*byte)(unsafe.Pointer(view.Addr)), int(total)))
	control := FromRaw(unsafe.Pointer(view.Addr))
	control.Publish()

	m := &Mapping{
		provider: p,
		handle:   h,
		view:     view,
		control:  control,
		payload:  unsafe.Pointer(view.Addr + controlWordSize),
		size:     size,
		name:     full,
	}
	runtime.SetFinalizer(m, (*Mapping).release)
	return m, nil
}

// Open opens an existing named mapping of size bytes of payload. readonly
// gates Write and IsWritable but has no effect on the underlying OS
// mapping, which this package always maps read/write so readers can still
// take part in the Control Word protocol.
func Open(size int, name string, ns Namespace, readonly bool) (*Mapping, error) {
	return open(winapi.Default(), size, name, ns, readonly)
}

// OpenRead opens an existing mapping for reading only.
func OpenRead(size int, name string, ns Namespace) (*Mapping, error) {
	return Open(size, name, ns, true)
}

// OpenWrite opens an existing mapping for reading and writing.
func OpenWrite(size int, name string, ns Namespace) (*Mapping, error) {
	return Open(size, name, ns, false)
}

func open(p winapi.Provider, size int, name string, ns Namespace, readonly bool) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrGeneralFailure.WithDetail("size must be greater than zero")
	}
	full := ns.qualify(name)
	total := uint64(size) + controlWordSize

	h, err := p.OpenFileMapping(full)
	if err != nil {
		return nil, translateOSError(err)
	}
	view, err := p.MapViewOfFile(h, total)
	if err != nil {
		_ = p.CloseHandle(h)
		return nil, translateOSError(err)
	}

	m := &Mapping{
		provider: p,
		handle:   h,
		view:     view,
		control:  FromExisting(unsafe.Pointer(view.Addr)),
		payload:  unsafe.Pointer(view.Addr + controlWordSize),
		size:     size,
		name:     full,
		readonly: readonly,
	}
	runtime.SetFinalizer(m, (*Mapping).release)
	return m, nil
}

// Namespace reports the namespace prefix of m's fully-qualified name, or
// "" if it was opened with a custom, unqualified name.
func (m *Mapping) Namespace() string {
	ns, _ := splitName(m.name)
	return ns
}

// Filename reports the part of m's fully-qualified name after the
// namespace prefix.
func (m *Mapping) Filename() string {
	_, file := splitName(m.name)
	return file
}

// FullName reports m's complete, namespace-qualified name, as passed to
// CreateFileMapping/OpenFileMapping.
func (m *Mapping) FullName() string { return m.name }

// Size reports the payload size in bytes, excluding the Control Word.
func (m *Mapping) Size() int { return m.size }

// IsWritable reports whether m was opened for writing, is not closed, and
// has a published Control Word. It never touches the lock itself.
func (m *Mapping) IsWritable() bool {
	return !m.readonly && !m.closed && m.control.Initialized()
}

// IsReadable reports whether m is not closed and has a published Control
// Word. It never touches the lock itself.
func (m *Mapping) IsReadable() bool {
	return !m.closed && m.control.Initialized()
}

func (m *Mapping) payloadSlice() []byte {
	return unsafe.Slice((*byte)(m.payload), m.size)
}

// SpinFunc acquires a lock on a Control Word with the caller's own retry
// policy (backoff, yielding, cancellation checks). The Spin variants of
// Read and Write accept one; nil selects the default busy-retry helpers,
// which spin for maxTries attempts without sleeping.
type SpinFunc func(lock ControlWord, maxTries uint32) error

// clampCount maps a requested byte count onto the payload: 0 means the
// whole payload, anything larger than the payload is truncated to it.
func (m *Mapping) clampCount(count int) int {
	if count <= 0 || count > m.size {
		return m.size
	}
	return count
}

// Read copies min(count, payload size) bytes into a freshly allocated
// slice, holding a shared lock for the duration of the copy. A count of 0
// reads the entire payload.
func (m *Mapping) Read(count int) ([]byte, error) {
	return m.read(count, 0, false, nil)
}

// ReadSpin is Read, retrying acquisition up to maxTries times instead of
// failing immediately when the writer holds the lock. A zero maxTries uses
// the package default; a nil spin uses the default busy-retry helper.
func (m *Mapping) ReadSpin(count int, maxTries uint32, spin SpinFunc) ([]byte, error) {
	return m.read(count, maxTries, true, spin)
}

func (m *Mapping) read(count int, maxTries uint32, doSpin bool, spin SpinFunc) ([]byte, error) {
	var buf []byte
	if err := m.readToBuf(&buf, count, maxTries, doSpin, spin); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadToBuf copies min(count, payload size) bytes into *buf, growing it
// exactly to the needed length first, holding a shared lock for the
// duration of the copy. A count of 0 reads the entire payload.
func (m *Mapping) ReadToBuf(buf *[]byte, count int) error {
	return m.readToBuf(buf, count, 0, false, nil)
}

// ReadToBufSpin is ReadToBuf, retrying acquisition up to maxTries times.
// A nil spin uses the default busy-retry helper.
func (m *Mapping) ReadToBufSpin(buf *[]byte, count int, maxTries uint32, spin SpinFunc) error {
	return m.readToBuf(buf, count, maxTries, true, spin)
}

func (m *Mapping) readToBuf(buf *[]byte, count int, maxTries uint32, doSpin bool, spin SpinFunc) error {
	if m.closed {
		return ErrMMFNotFound
	}
	if m.view.Addr == 0 {
		return ErrMMFNotFound
	}
	if !m.control.Initialized() {
		return ErrUninitialized
	}
	n := m.clampCount(count)
	if err := m.lockRead(maxTries, doSpin, spin); err != nil {
		return err
	}
	defer m.control.UnlockRead()
	if cap(*buf) >= n {
		*buf = (*buf)[:n]
	} else {
		*buf = make([]byte, n)
	}
	copy(*buf, m.payloadSlice()[:n])
	return nil
}

// ReadToRaw copies min(count, payload size) bytes directly into the memory
// at dst, holding a shared lock for the duration of the copy. dst must
// point to at least count writable bytes; this is the unsafe escape hatch
// for callers that already manage their own buffers (e.g. across cgo/FFI).
// Unlike Read and ReadToBuf, a count of 0 is an error here: with no
// destination length to consult, "read everything" has no safe meaning.
func (m *Mapping) ReadToRaw(dst unsafe.Pointer, count int) error {
	return m.readToRaw(dst, count, 0, false, nil)
}

// ReadToRawSpin is ReadToRaw, retrying acquisition up to maxTries times.
// A nil spin uses the default busy-retry helper.
func (m *Mapping) ReadToRawSpin(dst unsafe.Pointer, count int, maxTries uint32, spin SpinFunc) error {
	return m.readToRaw(dst, count, maxTries, true, spin)
}

func (m *Mapping) readToRaw(dst unsafe.Pointer, count int, maxTries uint32, doSpin bool, spin SpinFunc) error {
	if m.closed {
		return ErrMMFNotFound
	}
	if count <= 0 {
		return ErrGeneralFailure.WithDetail("ReadToRaw needs an explicit, non-zero byte count")
	}
	if dst == nil {
		return ErrGeneralFailure.WithDetail("ReadToRaw called with a nil destination")
	}
	if m.view.Addr == 0 {
		return ErrMMFNotFound
	}
	if !m.control.Initialized() {
		return ErrUninitialized
	}
	n := m.clampCount(count)
	if err := m.lockRead(maxTries, doSpin, spin); err != nil {
		return err
	}
	defer m.control.UnlockRead()
	copy(unsafe.Slice((*byte)(dst), n), m.payloadSlice()[:n])
	return nil
}

// Write copies data into the payload, holding the exclusive lock for the
// duration of the copy. It fails with NotEnoughMemory if data is larger
// than the mapping's payload size.
func (m *Mapping) Write(data []byte) error {
	return m.write(data, 0, false, nil)
}

// WriteSpin is Write, retrying acquisition up to maxTries times instead of
// failing immediately when the lock is held. A nil spin uses the default
// busy-retry helper.
func (m *Mapping) WriteSpin(data []byte, maxTries uint32, spin SpinFunc) error {
	return m.write(data, maxTries, true, spin)
}

func (m *Mapping) write(data []byte, maxTries uint32, doSpin bool, spin SpinFunc) error {
	if m.closed || m.readonly {
		return ErrMMFNotFound
	}
	if len(data) > m.size {
		return ErrNotEnoughMemory
	}
	if !m.control.Initialized() {
		return ErrUninitialized
	}
	if m.view.Addr == 0 {
		return ErrMMFNotFound
	}
	if err := m.lockWrite(maxTries, doSpin, spin); err != nil {
		return err
	}
	defer m.control.UnlockWrite()
	copy(m.payloadSlice(), data)
	return nil
}

func (m *Mapping) lockRead(maxTries uint32, doSpin bool, spin SpinFunc) error {
	if !doSpin {
		return m.control.LockRead()
	}
	if maxTries == 0 {
		maxTries = defaultMaxTries()
	}
	if spin != nil {
		return spin(m.control, maxTries)
	}
	return m.control.SpinAndLockRead(maxTries)
}

func (m *Mapping) lockWrite(maxTries uint32, doSpin bool, spin SpinFunc) error {
	if !doSpin {
		return m.control.LockWrite()
	}
	if maxTries == 0 {
		maxTries = defaultMaxTries()
	}
	if spin != nil {
		return spin(m.control, maxTries)
	}
	return m.control.SpinAndLockWrite(maxTries)
}

// Close releases m's OS handle and unmaps its view. It is safe to call
// more than once; only the first call does any work. Subsequent Read,
// Write, or spin variants fail with MMF_NotFound.
func (m *Mapping) Close() error {
	m.closed = true
	runtime.SetFinalizer(m, nil)
	return m.release()
}

// release does the actual teardown, guarded so both an explicit Close and
// a missed-Close finalizer backstop can call it safely.
func (m *Mapping) release() error {
	if m.released {
		return nil
	}
	m.released = true
	m.closed = true

	var first error
	if m.view.Addr != 0 {
		if err := m.provider.UnmapViewOfFile(m.view); err != nil {
			logger().Log(LogWarning, fmt.Sprintf("winmmf: error unmapping view of %q: %v", m.name, err))
			first = translateOSError(err)
		}
		m.view = winapi.View{}
		m.payload = nil
	}
	if err := m.provider.CloseHandle(m.handle); err != nil {
		logger().Log(LogWarning, fmt.Sprintf("winmmf: error closing handle for %q: %v", m.name, err))
		if first == nil {
			first = translateOSError(err)
		}
	}
	return first
}
