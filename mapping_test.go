package mmf

import (
	"testing"
	"unsafe"

	"github.com/RivenSkaye/winmmf-go/internal/fakewinapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMapping(t *testing.T, name string, size int) *Mapping {
	t.Helper()
	fakewinapi.Reset()
	m, err := create(fakewinapi.New(), size, name, ENamespace.Local())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func rawPtr(b []byte) unsafe.Pointer {
	return unsafe.Pointer(&b[0])
}

func TestCreateZeroesAndPublishes(t *testing.T) {
	a := assert.New(t)
	m := newTestMapping(t, "create-zeroes", 32)

	a.True(m.control.Initialized())
	buf, err := m.Read(0)
	a.NoError(err)
	a.Equal(make([]byte, 32), buf)
}

func TestReadZeroMeansAll(t *testing.T) {
	a := assert.New(t)
	m := newTestMapping(t, "read-all", 16)
	payload := []byte("0123456789abcdef")
	a.NoError(m.Write(payload))

	buf, err := m.Read(0)
	a.NoError(err)
	a.Equal(payload, buf)
}

func TestReadCountClampedToSize(t *testing.T) {
	a := assert.New(t)
	m := newTestMapping(t, "read-clamp", 8)
	a.NoError(m.Write([]byte("abcdefgh")))

	buf, err := m.Read(3)
	a.NoError(err)
	a.Equal([]byte("abc"), buf)

	buf, err = m.Read(100)
	a.NoError(err)
	a.Equal([]byte("abcdefgh"), buf)
}

func TestReadToBufGrowsToExactLength(t *testing.T) {
	a := assert.New(t)
	m := newTestMapping(t, "read-grow", 16)
	payload := []byte("0123456789abcdef")
	a.NoError(m.Write(payload))

	var buf []byte
	a.NoError(m.ReadToBuf(&buf, 0))
	a.Len(buf, 16)
	a.Equal(payload, buf)

	// A buffer that's already big enough is reused, not reallocated.
	big := make([]byte, 64)
	reuse := big[:0]
	a.NoError(m.ReadToBuf(&reuse, 4))
	a.Equal([]byte("0123"), reuse)
	a.Same(&big[0], &reuse[0])
}

func TestWriteLargerThanSizeFails(t *testing.T) {
	a := assert.New(t)
	m := newTestMapping(t, "write-too-big", 4)

	before, _ := m.Read(0)
	a.ErrorIs(m.Write([]byte("12345")), ErrNotEnoughMemory)

	after, _ := m.Read(0)
	a.Equal(before, after)
}

func TestWriteOnReadonlyFails(t *testing.T) {
	fakewinapi.Reset()
	p := fakewinapi.New()
	require := require.New(t)

	creator, err := create(p, 16, "readonly-open", ENamespace.Local())
	require.NoError(err)
	defer creator.Close()

	ro, err := open(p, 16, "readonly-open", ENamespace.Local(), true)
	require.NoError(err)
	defer ro.Close()

	require.ErrorIs(ro.Write([]byte("x")), ErrMMFNotFound)
}

func TestCloseIsIdempotentAndPoisonsOps(t *testing.T) {
	a := assert.New(t)
	m := newTestMapping(t, "close-idem", 8)

	a.NoError(m.Close())
	a.NoError(m.Close()) // idempotent, no double-free/double-close panic

	_, err := m.Read(0)
	a.ErrorIs(err, ErrMMFNotFound)
	a.ErrorIs(m.Write([]byte("x")), ErrMMFNotFound)
}

func TestNameAccessors(t *testing.T) {
	a := assert.New(t)
	m := newTestMapping(t, "accessor-name", 8)

	a.Equal("Local", m.Namespace())
	a.Equal("accessor-name", m.Filename())
	a.Equal(`Local\accessor-name`, m.FullName())
	a.Equal(8, m.Size())
}

func TestCustomNamespaceLeavesNameUnqualified(t *testing.T) {
	fakewinapi.Reset()
	a := assert.New(t)
	m, err := create(fakewinapi.New(), 8, "already/qualified", ENamespace.Custom())
	require.NoError(t, err)
	defer m.Close()

	a.Equal("already/qualified", m.FullName())
	a.Equal("", m.Namespace())
	a.Equal("already/qualified", m.Filename())
}

func TestIsWritableIsReadablePredicates(t *testing.T) {
	a := assert.New(t)
	fakewinapi.Reset()
	p := fakewinapi.New()

	creator, err := create(p, 8, "predicates", ENamespace.Local())
	require.NoError(t, err)
	defer creator.Close()
	a.True(creator.IsWritable())
	a.True(creator.IsReadable())

	ro, err := open(p, 8, "predicates", ENamespace.Local(), true)
	require.NoError(t, err)
	defer ro.Close()
	a.False(ro.IsWritable())
	a.True(ro.IsReadable())

	require.NoError(t, ro.Close())
	a.False(ro.IsWritable())
	a.False(ro.IsReadable())
}

func TestReadToRawCopiesRequestedBytes(t *testing.T) {
	a := assert.New(t)
	m := newTestMapping(t, "raw-read", 8)
	a.NoError(m.Write([]byte("abcdefgh")))

	dst := make([]byte, 8)
	a.NoError(m.ReadToRaw(rawPtr(dst), 8))
	a.Equal([]byte("abcdefgh"), dst)
}

func TestReadToRawRejectsZeroCount(t *testing.T) {
	m := newTestMapping(t, "raw-zero", 8)
	dst := make([]byte, 8)
	require.ErrorIs(t, m.ReadToRaw(rawPtr(dst), 0), ErrGeneralFailure)
}

func TestReadToRawRejectsNilDestination(t *testing.T) {
	m := newTestMapping(t, "raw-nil", 8)
	require.ErrorIs(t, m.ReadToRaw(nil, 8), ErrGeneralFailure)
}

func TestSpinVariantsUseCallerSpinFunc(t *testing.T) {
	a := assert.New(t)
	m := newTestMapping(t, "spin-func", 8)
	a.NoError(m.Write([]byte("abcdefgh")))

	calls := 0
	custom := func(lock ControlWord, maxTries uint32) error {
		calls++
		a.Equal(uint32(7), maxTries)
		return lock.SpinAndLockRead(maxTries)
	}
	buf, err := m.ReadSpin(0, 7, custom)
	a.NoError(err)
	a.Equal([]byte("abcdefgh"), buf)
	a.Equal(1, calls)
}

func TestWriteSpinAcquiresAfterReaderReleases(t *testing.T) {
	require := require.New(t)
	m := newTestMapping(t, "write-spin", 8)

	require.NoError(m.control.LockRead())
	done := make(chan error, 1)
	go func() { done <- m.WriteSpin([]byte("abc"), 0, nil) }()

	require.NoError(m.control.UnlockRead())
	require.NoError(<-done)
}

func TestCreateRejectsNonPositiveSize(t *testing.T) {
	fakewinapi.Reset()
	_, err := create(fakewinapi.New(), 0, "zero-size", ENamespace.Local())
	require.ErrorIs(t, err, ErrGeneralFailure)
}

func TestOpenRejectsNonPositiveSize(t *testing.T) {
	fakewinapi.Reset()
	_, err := open(fakewinapi.New(), 0, "zero-size-open", ENamespace.Local(), false)
	require.ErrorIs(t, err, ErrGeneralFailure)
}
