// Package winapi is the thin seam between the mmf package and the five
// Win32 calls a named, pagefile-backed mapping needs. Production code talks
// to Default(); tests substitute a Provider backed by plain Go memory so the
// coordination protocol can be exercised on any host OS.
package winapi

// Handle is an opaque OS mapping handle, analogous to a Win32 HANDLE.
type Handle uintptr

// View describes a region mapped into this process's address space.
type View struct {
	Addr uintptr
	Len  int
}

// Provider is everything a Mapping needs from the OS: creating or opening a
// named mapping object, mapping it into memory, and tearing both down.
// golang.org/x/sys/windows backs the production implementation; fakewinapi
// backs the one used by this package's own tests.
type Provider interface {
	// CreateFileMapping creates a new named, pagefile-backed mapping of the
	// given size. If one by that name already exists, it returns a handle to
	// that existing mapping instead of failing.
	CreateFileMapping(name string, size uint64) (Handle, error)
	// OpenFileMapping opens an existing named mapping for read/write access.
	OpenFileMapping(name string) (Handle, error)
	// MapViewOfFile maps the whole of h into this process's address space.
	MapViewOfFile(h Handle, size uint64) (View, error)
	// UnmapViewOfFile releases a view obtained from MapViewOfFile.
	UnmapViewOfFile(v View) error
	// CloseHandle releases a handle obtained from CreateFileMapping or
	// OpenFileMapping.
	CloseHandle(h Handle) error
}
