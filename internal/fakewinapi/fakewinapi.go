// Package fakewinapi is an in-process stand-in for the Win32 named mapping
// table, used so the coordination protocol and Mapping Object can be
// exercised in tests on any host OS. Named regions live in a package-level
// table, the way the real OS mapping table is global to the machine rather
// than to a single handle.
package fakewinapi

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/RivenSkaye/winmmf-go/internal/winapi"
)

var errNotFound = errors.New("fakewinapi: no mapping by that name")

type region struct {
	buf  []byte
	refs int
}

type handleEntry struct {
	name   string
	region *region
}

var (
	mu      sync.Mutex
	regions = make(map[string]*region)
	handles = make(map[winapi.Handle]*handleEntry)
	nextH   winapi.Handle = 1
)

// Provider is a winapi.Provider backed by plain Go memory.
type Provider struct{}

// New returns a fresh Provider. Every Provider shares the same underlying
// table, mirroring the OS-global nature of named mappings: two Providers
// opening the same name see the same bytes.
func New() *Provider { return &Provider{} }

func (*Provider) CreateFileMapping(name string, size uint64) (winapi.Handle, error) {
	mu.Lock()
	defer mu.Unlock()
	r, ok := regions[name]
	if !ok {
		r = &region{buf: make([]byte, size)}
		regions[name] = r
	}
	r.refs++
	h := nextH
	nextH++
	handles[h] = &handleEntry{name: name, region: r}
	return h, nil
}

func (*Provider) OpenFileMapping(name string) (winapi.Handle, error) {
	mu.Lock()
	defer mu.Unlock()
	r, ok := regions[name]
	if !ok {
		return 0, errNotFound
	}
	r.refs++
	h := nextH
	nextH++
	handles[h] = &handleEntry{name: name, region: r}
	return h, nil
}

func (*Provider) MapViewOfFile(h winapi.Handle, size uint64) (winapi.View, error) {
	mu.Lock()
	defer mu.Unlock()
	entry, ok := handles[h]
	if !ok {
		return winapi.View{}, errNotFound
	}
	return winapi.View{Addr: uintptr(unsafe.Pointer(&entry.region.buf[0])), Len: int(size)}, nil
}

func (*Provider) UnmapViewOfFile(winapi.View) error { return nil }

func (*Provider) CloseHandle(h winapi.Handle) error {
	mu.Lock()
	defer mu.Unlock()
	entry, ok := handles[h]
	if !ok {
		return errNotFound
	}
	delete(handles, h)
	entry.region.refs--
	if entry.region.refs <= 0 && regions[entry.name] == entry.region {
		delete(regions, entry.name)
	}
	return nil
}

// Reset discards every region and handle, for test isolation between cases
// that reuse the same mapping name.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	regions = make(map[string]*region)
	handles = make(map[winapi.Handle]*handleEntry)
	nextH = 1
}
