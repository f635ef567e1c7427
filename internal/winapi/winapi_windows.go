//go:build windows

package winapi

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// x/sys/windows has no OpenFileMapping wrapper, so that one call goes
// through kernel32 directly.
var (
	modkernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procOpenFileMappingW = modkernel32.NewProc("OpenFileMappingW")
)

type windowsProvider struct{}

// Default returns the Provider backed by the real Win32 mapping table.
func Default() Provider { return windowsProvider{} }

func (windowsProvider) CreateFileMapping(name string, size uint64) (Handle, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	hi := uint32(size >> 32)
	lo := uint32(size & 0xffffffff)
	h, err := windows.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE, hi, lo, namePtr)
	if err != nil {
		return 0, err
	}
	return Handle(h), nil
}

func (windowsProvider) OpenFileMapping(name string) (Handle, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	h, _, callErr := procOpenFileMappingW.Call(
		uintptr(windows.FILE_MAP_ALL_ACCESS),
		0,
		uintptr(unsafe.Pointer(namePtr)),
	)
	if h == 0 {
		return 0, callErr
	}
	return Handle(h), nil
}

func (windowsProvider) MapViewOfFile(h Handle, size uint64) (View, error) {
	addr, err := windows.MapViewOfFile(windows.Handle(h), windows.FILE_MAP_ALL_ACCESS, 0, 0, uintptr(size))
	if err != nil {
		return View{}, err
	}
	return View{Addr: addr, Len: int(size)}, nil
}

func (windowsProvider) UnmapViewOfFile(v View) error {
	return windows.UnmapViewOfFile(v.Addr)
}

func (windowsProvider) CloseHandle(h Handle) error {
	return windows.CloseHandle(windows.Handle(h))
}
