//go:build !windows

package winapi

import "errors"

// errUnsupportedPlatform is returned by every method of unsupportedProvider.
// Named, pagefile-backed shared memory of the kind this package wraps is a
// Win32 concept; there's no faithful non-Windows equivalent to fall back to,
// unlike an ordinary mmap of a file.
var errUnsupportedPlatform = errors.New("winmmf: named memory mappings require a Win32-style platform")

type unsupportedProvider struct{}

// Default returns a Provider whose every call fails, so the mmf package
// still compiles and its fakewinapi-backed tests still run on non-Windows
// hosts without a build tag on the whole package.
func Default() Provider { return unsupportedProvider{} }

func (unsupportedProvider) CreateFileMapping(string, uint64) (Handle, error) {
	return 0, errUnsupportedPlatform
}

func (unsupportedProvider) OpenFileMapping(string) (Handle, error) {
	return 0, errUnsupportedPlatform
}

func (unsupportedProvider) MapViewOfFile(Handle, uint64) (View, error) {
	return View{}, errUnsupportedPlatform
}

func (unsupportedProvider) UnmapViewOfFile(View) error {
	return errUnsupportedPlatform
}

func (unsupportedProvider) CloseHandle(Handle) error {
	return errUnsupportedPlatform
}
