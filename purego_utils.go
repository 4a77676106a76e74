//go:build linux && !novdpau

// Shared utilities for the purego-based VDPAU binding.

package mpegdec

import (
	"os"
	"path/filepath"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

// maxErrorStringLen bounds the scan for the NUL of a driver error string.
// VdpGetErrorString returns short static strings; a longer run means the
// pointer is bad, and the result is cut at the bound.
const maxErrorStringLen = 256

// cString copies the NUL-terminated C string at ptr, reading at most max
// bytes.
func cString(ptr uintptr, max int) string {
	if ptr == 0 {
		return ""
	}
	p := unsafe.Pointer(ptr)
	n := 0
	for n < max && *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}

// libCandidates returns the paths tried for a system library, in order:
// the envVar override, then the bare soname (resolved by the dynamic
// loader), then the usual multiarch and plain library directories.
func libCandidates(envVar, soname string) []string {
	var paths []string
	if envPath := os.Getenv(envVar); envPath != "" {
		if fi, err := os.Stat(envPath); err == nil && fi.IsDir() {
			paths = append(paths, filepath.Join(envPath, soname))
		} else {
			paths = append(paths, envPath)
		}
	}
	paths = append(paths, soname)

	multiarch := map[string]string{
		"amd64": "x86_64-linux-gnu",
		"arm64": "aarch64-linux-gnu",
		"386":   "i386-linux-gnu",
		"arm":   "arm-linux-gnueabihf",
	}[runtime.GOARCH]
	if multiarch != "" {
		paths = append(paths,
			filepath.Join("/usr/lib", multiarch, soname),
			filepath.Join("/lib", multiarch, soname),
		)
	}
	paths = append(paths,
		filepath.Join("/usr/local/lib", soname),
		filepath.Join("/usr/lib64", soname),
		filepath.Join("/usr/lib", soname),
	)
	return paths
}

// dlopenFirst opens the first candidate that loads.
func dlopenFirst(paths []string) (uintptr, string, error) {
	var lastErr error
	for _, path := range paths {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			return handle, path, nil
		}
		lastErr = err
	}
	return 0, "", lastErr
}
