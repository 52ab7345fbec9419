// Package domain defines the core data model for glhost.
package domain

import (
	"strconv"
	"strings"
	"time"
)

// Category classifies a host driver library by the role it plays for the
// dynamic loader and the GL vendor-neutral dispatch layer.
type Category string

const (
	// CategoryGLXVendor is the GLX vendor dispatch library (libGLX_nvidia).
	CategoryGLXVendor Category = "glx-vendor"
	// CategoryEGLVendor is the EGL vendor dispatch library (libEGL_nvidia).
	CategoryEGLVendor Category = "egl-vendor"
	// CategoryEGLExternalPlatform covers the EGL external platform modules
	// (wayland, gbm).
	CategoryEGLExternalPlatform Category = "egl-external-platform"
	// CategoryCudaDriver is the Cuda driver library (libcuda and friends).
	CategoryCudaDriver Category = "cuda-driver"
	// CategoryCudaRuntime is the Cuda runtime library (libcudart).
	CategoryCudaRuntime Category = "cuda-runtime"
	// CategoryOpenCLVendor is the vendor OpenCL implementation.
	CategoryOpenCLVendor Category = "opencl-vendor"
	// CategoryGeneric covers every other shared object the vendor libraries
	// dlopen by bare name. Staged but not wired into vendor-specific variables.
	CategoryGeneric Category = "generic"
)

// HostFile is a regular file discovered in one of the scanned host directories,
// before classification. The visible name is kept even when the file is a
// symlink; size and mtime describe the resolved target.
type HostFile struct {
	Name    string
	Dir     string
	Path    string
	Size    int64
	ModTime time.Time

	// ScanRank is the position of Dir in the scan order. Lower ranks were
	// scanned earlier and win final ties.
	ScanRank int
}

// DriverFile is a classified candidate. Immutable once selection completes.
type DriverFile struct {
	HostFile

	Category Category
	Version  VersionKey

	// Aliases are the other visible names resolving to the same file, sorted.
	// On a typical host layout these are the soname links next to the real
	// driver object (libEGL_nvidia.so.0 -> libEGL_nvidia.so.535.183.01); the
	// loader and the vendor dispatch layer open libraries by exactly these
	// names, so the cache must carry them too.
	Aliases []string
}

// Stem returns the library name up to and including the ".so" marker, so
// "libcuda.so.545.29.06" and "libcuda.so.1" share the stem "libcuda.so".
// Names without a ".so" marker are returned unchanged.
func (f HostFile) Stem() string {
	idx := strings.Index(f.Name, ".so")
	if idx < 0 {
		return f.Name
	}
	return f.Name[:idx+len(".so")]
}

// VersionKey is the comparable version of a library, parsed from the dotted
// numeric suffix after ".so.". A key with Parsed == false compares below any
// parsed key.
type VersionKey struct {
	Parts  []int
	Parsed bool
}

// ParseVersionKey extracts a version key from a library file name.
// "libGLX_nvidia.so.535.183.01" yields [535 183 1]; names without a fully
// numeric suffix ("libcuda.so", "libfoo.so.debug") yield an unparsed key.
func ParseVersionKey(name string) VersionKey {
	idx := strings.Index(name, ".so.")
	if idx < 0 {
		return VersionKey{}
	}
	fields := strings.Split(name[idx+len(".so."):], ".")
	parts := make([]int, 0, len(fields))
	for _, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil {
			return VersionKey{}
		}
		parts = append(parts, n)
	}
	return VersionKey{Parts: parts, Parsed: true}
}

// Compare orders version keys. Parsed keys order above unparsed ones;
// two parsed keys compare component-wise, with a longer key winning a
// shared prefix ("so.1.2.3" > "so.1.2").
func (v VersionKey) Compare(o VersionKey) int {
	switch {
	case v.Parsed && !o.Parsed:
		return 1
	case !v.Parsed && o.Parsed:
		return -1
	case !v.Parsed && !o.Parsed:
		return 0
	}
	for i := 0; i < len(v.Parts) && i < len(o.Parts); i++ {
		if v.Parts[i] != o.Parts[i] {
			if v.Parts[i] > o.Parts[i] {
				return 1
			}
			return -1
		}
	}
	switch {
	case len(v.Parts) > len(o.Parts):
		return 1
	case len(v.Parts) < len(o.Parts):
		return -1
	}
	return 0
}
