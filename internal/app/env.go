package app

import (
	"strings"

	"go.trai.ch/glhost/internal/core/domain"
)

// BuildEnvironment translates the staged cache into the variables the wrapped
// program's loader and vendor dispatch layers need. Pure and deterministic:
// no I/O, and a category with no staged libraries contributes nothing, so an
// absent variable never overrides a sane host default.
func BuildEnvironment(result *domain.CacheResult) domain.ResolvedEnvironment {
	env := make(domain.ResolvedEnvironment)

	var searchPath []string
	if result.Has(domain.CategoryGeneric) {
		searchPath = append(searchPath, result.LibDir)
	}
	if result.Has(domain.CategoryGLXVendor) {
		searchPath = append(searchPath, result.GLXDir)
		env[domain.EnvGLXVendorLibraryName] = "nvidia"
	}
	if result.Has(domain.CategoryCudaDriver, domain.CategoryCudaRuntime, domain.CategoryOpenCLVendor) {
		searchPath = append(searchPath, result.CudaDir)
		env[domain.EnvNvidiaDriverCapabilities] = "all"
	}
	if result.Has(domain.CategoryEGLVendor, domain.CategoryEGLExternalPlatform) {
		// The EGL objects stay loadable by soname while libglvnd discovers
		// them through the ICD configs.
		searchPath = append(searchPath, result.EGLDir)
		env[domain.EnvEGLVendorLibraryDirs] = result.EGLConfDir
	}

	if len(searchPath) > 0 {
		env[domain.EnvLDLibraryPath] = strings.Join(searchPath, ":")
	}

	return env
}
