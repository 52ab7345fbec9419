package domain

// EnvVar is the closed set of environment variables the engine may emit.
type EnvVar string

const (
	// EnvLDLibraryPath is the dynamic loader search path.
	EnvLDLibraryPath EnvVar = "LD_LIBRARY_PATH"
	// EnvEGLVendorLibraryDirs points libglvnd at the staged EGL ICD configs.
	EnvEGLVendorLibraryDirs EnvVar = "__EGL_VENDOR_LIBRARY_DIRS"
	// EnvGLXVendorLibraryName selects the GLX vendor for libglvnd.
	EnvGLXVendorLibraryName EnvVar = "__GLX_VENDOR_LIBRARY_NAME"
	// EnvNvidiaDriverCapabilities widens the driver capability set for Cuda programs.
	EnvNvidiaDriverCapabilities EnvVar = "NVIDIA_DRIVER_CAPABILITIES"
)

// IsList reports whether the variable holds a colon-separated directory list.
// A pre-existing host value of a list variable is kept, appended after the
// injected entries; scalar variables are replaced outright.
func (v EnvVar) IsList() bool {
	switch v {
	case EnvLDLibraryPath, EnvEGLVendorLibraryDirs:
		return true
	case EnvGLXVendorLibraryName, EnvNvidiaDriverCapabilities:
		return false
	}
	return false
}

// ResolvedEnvironment is the final output of the pipeline: the variables to
// inject into the wrapped process. Built fresh on every invocation and applied
// in one step; never persisted, never mutated mid-pipeline.
type ResolvedEnvironment map[EnvVar]string
