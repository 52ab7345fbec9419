package classifier

import (
	"regexp"

	"go.trai.ch/glhost/internal/core/domain"
)

// rule maps a library name pattern to a category. Rules are checked in order;
// the first match wins, so vendor-specific rules must precede the generic ones.
type rule struct {
	category domain.Category
	pattern  *regexp.Regexp
}

// genericPatterns lists the shared objects the vendor driver dlopens by bare
// name, plus the host libraries it links against. Assembled from the library
// set shipped by the proprietary driver packages.
var genericPatterns = []string{
	`^libGLESv1_CM_nvidia\.so`,
	`^libGLESv2_nvidia\.so`,
	`^libglxserver_nvidia\.so`,
	`^libnvcuvid\.so`,
	`^libnvidia-allocator\.so`,
	`^libnvidia-cfg\.so`,
	`^libnvidia-compiler\.so`,
	`^libnvidia-eglcore\.so`,
	`^libnvidia-encode\.so`,
	`^libnvidia-fbc\.so`,
	`^libnvidia-glcore\.so`,
	`^libnvidia-glsi\.so`,
	`^libnvidia-glvkspirv\.so`,
	`^libnvidia-gpucomp\.so`,
	`^libnvidia-ml\.so`,
	`^libnvidia-ngx\.so`,
	`^libnvidia-nvvm\.so`,
	`^libnvidia-opticalflow\.so`,
	`^libnvidia-ptxjitcompiler\.so`,
	`^libnvidia-rtcore\.so`,
	`^libnvidia-tls\.so`,
	`^libnvidia-vulkan-producer\.so`,
	`^libnvidia-wayland-client\.so`,
	`^libnvoptix\.so`,
	`^libnvtegrahv\.so`,
	// Host dependencies the vendor objects resolve by name.
	`^libdrm\.so`,
	`^libffi\.so`,
	`^libgbm\.so`,
	`^libexpat\.so`,
	`^libxcb-glx\.so`,
	`^libX11-xcb\.so`,
	`^libX11\.so`,
	`^libXext\.so`,
	`^libwayland-server\.so`,
	`^libwayland-client\.so`,
}

// defaultRules returns the fixed classification table. Adding a category is a
// data change here, not a control flow change.
func defaultRules() []rule {
	rules := []rule{
		{domain.CategoryGLXVendor, regexp.MustCompile(`^libGLX_nvidia\.so`)},
		{domain.CategoryEGLVendor, regexp.MustCompile(`^libEGL_nvidia\.so`)},
		{domain.CategoryEGLExternalPlatform, regexp.MustCompile(`^libnvidia-egl-(wayland|gbm)\.so`)},
		{domain.CategoryCudaDriver, regexp.MustCompile(`^(libcuda|libcudadebugger)\.so`)},
		{domain.CategoryCudaRuntime, regexp.MustCompile(`^libcudart\.so`)},
		{domain.CategoryOpenCLVendor, regexp.MustCompile(`^libnvidia-opencl\.so`)},
	}
	for _, p := range genericPatterns {
		rules = append(rules, rule{domain.CategoryGeneric, regexp.MustCompile(p)})
	}
	return rules
}

// isVendorCategory reports whether a category marks its directory as a driver
// directory for the catch-all rule.
func isVendorCategory(c domain.Category) bool {
	return c != domain.CategoryGeneric
}
