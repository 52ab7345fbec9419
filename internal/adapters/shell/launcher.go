// Package shell provides the process launcher adapter.
package shell

import (
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/glhost/internal/core/domain"
	"go.trai.ch/glhost/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"
)

var _ ports.Launcher = (*Launcher)(nil)

// Launcher implements ports.Launcher. Exec replaces the current process via
// execve, so the wrapped program's exit code becomes the caller's verbatim.
type Launcher struct {
	logger ports.Logger
}

// NewLauncher creates a new Launcher.
func NewLauncher(logger ports.Logger) *Launcher {
	return &Launcher{logger: logger}
}

// Print writes the injected loader search path to w, followed by a newline.
func (l *Launcher) Print(env domain.ResolvedEnvironment, w io.Writer) error {
	if _, err := io.WriteString(w, env[domain.EnvLDLibraryPath]+"\n"); err != nil {
		return zerr.Wrap(err, "failed to write search path")
	}
	return nil
}

// Exec merges env over the process environment and replaces the current
// process image with argv. It only returns on failure.
func (l *Launcher) Exec(env domain.ResolvedEnvironment, argv []string) error {
	if len(argv) == 0 {
		return zerr.Wrap(domain.ErrExecFailed, "no command given")
	}

	merged := MergeEnviron(os.Environ(), env)

	name := argv[0]
	executable := name
	if !strings.Contains(name, "/") {
		lp, err := lookPath(name, merged)
		if err != nil {
			execErr := zerr.With(zerr.Wrap(domain.ErrExecFailed, "command not found"), "command", name)
			return zerr.With(execErr, "cause", err.Error())
		}
		executable = lp
	}

	l.logger.Debug("replacing process image", "executable", executable)
	if err := unix.Exec(executable, argv, merged); err != nil {
		execErr := zerr.With(zerr.Wrap(domain.ErrExecFailed, "process replacement failed"), "command", name)
		return zerr.With(execErr, "cause", err.Error())
	}

	// Exec does not return on success.
	return zerr.With(zerr.Wrap(domain.ErrExecFailed, "process replacement returned"), "command", name)
}

// MergeEnviron applies the resolved environment on top of base entries.
// List-valued variables keep any pre-existing value appended after the
// injected one, so a caller's own LD_LIBRARY_PATH still applies; scalar
// variables are replaced.
func MergeEnviron(base []string, env domain.ResolvedEnvironment) []string {
	envMap := make(map[string]string, len(base))
	keys := make([]string, 0, len(base))
	for _, entry := range base {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, exists := envMap[k]; !exists {
			keys = append(keys, k)
		}
		envMap[k] = v
	}

	injected := make([]string, 0, len(env))
	for v := range env {
		injected = append(injected, string(v))
	}
	sort.Strings(injected)

	for _, name := range injected {
		value := env[domain.EnvVar(name)]
		existing, exists := envMap[name]
		if exists && existing != "" && domain.EnvVar(name).IsList() {
			value = value + string(os.PathListSeparator) + existing
		}
		if !exists {
			keys = append(keys, name)
		}
		envMap[name] = value
	}

	result := make([]string, 0, len(keys))
	for _, k := range keys {
		result = append(result, k+"="+envMap[k])
	}
	return result
}

// lookPath resolves file against the PATH of the given environment rather
// than the current process PATH.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if p, ok := strings.CutPrefix(e, "PATH="); ok {
			path = p
			break
		}
	}
	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: an empty path element means ".".
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
