// Package workspace manages run directories: one directory per generation,
// path containment for agent writes, and the post-run file scan.
package workspace

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lunacore/luna/internal/clock"
	"github.com/lunacore/luna/internal/constants"
	"github.com/lunacore/luna/internal/errors"
)

const (
	dirPerm  = 0o755 // generated projects are meant to be shared
	filePerm = 0o644

	// maxCollisionSuffix bounds the numeric suffix search in Create.
	maxCollisionSuffix = 100
)

// Run is a single run directory.
type Run struct {
	// Root is the absolute path of the run directory.
	Root string

	// ProjectName is the sanitized project name the directory was named after.
	ProjectName string

	// CreatedAt is the timestamp used in the directory name.
	CreatedAt time.Time

	// realRoot is Root with symlinks resolved, used for containment checks.
	realRoot string
}

// WriteInfo describes a completed write.
type WriteInfo struct {
	// Path is the slash-separated path relative to the run root.
	Path  string
	Lines int
	Bytes int
}

// Create makes a new run directory <base>/<project>_<YYYYMMDD_HHMMSS>.
// When that directory already exists a numeric suffix is appended.
func Create(base, projectName string, clk clock.Clock) (*Run, error) {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if base == "" {
		base = constants.DefaultOutputDir
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return nil, errors.Wrap(err, "resolve output directory")
	}
	if err := os.MkdirAll(absBase, dirPerm); err != nil { //#nosec G301 -- generated projects are world-readable
		return nil, errors.Wrap(err, "create output directory")
	}

	name := SanitizeName(projectName)
	now := clk.Now()
	stem := name + "_" + now.Format(constants.RunDirTimeFormat)

	for i := 1; i <= maxCollisionSuffix; i++ {
		dirName := stem
		if i > 1 {
			dirName = fmt.Sprintf("%s_%d", stem, i)
		}
		path := filepath.Join(absBase, dirName)

		err := os.Mkdir(path, dirPerm) //#nosec G301 -- generated projects are world-readable
		if stderrors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "create run directory")
		}

		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil, errors.Wrap(err, "resolve run directory")
		}
		return &Run{Root: path, ProjectName: name, CreatedAt: now, realRoot: real}, nil
	}

	return nil, fmt.Errorf("create run directory %s: %w", stem, fs.ErrExist)
}

// Open wraps an existing directory as a Run.
func Open(root string) (*Run, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, "resolve run directory")
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrap(err, "open run directory")
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open run directory %s: %w", abs, errors.ErrInvalidPath)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, errors.Wrap(err, "resolve run directory")
	}
	return &Run{Root: abs, ProjectName: filepath.Base(abs), CreatedAt: info.ModTime(), realRoot: real}, nil
}

// Resolve maps an agent-supplied file name to an absolute path inside the
// run directory. Empty names, absolute paths, names that climb out with
// "..", and names that reach outside through a symlink are rejected.
func (r *Run) Resolve(name string) (abs, rel string, err error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if trimmed == "" {
		return "", "", fmt.Errorf("%w: empty file name", errors.ErrInvalidPath)
	}
	if strings.HasPrefix(trimmed, "/") || filepath.IsAbs(trimmed) || filepath.VolumeName(trimmed) != "" {
		return "", "", fmt.Errorf("%w: %s is absolute", errors.ErrPathEscape, name)
	}

	cleaned := filepath.Clean(filepath.FromSlash(trimmed))
	if cleaned == "." {
		return "", "", fmt.Errorf("%w: %s names the run directory", errors.ErrInvalidPath, name)
	}
	if !filepath.IsLocal(cleaned) {
		return "", "", fmt.Errorf("%w: %s", errors.ErrPathEscape, name)
	}

	abs = filepath.Join(r.Root, cleaned)
	if err := r.checkSymlinks(abs); err != nil {
		return "", "", fmt.Errorf("%w: %s: %w", errors.ErrPathEscape, name, err)
	}
	return abs, filepath.ToSlash(cleaned), nil
}

// checkSymlinks resolves the nearest existing ancestor of path (or path
// itself) and verifies it stays under the run root.
func (r *Run) checkSymlinks(path string) error {
	probe := path
	for {
		if _, err := os.Lstat(probe); err == nil {
			break
		}
		parent := filepath.Dir(probe)
		if parent == probe {
			return nil
		}
		probe = parent
	}

	real, err := filepath.EvalSymlinks(probe)
	if err != nil {
		return err
	}
	root := r.realRoot
	if root == "" {
		root = r.Root
	}
	within, err := filepath.Rel(root, real)
	if err != nil {
		return err
	}
	if within != "." && !filepath.IsLocal(within) {
		return fmt.Errorf("resolves to %s", real) //nolint:err113 // detail for the wrapped sentinel
	}
	return nil
}

// WriteFile writes content to name under the run directory, creating parent
// directories as needed.
func (r *Run) WriteFile(name, content string) (WriteInfo, error) {
	abs, rel, err := r.Resolve(name)
	if err != nil {
		return WriteInfo{}, err
	}
	if err := os.MkdirAll(filepath.Dir(abs), dirPerm); err != nil { //#nosec G301 -- generated projects are world-readable
		return WriteInfo{}, errors.Wrap(err, "create parent directory")
	}
	if err := atomicWrite(abs, []byte(content), filePerm); err != nil {
		return WriteInfo{}, err
	}
	return WriteInfo{Path: rel, Lines: CountLines(content), Bytes: len(content)}, nil
}

// ReadFile returns the content of a file inside the run directory.
func (r *Run) ReadFile(name string) (string, error) {
	abs, _, err := r.Resolve(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs) //#nosec G304 -- path is contained by Resolve
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Exists reports whether name exists inside the run directory.
func (r *Run) Exists(name string) bool {
	abs, _, err := r.Resolve(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}

// CountLines counts text lines, treating a missing trailing newline as a line.
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// atomicWrite writes data to a file atomically using write-then-rename.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm) //#nosec G304 -- path is contained by Resolve
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
