package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lunacore/luna/internal/errors"
)

// Scan walks dir and returns every regular file keyed by its slash-separated
// path relative to dir. A file that cannot be read as UTF-8 text maps to an
// error text instead of failing the scan.
func Scan(dir string) (map[string]string, error) {
	files := make(map[string]string)
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if p == dir {
				return walkErr
			}
			rel, _ := filepath.Rel(dir, p)
			files[filepath.ToSlash(rel)] = readError(walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)

		if d.Type()&fs.ModeSymlink != 0 {
			files[key] = readError(fmt.Errorf("%w: symbolic link", errors.ErrInvalidPath))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		data, err := os.ReadFile(p) //#nosec G304 -- walking the run directory
		switch {
		case err != nil:
			files[key] = readError(err)
		case !utf8.Valid(data):
			files[key] = readError(fmt.Errorf("not UTF-8 text (%d bytes)", len(data))) //nolint:err113 // display only
		default:
			files[key] = string(data)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", dir)
	}
	return files, nil
}

// Scan returns the files of this run.
func (r *Run) Scan() (map[string]string, error) {
	return Scan(r.Root)
}

func readError(err error) string {
	return "Error reading file: " + err.Error()
}

// SortedPaths returns the keys of files in lexical order.
func SortedPaths(files map[string]string) []string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// IsTestFile reports whether a slash-separated relative path looks like a
// test: test_*, *_test.*, conftest.py, or anything under a tests/ directory.
func IsTestFile(p string) bool {
	p = strings.ReplaceAll(p, `\`, "/")
	base := path.Base(p)
	if strings.HasPrefix(base, "test_") || base == "conftest.py" {
		return true
	}
	stem := strings.TrimSuffix(base, path.Ext(base))
	if strings.HasSuffix(stem, "_test") {
		return true
	}
	for _, seg := range strings.Split(path.Dir(p), "/") {
		if seg == "tests" || seg == "test" {
			return true
		}
	}
	return false
}
