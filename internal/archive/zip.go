// Package archive packages a generated project as a ZIP file and optionally
// publishes it to S3-compatible object storage.
package archive

import (
	"archive/zip"
	"bytes"
	"sort"
	"strings"
	"time"

	"github.com/lunacore/luna/internal/errors"
)

// epoch pins entry timestamps so identical file maps produce identical bytes.
//
//nolint:gochecknoglobals // Fixed timestamp
var epoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// BuildZip writes files into a ZIP archive. Entries are sorted by path and
// carry a fixed timestamp so the output is deterministic.
func BuildZip(files map[string]string) ([]byte, error) {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range paths {
		name := strings.TrimLeft(strings.ReplaceAll(p, "\\", "/"), "/")
		if name == "" {
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: epoch,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "add %s to archive", name)
		}
		if _, err := w.Write([]byte(files[p])); err != nil {
			return nil, errors.Wrapf(err, "write %s to archive", name)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "finish archive")
	}
	return buf.Bytes(), nil
}

// FileName is the download name of a project's archive.
func FileName(projectName string) string {
	return projectName + ".zip"
}
