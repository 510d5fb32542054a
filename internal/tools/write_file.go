package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/lunacore/luna/internal/workspace"
)

// WriteFile writes agent-produced files into the run directory.
type WriteFile struct {
	run *workspace.Run
}

// NewWriteFile returns a write_file tool bound to run.
func NewWriteFile(run *workspace.Run) *WriteFile {
	return &WriteFile{run: run}
}

type writeFileInput struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Content  string `json:"content"`
}

// Spec implements Tool.
func (w *WriteFile) Spec() Spec {
	return Spec{
		Name:        NameWriteFile,
		Description: "Write a text file into the project directory. Parent directories are created.",
		Parameters: []Param{
			{Name: "filename", Description: "path relative to the project root, e.g. app/main.py"},
			{Name: "content", Description: "full file content"},
		},
	}
}

// Call implements Tool.
func (w *WriteFile) Call(_ context.Context, input json.RawMessage) Result {
	var in writeFileInput
	if err := decodeInput(input, &in); err != nil {
		return failResult("Error writing file: invalid input: %v", err)
	}
	name := strings.TrimSpace(in.Filename)
	if name == "" {
		name = strings.TrimSpace(in.Path)
	}

	info, err := w.run.WriteFile(name, in.Content)
	if err != nil {
		return failResult("Error writing %s: %v", name, err)
	}
	res := okResult("Wrote %s (%d lines, %d bytes)", info.Path, info.Lines, info.Bytes)
	res.Path = info.Path
	return res
}

var _ Tool = (*WriteFile)(nil)
