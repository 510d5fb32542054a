package workspace

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunacore/luna/internal/clock"
	"github.com/lunacore/luna/internal/errors"
)

func fixedClock() clock.Clock {
	return clock.NewStepClock(time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC), 0)
}

func newRun(t *testing.T) *Run {
	t.Helper()
	run, err := Create(t.TempDir(), "todo_api", fixedClock())
	require.NoError(t, err)
	return run
}

func TestCreate(t *testing.T) {
	t.Run("names directory after project and timestamp", func(t *testing.T) {
		base := t.TempDir()
		run, err := Create(base, "todo_api", fixedClock())
		require.NoError(t, err)

		assert.Equal(t, "todo_api_20260314_092653", filepath.Base(run.Root))
		assert.Equal(t, "todo_api", run.ProjectName)
		assert.DirExists(t, run.Root)
	})

	t.Run("collision gets numeric suffix", func(t *testing.T) {
		base := t.TempDir()
		first, err := Create(base, "todo_api", fixedClock())
		require.NoError(t, err)
		second, err := Create(base, "todo_api", fixedClock())
		require.NoError(t, err)
		third, err := Create(base, "todo_api", fixedClock())
		require.NoError(t, err)

		assert.NotEqual(t, first.Root, second.Root)
		assert.Equal(t, "todo_api_20260314_092653_2", filepath.Base(second.Root))
		assert.Equal(t, "todo_api_20260314_092653_3", filepath.Base(third.Root))
	})

	t.Run("creates missing base directory", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "nested", "output")
		run, err := Create(base, "x y", fixedClock())
		require.NoError(t, err)
		assert.Equal(t, "x_y", run.ProjectName)
	})
}

func TestResolve_Containment(t *testing.T) {
	run := newRun(t)

	tests := []struct {
		name    string
		input   string
		wantRel string
		wantErr error
	}{
		{"simple file", "main.py", "main.py", nil},
		{"nested file", "app/models/user.py", "app/models/user.py", nil},
		{"backslashes normalized", `app\routes.py`, "app/routes.py", nil},
		{"inner dot-dot that stays inside", "app/../main.py", "main.py", nil},
		{"empty", "", "", errors.ErrInvalidPath},
		{"blank", "   ", "", errors.ErrInvalidPath},
		{"dot", ".", "", errors.ErrInvalidPath},
		{"absolute", "/etc/passwd", "", errors.ErrPathEscape},
		{"parent escape", "../escape.py", "", errors.ErrPathEscape},
		{"deep escape", "a/../../escape.py", "", errors.ErrPathEscape},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			abs, rel, err := run.Resolve(tc.input)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantRel, rel)
			assert.Equal(t, filepath.Join(run.Root, filepath.FromSlash(tc.wantRel)), abs)
		})
	}
}

func TestResolve_SymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	run := newRun(t)
	outside := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(run.Root, "link")))

	_, _, err := run.Resolve("link/evil.py")
	require.ErrorIs(t, err, errors.ErrPathEscape)

	_, err = run.WriteFile("link/evil.py", "print('x')")
	require.ErrorIs(t, err, errors.ErrPathEscape)
	assert.NoFileExists(t, filepath.Join(outside, "evil.py"))
}

func TestWriteFile(t *testing.T) {
	run := newRun(t)

	info, err := run.WriteFile("pkg/app.py", "import os\nprint(os.name)\n")
	require.NoError(t, err)
	assert.Equal(t, WriteInfo{Path: "pkg/app.py", Lines: 2, Bytes: 25}, info)

	got, err := run.ReadFile("pkg/app.py")
	require.NoError(t, err)
	assert.Equal(t, "import os\nprint(os.name)\n", got)
	assert.True(t, run.Exists("pkg/app.py"))
	assert.False(t, run.Exists("pkg/missing.py"))
	assert.NoFileExists(t, filepath.Join(run.Root, "pkg", "app.py.tmp"))

	t.Run("overwrites", func(t *testing.T) {
		_, err := run.WriteFile("pkg/app.py", "x = 1")
		require.NoError(t, err)
		got, err := run.ReadFile("pkg/app.py")
		require.NoError(t, err)
		assert.Equal(t, "x = 1", got)
	})
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, CountLines(""))
	assert.Equal(t, 1, CountLines("a"))
	assert.Equal(t, 1, CountLines("a\n"))
	assert.Equal(t, 3, CountLines("a\nb\nc"))
}

func TestOpen(t *testing.T) {
	run := newRun(t)
	opened, err := Open(run.Root)
	require.NoError(t, err)
	assert.Equal(t, run.Root, opened.Root)

	_, err = Open(filepath.Join(run.Root, "nope"))
	require.Error(t, err)
}
