package workspace

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	run := newRun(t)
	for name, content := range map[string]string{
		"main.py":            "print('hi')\n",
		"tests/test_main.py": "def test_x():\n    pass\n",
		"README.md":          "# demo\n",
	} {
		_, err := run.WriteFile(name, content)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(run.Root, "blob.bin"), []byte{0xff, 0xfe, 0x00}, 0o600))

	files, err := run.Scan()
	require.NoError(t, err)

	assert.Len(t, files, 4)
	assert.Equal(t, "print('hi')\n", files["main.py"])
	assert.Equal(t, "def test_x():\n    pass\n", files["tests/test_main.py"])
	assert.Contains(t, files["blob.bin"], "Error reading file")
	assert.Equal(t, []string{"README.md", "blob.bin", "main.py", "tests/test_main.py"}, SortedPaths(files))
}

func TestScan_SymlinkNotFollowed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	run := newRun(t)
	secret := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("token"), 0o600))
	require.NoError(t, os.Symlink(secret, filepath.Join(run.Root, "link.txt")))

	files, err := run.Scan()
	require.NoError(t, err)
	assert.NotContains(t, files["link.txt"], "token")
	assert.Contains(t, files["link.txt"], "Error reading file")
}

func TestScan_MissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestIsTestFile(t *testing.T) {
	tests := map[string]bool{
		"test_main.py":            true,
		"tests/helpers.py":        true,
		"pkg/tests/fixtures.json": true,
		"app_test.go":             true,
		"conftest.py":             true,
		"main.py":                 false,
		"contest.py":              false,
		"testing_utils.py":        false,
		"plan.json":               false,
		`tests\test_api.py`:       true,
	}
	for path, want := range tests {
		assert.Equal(t, want, IsTestFile(path), path)
	}
}
