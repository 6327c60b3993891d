package cli_test

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwantia/coda/cmd/coda/cli"
	codaerrors "github.com/mwantia/coda/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	dir    string
	config string
}

func newTestEnv(t *testing.T, write bool) *testEnv {
	t.Helper()

	dir := t.TempDir()
	for name, content := range map[string]string{
		"data/one.txt":        "one",
		"data/two.txt":        "two",
		"data/three.py":       "print(3)",
		"data/nested/four.md": "# four",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	config := filepath.Join(dir, "coda.yaml")
	data := fmt.Sprintf("store:\n  type: sqlite\n  path: %s\n  write: %t\n", filepath.Join(dir, "coda.db"), write)
	require.NoError(t, os.WriteFile(config, []byte(data), 0644))

	return &testEnv{dir: dir, config: config}
}

func (e *testEnv) path(name string) string {
	return filepath.Join(e.dir, "data", name)
}

func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := cli.NewRootCommand(cli.VersionInfo{Version: "1.2.3", Commit: "test"})

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", e.config}, args...))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func lines(s string) []string {
	return strings.Fields(s)
}

func TestCLI_Version(t *testing.T) {
	env := newTestEnv(t, true)

	out, _, err := env.run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)
}

func TestCLI_TagAndFind(t *testing.T) {
	env := newTestEnv(t, true)

	_, _, err := env.run(t, "tag", env.path("one.txt"), env.path("two.txt"), "type", "text")
	require.NoError(t, err)
	_, _, err = env.run(t, "tag", env.path("three.py"), "type", "source")
	require.NoError(t, err)

	out, _, err := env.run(t, "find", "type", "text")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{env.path("one.txt"), env.path("two.txt")}, lines(out))

	out, _, err = env.run(t, "find", "type", "binary")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCLI_TagKeepsStoredMetadata(t *testing.T) {
	env := newTestEnv(t, true)

	_, _, err := env.run(t, "tag", env.path("one.txt"), "type", "text")
	require.NoError(t, err)
	_, _, err = env.run(t, "tag", env.path("one.txt"), "cohort", "x")
	require.NoError(t, err)

	out, _, err := env.run(t, "show", env.path("one.txt"))
	require.NoError(t, err)

	expected := fmt.Sprintf("\n%s\n{\n    \"cohort\": \"x\",\n    \"type\": \"text\"\n}\n", env.path("one.txt"))
	assert.Equal(t, expected, out)
}

func TestCLI_DirectoryExpands(t *testing.T) {
	env := newTestEnv(t, true)

	_, _, err := env.run(t, "tag", filepath.Join(env.dir, "data"), "cohort", "all")
	require.NoError(t, err)

	out, _, err := env.run(t, "find", "cohort", "all")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		env.path("one.txt"),
		env.path("two.txt"),
		env.path("three.py"),
		env.path("nested/four.md"),
	}, lines(out))

	_, _, err = env.run(t, "delete", filepath.Join(env.dir, "data", "nested"))
	require.NoError(t, err)

	out, _, err = env.run(t, "find", "cohort", "all")
	require.NoError(t, err)
	assert.Len(t, lines(out), 3)
}

func TestCLI_AddAndDelete(t *testing.T) {
	env := newTestEnv(t, true)

	_, _, err := env.run(t, "add", env.path("one.txt"))
	require.NoError(t, err)

	out, _, err := env.run(t, "show", env.path("one.txt"))
	require.NoError(t, err)
	assert.Contains(t, out, "{}")

	// deleting twice is not an error
	for range 2 {
		_, _, err = env.run(t, "delete", env.path("one.txt"), env.path("two.txt"))
		require.NoError(t, err)
	}
}

func TestCLI_InvalidPath(t *testing.T) {
	env := newTestEnv(t, true)

	_, _, err := env.run(t, "add", env.path("missing.txt"))
	assert.True(t, errors.Is(err, codaerrors.ErrInvalidPath))
}

func TestCLI_ReadOnly(t *testing.T) {
	env := newTestEnv(t, false)

	_, _, err := env.run(t, "tag", env.path("one.txt"), "type", "text")
	assert.True(t, errors.Is(err, codaerrors.ErrPersistence))

	_, _, err = env.run(t, "find", "type", "text")
	assert.NoError(t, err)
}

func TestCLI_Status(t *testing.T) {
	env := newTestEnv(t, true)

	_, stderr, err := env.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, stderr, "sqlite")
	assert.Contains(t, stderr, "good to go!")
	assert.Contains(t, stderr, "applied")
}

func TestCLI_ConfigGenerate(t *testing.T) {
	env := newTestEnv(t, true)
	output := filepath.Join(env.dir, "generated")

	out, _, err := env.run(t, "config", "generate", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated")

	data, err := os.ReadFile(filepath.Join(output, "coda.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "dbname: coda")

	out, _, err = env.run(t, "config", "generate", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Skipping")
}
