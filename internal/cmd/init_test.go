package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zafrem/data-detector/rules"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
	return dir
}

func TestInitCommand_WritesStarterFiles(t *testing.T) {
	dir := chdirTemp(t)

	out, err := execCommand(t, "init")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Wrote datadetector.config.yaml")
	assert.Contains(t, out, "✓ Wrote patterns.custom.yml")
	assert.Contains(t, out, "Next steps:")

	// The scaffolded rule file must load cleanly.
	reg, err := rules.Load(filepath.Join(dir, "patterns.custom.yml"))
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
	_, ok := reg.Lookup("custom/employee_id_01")
	assert.True(t, ok)
}

func TestInitCommand_SkipsExistingWithoutForce(t *testing.T) {
	dir := chdirTemp(t)
	marker := []byte("# operator edits\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "datadetector.config.yaml"), marker, 0o644))

	out, err := execCommand(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "- datadetector.config.yaml exists, skipping")
	assert.Contains(t, out, "✓ Wrote patterns.custom.yml")

	kept, err := os.ReadFile(filepath.Join(dir, "datadetector.config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, marker, kept)
}

func TestInitCommand_ForceOverwrites(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "datadetector.config.yaml"), []byte("old"), 0o644))

	out, err := execCommand(t, "init", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote datadetector.config.yaml")

	data, err := os.ReadFile(filepath.Join(dir, "datadetector.config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "datadetector configuration")
}
