package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadCatalogs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nl.yaml", "Continue: Doorgaan\n\"Logged in as $1 (external)\": \"Ingelogd als $1 (extern)\"\n")
	writeFile(t, dir, "de.yml", "Continue: Weiter\n")
	writeFile(t, dir, "README.md", "ignored")
	writeFile(t, dir, ".hidden.yaml", "Continue: nope\n")

	catalogs, err := LoadCatalogs(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"de", "nl"}, catalogs.Languages())

	nl, ok := catalogs.Lookup("nl")
	require.True(t, ok)
	assert.Equal(t, "Doorgaan", nl["Continue"])
	assert.Equal(t, "Ingelogd als $1 (extern)", nl["Logged in as $1 (external)"])

	_, ok = catalogs.Lookup("fr")
	assert.False(t, ok)
	_, ok = catalogs.Lookup("")
	assert.False(t, ok)
}

func TestLoadCatalogsRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nl.yaml", "- not\n- a map\n")

	_, err := LoadCatalogs(dir)
	assert.Error(t, err)
}

func TestLoadCatalogsMissingDir(t *testing.T) {
	_, err := LoadCatalogs(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
