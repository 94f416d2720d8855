package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artkeep.yaml")
	doc := `data_folder: /var/lib/artkeep
log_file: /var/log/artkeep.log
default_language: cs
languages: [cs, en]
currencies: [czk, eur, usd]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/artkeep", cfg.DataFolder)
	assert.Equal(t, "/var/log/artkeep.log", cfg.LogFile)
	assert.Equal(t, "cs", cfg.DefaultLanguage)
	assert.Equal(t, []string{"cs", "en"}, cfg.Languages)
	assert.Equal(t, []string{"czk", "eur", "usd"}, cfg.Currencies)
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artkeep.yaml")
	require.NoError(t, os.WriteFile(path, []byte("currencies: [czk]\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"czk"}, cfg.Currencies)
	assert.Equal(t, Default().DataFolder, cfg.DataFolder)
	assert.Equal(t, Default().LogFile, cfg.LogFile)
	assert.Equal(t, Default().Languages, cfg.Languages)
}

func TestLoadDropsEmptyEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artkeep.yaml")
	require.NoError(t, os.WriteFile(path,
		[]byte("languages: ['', en]\ncurrencies: ['']\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"en"}, cfg.Languages)

	// A list of only empty entries falls back to the default.
	assert.Equal(t, Default().Currencies, cfg.Currencies)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artkeep.yaml")
	require.NoError(t, os.WriteFile(path, []byte("currencies: [unterminated\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
