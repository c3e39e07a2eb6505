package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl  string `json:"base_url"`
	DelayMin int    `json:"delay_min"`
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(
		filepath.Join(dir, "pipeline.json5"),
		[]byte(`{base_url: "https://example.net", delay_min: 1500}`),
		0600,
	)
	require.NoError(t, err)
	err = os.WriteFile(
		filepath.Join(dir, "pipeline.local.json5"),
		[]byte(`{delay_min: 10}`),
		0600,
	)
	require.NoError(t, err)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "pipeline.json5"))
	require.NoError(t, err)
	require.Equal(t, "https://example.net", config.BaseUrl)
	require.Equal(t, 10, config.DelayMin)
}

func TestReadConfigMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadConfig[testConfig](filepath.Join(dir, "nothing.json5"))
	require.True(t, os.IsNotExist(err))
}
