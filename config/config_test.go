package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loveq369/symkernel/archive"
	"github.com/loveq369/symkernel/kernel"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 17, cfg.Digits)
	assert.Equal(t, kernel.DefaultRecursionLimit, cfg.RecursionLimit)
	assert.Equal(t, 1, cfg.ArchiveMinVersion)
	assert.Equal(t, 1, cfg.ArchiveMaxVersion)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := DefaultConfig()
	cfg.Digits = 30
	cfg.RecursionLimit = 2048
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, got.Digits)
	assert.Equal(t, 2048, got.RecursionLimit)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("digits: [this is not an int"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverridesDigits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := DefaultConfig()
	require.NoError(t, cfg.Save(path))

	t.Setenv("SYMKERNEL_DIGITS", "50")
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Digits)
}

func TestEnvOverridesRecursionLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := DefaultConfig()
	require.NoError(t, cfg.Save(path))

	t.Setenv("SYMKERNEL_RECURSION_LIMIT", "99")
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 99, got.RecursionLimit)
}

func TestDigitsToBitsHasFloor(t *testing.T) {
	assert.Equal(t, uint(24), digitsToBits(0))
	assert.Equal(t, uint(24), digitsToBits(1))
}

func TestDigitsToBitsScalesWithDigits(t *testing.T) {
	got := digitsToBits(15)
	assert.Greater(t, got, uint(24))
	assert.Less(t, got, uint(100))
}

func TestApplyInstallsProcessWideConfig(t *testing.T) {
	orig := kernel.DefaultRecursionLimit
	defer func() { kernel.DefaultRecursionLimit = orig }()

	cfg := DefaultConfig()
	cfg.RecursionLimit = 777
	cfg.Apply()
	assert.Equal(t, 777, kernel.DefaultRecursionLimit)
}

func TestApplyInstallsArchiveVersionWindow(t *testing.T) {
	defer archive.SetAcceptedVersionRange(archive.Version, archive.Version)

	var buf bytes.Buffer
	require.NoError(t, archive.Write(&buf, kernel.NewSymbol("applyVersionWindowProbe")))
	raw := buf.Bytes()
	raw[len(archive.Magic)] = archive.Version + 1

	cfg := DefaultConfig()
	cfg.ArchiveMinVersion = int(archive.Version)
	cfg.ArchiveMaxVersion = int(archive.Version) + 1
	cfg.Apply()

	_, err := archive.Read(bytes.NewReader(raw))
	assert.NoError(t, err)
}
