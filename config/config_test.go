package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupTestDirs(t *testing.T) (indexPath, seqDir string) {
	t.Helper()
	dir := t.TempDir()
	indexPath = filepath.Join(dir, "indexdb.bin")
	require.NoError(t, os.WriteFile(indexPath, []byte("x"), 0o644))
	seqDir = filepath.Join(dir, "seqs")
	require.NoError(t, os.Mkdir(seqDir, 0o755))
	return indexPath, seqDir
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"INDEXDBPATH", "SEQPATH", "MOUNTPATH", "DEBUG", "LOGLEVEL", "MAX_OPEN_FILEHANDLES", "ALIASES_ENABLED"} {
		os.Unsetenv(k)
	}
}

func TestLoadMissingIndexDBPath(t *testing.T) {
	clearEnv(t)
	_, err := Load("")
	require.Error(t, err)
}

func TestLoadMissingSeqPath(t *testing.T) {
	clearEnv(t)
	idx, _ := setupTestDirs(t)
	os.Setenv("INDEXDBPATH", idx)
	defer clearEnv(t)
	_, err := Load("")
	require.Error(t, err)
}

func TestLoadSucceedsWithValidPaths(t *testing.T) {
	clearEnv(t)
	idx, seq := setupTestDirs(t)
	os.Setenv("INDEXDBPATH", idx)
	os.Setenv("SEQPATH", seq)
	defer clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, defaultMountPath, cfg.MountPath)
	require.Greater(t, cfg.MaxOpenFileHandles, 0)
	require.Equal(t, AliasesDisabled, cfg.Aliases)
}

func TestLoadMaxOpenFileHandlesOverride(t *testing.T) {
	clearEnv(t)
	idx, seq := setupTestDirs(t)
	os.Setenv("INDEXDBPATH", idx)
	os.Setenv("SEQPATH", seq)
	os.Setenv("MAX_OPEN_FILEHANDLES", "42")
	defer clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 42, cfg.MaxOpenFileHandles)
}

func TestLoadAliasesEnabledFlag(t *testing.T) {
	clearEnv(t)
	idx, seq := setupTestDirs(t)
	os.Setenv("INDEXDBPATH", idx)
	os.Setenv("SEQPATH", seq)
	os.Setenv("ALIASES_ENABLED", "true")
	defer clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, AliasesEnabled, cfg.Aliases)
}
