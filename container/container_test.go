package container

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildFixture(t *testing.T, plain []byte, frameSize int) string {
	t.Helper()
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "seq.zst")
	seekPath := dataPath + ".seekidx"

	dataFile, err := os.Create(dataPath)
	require.NoError(t, err)
	seekFile, err := os.Create(seekPath)
	require.NoError(t, err)
	require.NoError(t, Build(dataFile, seekFile, plain, frameSize))
	dataFile.Close()
	seekFile.Close()
	return dataPath
}

func TestZstdFileSequentialRead(t *testing.T) {
	plain := bytes.Repeat([]byte("ACGT"), 1000) // 4000 bytes
	path := buildFixture(t, plain, 777)         // force multiple frames

	zf, err := Open(path)
	require.NoError(t, err)
	defer zf.Close()

	got := make([]byte, len(plain))
	require.NoError(t, zf.Seek(0))
	_, err = io.ReadFull(zf, got)
	require.NoError(t, err)
	require.True(t, bytes.Equal(got, plain))
}

func TestZstdFileSeekMidFrame(t *testing.T) {
	plain := bytes.Repeat([]byte("ACGT"), 1000)
	path := buildFixture(t, plain, 777)

	zf, err := Open(path)
	require.NoError(t, err)
	defer zf.Close()

	require.NoError(t, zf.Seek(1500))
	got := make([]byte, 40)
	_, err = io.ReadFull(zf, got)
	require.NoError(t, err)
	require.Equal(t, plain[1500:1540], got)
}

func TestZstdFileReadAcrossFrameBoundary(t *testing.T) {
	plain := bytes.Repeat([]byte("ACGT"), 1000)
	path := buildFixture(t, plain, 777)

	zf, err := Open(path)
	require.NoError(t, err)
	defer zf.Close()

	require.NoError(t, zf.Seek(770))
	got := make([]byte, 20) // spans the 777-byte frame boundary
	_, err = io.ReadFull(zf, got)
	require.NoError(t, err)
	require.Equal(t, plain[770:790], got)
}
