package indexstore

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompactStoreRoundTrip(t *testing.T) {
	md5 := "482a2b04485ec8c4b5f4eaba2c2002da"
	trunc512 := "3638c7b68436818772d9156401904a51106257bc69fbc652"

	var buf bytes.Buffer
	err := BuildCompactStore(&buf,
		[]AliasEntry{{MD5Hex: md5, Trunc512Hex: trunc512}},
		[]RecordEntry{{Trunc512Hex: trunc512, Record: Record{
			Path: "genome1", SeqStart: 0, SeqLength: 4641652, Name: "chr1", MD5: md5,
		}}},
	)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "indexdb.bin")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	store, err := OpenCompactStore(path)
	require.NoError(t, err)
	defer store.Close()

	aliasVal, ok, err := store.Lookup([]byte(md5))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, trunc512, string(aliasVal))

	rec, ok, err := store.LookupRecord(trunc512)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "genome1", rec.Path)
	require.Equal(t, uint64(4641652), rec.SeqLength)
	require.Equal(t, md5, rec.MD5)

	_, ok, err = store.Lookup([]byte(strings.Repeat("0", 48)))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCompactStoreMultipleEntriesSorted(t *testing.T) {
	keys := []string{
		strings.Repeat("f", 48),
		strings.Repeat("1", 48),
		strings.Repeat("5", 48),
	}
	var records []RecordEntry
	for i, k := range keys {
		records = append(records, RecordEntry{
			Trunc512Hex: k,
			Record:      Record{Path: "g", SeqStart: uint64(i), SeqLength: 10, Name: "n", MD5: strings.Repeat("0", 32)},
		})
	}
	var buf bytes.Buffer
	require.NoError(t, BuildCompactStore(&buf, nil, records))
	dir := t.TempDir()
	path := filepath.Join(dir, "idx.bin")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	store, err := OpenCompactStore(path)
	require.NoError(t, err)
	defer store.Close()

	for i, k := range keys {
		rec, ok, err := store.LookupRecord(k)
		require.NoErrorf(t, err, "key=%q", k)
		require.Truef(t, ok, "key=%q", k)
		require.Equalf(t, uint64(i), rec.SeqStart, "key=%q", k)
	}
}
