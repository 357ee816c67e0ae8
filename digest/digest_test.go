package digest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeLookup(table map[string]string) AliasLookup {
	return func(md5Hex string) (string, bool, error) {
		v, ok := table[md5Hex]
		return v, ok, nil
	}
}

func TestResolveTrunc512Bare(t *testing.T) {
	id := "3638c7b68436818772d9156401904a51106257bc69fbc652"[:48]
	got, ok, err := Resolve(fakeLookup(nil), id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, id, got)
}

func TestResolveMD5(t *testing.T) {
	md5 := "482a2b04485ec8c4b5f4eaba2c2002da"
	trunc512 := "3638c7b68436818772d9156401904a51106257bc69fbc652"
	lookup := fakeLookup(map[string]string{md5: trunc512})

	got, ok, err := Resolve(lookup, md5)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, trunc512, got)

	got, ok, err = Resolve(lookup, "md5:"+md5)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, trunc512, got)
}

func TestResolveMD5Unknown(t *testing.T) {
	_, ok, err := Resolve(fakeLookup(nil), "00000000000000000000000000000000"[:32])
	require.NoError(t, err)
	require.False(t, ok)
}

func TestResolveGA4GH(t *testing.T) {
	trunc512 := "3638c7b68436818772d9156401904a51106257bc69fbc652"
	short, err := GA4GHShort(trunc512)
	require.NoError(t, err)

	for _, qid := range []string{short, "SQ." + short, "ga4gh:" + short} {
		got, ok, err := Resolve(fakeLookup(nil), qid)
		require.NoErrorf(t, err, "qid=%q", qid)
		require.Truef(t, ok, "qid=%q", qid)
		require.Equalf(t, trunc512, got, "qid=%q", qid)
	}
}

func TestResolveGA4GHBadBase64(t *testing.T) {
	_, ok, err := Resolve(fakeLookup(nil), "!!!not-base64!!!!!!!!!!!!!!!!!!!")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestResolveUnrecognized(t *testing.T) {
	for _, qid := range []string{"sugar", "012345678901234567890123456789123"} {
		_, ok, err := Resolve(fakeLookup(nil), qid)
		require.NoErrorf(t, err, "qid=%q", qid)
		require.Falsef(t, ok, "qid=%q", qid)
	}
}
