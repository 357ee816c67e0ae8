// Package digest normalizes any of the three Refget identifier forms
// (MD5, trunc512 hex, GA4GH base64) to a canonical 48-hex trunc512 digest.
//
// It never touches storage except for the single MD5-alias hop rule 2/5
// requires; everything else is string parsing.
package digest

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// AliasLookup resolves a 32-hex MD5 key to its trunc512 alias. It mirrors
// indexstore.Store.Lookup but is declared locally so this package has no
// import-time dependency on indexstore.
type AliasLookup func(md5Hex string) (trunc512Hex string, ok bool, err error)

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Resolve implements the 7-rule algorithm of the identifier normalizer.
// ok is false when the identifier is syntactically unrecognizable or an
// MD5 alias does not resolve; err is non-nil only on a lookup failure.
func Resolve(lookup AliasLookup, qid string) (canonical string, ok bool, err error) {
	// Rule 1: bare 48-hex is asserted as trunc512 without a store round trip.
	if len(qid) == 48 && isHex(qid) {
		return strings.ToLower(qid), true, nil
	}

	// Rule 2: bare 32-hex is an MD5 alias lookup.
	if len(qid) == 32 && isHex(qid) {
		return resolveMD5(lookup, qid)
	}

	// Rule 3: namespace:rest, defaulting to ga4gh with no colon.
	namespace, rest := "ga4gh", qid
	if i := strings.IndexByte(qid, ':'); i >= 0 {
		namespace, rest = qid[:i], qid[i+1:]
	}
	namespace = strings.ToLower(namespace)

	switch namespace {
	case "trunc512":
		// Rule 4.
		if len(rest) == 48 && isHex(rest) {
			return strings.ToLower(rest), true, nil
		}
		return "", false, nil
	case "md5":
		// Rule 5.
		if len(rest) == 32 && isHex(rest) {
			return resolveMD5(lookup, rest)
		}
		return "", false, nil
	case "ga4gh":
		// Rule 6.
		return resolveGA4GH(rest)
	default:
		// Rule 7.
		return "", false, nil
	}
}

func resolveMD5(lookup AliasLookup, md5Hex string) (string, bool, error) {
	trunc512Hex, found, err := lookup(strings.ToLower(md5Hex))
	if err != nil {
		return "", false, err
	}
	if !found {
		return "", false, nil
	}
	return trunc512Hex, true, nil
}

func resolveGA4GH(rest string) (string, bool, error) {
	b64 := strings.TrimPrefix(rest, "SQ.")
	if len(b64) != 32 && len(b64) != 35 {
		return "", false, nil
	}
	raw, err := decodeBase64URL(b64)
	if err != nil {
		// Per spec: a decode failure is reported as "not found", not 400.
		return "", false, nil
	}
	return hex.EncodeToString(raw), true, nil
}

// decodeBase64URL accepts both padded and unpadded URL-safe base64, since
// a 32-character GA4GH short digest has no padding but some inputs may
// still carry '=' characters.
func decodeBase64URL(s string) ([]byte, error) {
	enc := base64.RawURLEncoding
	if strings.ContainsRune(s, '=') {
		enc = base64.URLEncoding
	}
	return enc.DecodeString(s)
}

// GA4GHShort returns the 32-character URL-safe base64 encoding of a
// 48-hex trunc512 digest's 24 raw bytes, used by the metadata endpoint to
// compute the "ga4gh" field as "SQ." + this value.
func GA4GHShort(trunc512Hex string) (string, error) {
	raw, err := hex.DecodeString(trunc512Hex)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
