// Package indexstore implements the read-only keyed store of spec.md §6.1:
// digest -> bytes, where an MD5 key's value is a trunc512 alias and a
// trunc512 key's value is a serialized IndexRecord.
//
// Building the store is out of scope (the "index builder" is an external
// collaborator per spec.md §1); the serving path only opens and queries
// one. BuildCompactStore exists solely to produce fixtures for tests.
package indexstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ebi-refget/refget-server/apierr"
)

// Record is the parsed form of a trunc512 value: path, seq_start,
// seq_length, name, md5, exactly the 5 tab-separated fields of spec.md §3.
type Record struct {
	Path      string
	SeqStart  uint64
	SeqLength uint64
	Name      string
	MD5       string
}

// Store is the contract C1/C6 consume. Lookup is the raw keyed read;
// LookupRecord adds parsing on top, for trunc512 keys specifically.
type Store interface {
	Lookup(key []byte) ([]byte, bool, error)
	LookupRecord(digestHex string) (*Record, bool, error)
	Close() error
}

// ParseRecord splits a stored value into its 5 tab-separated fields,
// returning apierr.Internal on any malformed field — the store promising a
// 48-hex key exists but holding unparseable bytes is corruption, not a
// missing record.
func ParseRecord(value []byte) (*Record, error) {
	fields := strings.Split(string(value), "\t")
	if len(fields) != 5 {
		return nil, apierr.Internal(fmt.Sprintf("invalid record: expected 5 fields, got %d", len(fields)))
	}
	seqStart, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return nil, apierr.Internal("invalid record: bad seq_start")
	}
	seqLength, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return nil, apierr.Internal("invalid record: bad seq_length")
	}
	return &Record{
		Path:      fields[0],
		SeqStart:  seqStart,
		SeqLength: seqLength,
		Name:      fields[3],
		MD5:       fields[4],
	}, nil
}

// SerializeRecord is the inverse of ParseRecord, used by MemStore and test
// fixture builders.
func SerializeRecord(r Record) []byte {
	return []byte(fmt.Sprintf("%s\t%d\t%d\t%s\t%s", r.Path, r.SeqStart, r.SeqLength, r.Name, r.MD5))
}
