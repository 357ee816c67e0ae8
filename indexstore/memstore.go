package indexstore

import (
	"github.com/tidwall/hashmap"
)

// MemStore is the in-memory substitute spec.md §6.1 explicitly sanctions
// ("a conforming test harness may substitute an in-memory map"), backed by
// tidwall/hashmap instead of a bare Go map for the same reason the teacher
// reaches for it elsewhere in its own lookup-heavy code paths: an
// open-addressed map avoids the bucket-pointer overhead of the builtin map
// for read-mostly workloads of this shape.
type MemStore struct {
	m *hashmap.Map[string, []byte]
}

// NewMemStore returns an empty store. Tests populate it with Put or
// PutRecord before handing it to a Store consumer; writes are not blocked
// afterwards.
func NewMemStore() *MemStore {
	return &MemStore{m: hashmap.New[string, []byte](64)}
}

// Put installs a raw key/value pair, exactly the §6.1 contract: callers are
// responsible for using a 32-hex MD5 key with a 48-byte trunc512 value, or
// a 48-hex trunc512 key with a serialized record value.
func (s *MemStore) Put(key []byte, value []byte) {
	s.m.Set(string(key), value)
}

// PutRecord is a convenience wrapper storing a Record under its trunc512
// digest and, if md5 is non-empty, an MD5 -> trunc512 alias entry too.
func (s *MemStore) PutRecord(trunc512Hex string, r Record) {
	s.Put([]byte(trunc512Hex), SerializeRecord(r))
	if r.MD5 != "" {
		s.Put([]byte(r.MD5), []byte(trunc512Hex))
	}
}

func (s *MemStore) Lookup(key []byte) ([]byte, bool, error) {
	v, ok := s.m.Get(string(key))
	return v, ok, nil
}

func (s *MemStore) LookupRecord(digestHex string) (*Record, bool, error) {
	v, ok, err := s.Lookup([]byte(digestHex))
	if err != nil || !ok {
		return nil, ok, err
	}
	rec, err := ParseRecord(v)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func (s *MemStore) Close() error { return nil }
