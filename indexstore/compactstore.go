package indexstore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ebi-refget/refget-server/apierr"
)

// CompactStore is a single-file, read-only, sorted-table keyed store:
// grounded on compactindex36's Open/Lookup/binarySearch shape (same idea
// of a static, build-once index queried by binary search) but flattened
// from hash-bucketed 36-byte values to two plain sorted tables, since the
// key space here is already content-addressed (a digest is its own good
// sort key, no bucket-hash indirection needed at this store's scale).
//
// Layout (see SPEC_FULL.md §3 for the exact byte offsets):
//
//	header(64) | aliasTable(aliasCount * (32+48)) | recordTable(recordCount * (48+8+4)) | blob(blobLen)
const (
	magic      = "REFGTIX1"
	headerSize = 64

	md5KeyLen      = 32
	trunc512KeyLen = 48
	aliasValueLen  = trunc512KeyLen
	aliasStride    = md5KeyLen + aliasValueLen

	recordPtrOffLen = 8
	recordPtrLenLen = 4
	recordStride    = trunc512KeyLen + recordPtrOffLen + recordPtrLenLen
)

type header struct {
	AliasCount  uint64
	AliasOff    uint64
	RecordCount uint64
	RecordOff   uint64
	BlobOff     uint64
	BlobLen     uint64
}

type CompactStore struct {
	f   *os.File
	hdr header
}

// OpenCompactStore opens path read-only, no-create, matching spec.md §4.2's
// startup lifecycle (exiting on failure is the caller's responsibility:
// cmd/refget-server's runServe opens the store after loading config).
func OpenCompactStore(path string) (*CompactStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var buf [headerSize]byte
	if _, err := io.ReadFull(f, buf[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading index header: %w", err)
	}
	if string(buf[:8]) != magic {
		f.Close()
		return nil, fmt.Errorf("bad index magic")
	}
	hdr := header{
		AliasCount:  binary.LittleEndian.Uint64(buf[12:20]),
		AliasOff:    binary.LittleEndian.Uint64(buf[20:28]),
		RecordCount: binary.LittleEndian.Uint64(buf[28:36]),
		RecordOff:   binary.LittleEndian.Uint64(buf[36:44]),
		BlobOff:     binary.LittleEndian.Uint64(buf[44:52]),
		BlobLen:     binary.LittleEndian.Uint64(buf[52:60]),
	}
	return &CompactStore{f: f, hdr: hdr}, nil
}

func (s *CompactStore) Close() error { return s.f.Close() }

// Lookup implements Store.Lookup for both key classes, dispatching purely
// on key length since that's how the two tables are distinguished.
func (s *CompactStore) Lookup(key []byte) ([]byte, bool, error) {
	switch len(key) {
	case md5KeyLen:
		val, ok, err := s.lookupFixed(s.hdr.AliasOff, s.hdr.AliasCount, aliasStride, md5KeyLen, key)
		if err != nil || !ok {
			return nil, ok, err
		}
		return val, true, nil
	case trunc512KeyLen:
		entry, ok, err := s.lookupFixed(s.hdr.RecordOff, s.hdr.RecordCount, recordStride, trunc512KeyLen, key)
		if err != nil || !ok {
			return nil, ok, err
		}
		blobOff := binary.LittleEndian.Uint64(entry[0:8])
		blobLen := binary.LittleEndian.Uint32(entry[8:12])
		value := make([]byte, blobLen)
		if _, err := s.f.ReadAt(value, int64(s.hdr.BlobOff+blobOff)); err != nil {
			return nil, false, apierr.Internal("reading record blob: " + err.Error())
		}
		return value, true, nil
	default:
		return nil, false, nil
	}
}

// lookupFixed binary-searches a sorted fixed-stride table for key, returning
// the stride-keyLen trailing bytes (the value portion of the matching
// entry) on a hit.
func (s *CompactStore) lookupFixed(tableOff, count uint64, stride, keyLen int, key []byte) ([]byte, bool, error) {
	lo, hi := 0, int(count)
	buf := make([]byte, stride)
	for lo < hi {
		mid := (lo + hi) / 2
		if _, err := s.f.ReadAt(buf, int64(tableOff)+int64(mid)*int64(stride)); err != nil {
			return nil, false, apierr.Internal("reading index table: " + err.Error())
		}
		cmp := bytes.Compare(buf[:keyLen], key)
		switch {
		case cmp == 0:
			out := make([]byte, stride-keyLen)
			copy(out, buf[keyLen:])
			return out, true, nil
		case cmp < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return nil, false, nil
}

func (s *CompactStore) LookupRecord(digestHex string) (*Record, bool, error) {
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

// --- fixture / offline builder ---
//
// Building the store is out of this service's scope, but tests need a way
// to produce one, so a minimal builder lives here rather than in the
// serving path. cmd/refget-seekindex does not use it; that tool builds
// only container files.

// AliasEntry and RecordEntry are the raw inputs to BuildCompactStore.
type AliasEntry struct {
	MD5Hex      string
	Trunc512Hex string
}

type RecordEntry struct {
	Trunc512Hex string
	Record      Record
}

// BuildCompactStore writes a CompactStore file to w from unsorted entries,
// sorting each table by key as the binary-search contract requires.
func BuildCompactStore(w io.Writer, aliases []AliasEntry, records []RecordEntry) error {
	for _, a := range aliases {
		if len(a.MD5Hex) != md5KeyLen || len(a.Trunc512Hex) != trunc512KeyLen {
			return errors.New("alias entry has wrong key/value length")
		}
	}
	sort.Slice(aliases, func(i, j int) bool { return aliases[i].MD5Hex < aliases[j].MD5Hex })
	sort.Slice(records, func(i, j int) bool { return records[i].Trunc512Hex < records[j].Trunc512Hex })

	var blob bytes.Buffer
	recordPtrs := make([][]byte, len(records))
	for i, r := range records {
		if len(r.Trunc512Hex) != trunc512KeyLen {
			return errors.New("record entry has wrong key length")
		}
		data := SerializeRecord(r.Record)
		ptr := make([]byte, recordPtrOffLen+recordPtrLenLen)
		binary.LittleEndian.PutUint64(ptr[0:8], uint64(blob.Len()))
		binary.LittleEndian.PutUint32(ptr[8:12], uint32(len(data)))
		blob.Write(data)
		recordPtrs[i] = ptr
	}

	hdr := make([]byte, headerSize)
	copy(hdr[:8], magic)
	binary.LittleEndian.PutUint32(hdr[8:12], 1)
	binary.LittleEndian.PutUint64(hdr[12:20], uint64(len(aliases)))
	aliasOff := uint64(headerSize)
	binary.LittleEndian.PutUint64(hdr[20:28], aliasOff)
	binary.LittleEndian.PutUint64(hdr[28:36], uint64(len(records)))
	recordOff := aliasOff + uint64(len(aliases))*aliasStride
	binary.LittleEndian.PutUint64(hdr[36:44], recordOff)
	blobOff := recordOff + uint64(len(records))*recordStride
	binary.LittleEndian.PutUint64(hdr[44:52], blobOff)
	binary.LittleEndian.PutUint64(hdr[52:60], uint64(blob.Len()))

	if _, err := w.Write(hdr); err != nil {
		return err
	}
	for _, a := range aliases {
		if _, err := w.Write([]byte(a.MD5Hex)); err != nil {
			return err
		}
		if _, err := w.Write([]byte(a.Trunc512Hex)); err != nil {
			return err
		}
	}
	for i, r := range records {
		if _, err := w.Write([]byte(r.Trunc512Hex)); err != nil {
			return err
		}
		if _, err := w.Write(recordPtrs[i]); err != nil {
			return err
		}
	}
	_, err := w.Write(blob.Bytes())
	return err
}
