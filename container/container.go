// Package container implements the "seekable compressed random-access
// file" external capability of spec.md §1: open(path), seek(offset),
// read(n), close(), backed by a zstd stream whose frames were compressed
// independently, plus a side seek-table file recording each frame's
// (compressed offset, compressed size, uncompressed size).
//
// Building the seek-table remains out of the request-serving path (the
// "index builder" non-goal extends to this side file too); a minimal
// builder, Build, lives in this package and is driven by
// cmd/refget-seekindex for generating fixtures and converting plain
// sequence files into this layout.
package container

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/klauspost/compress/zstd"
)

// SeekableFile is the external capability contract: seek to an
// uncompressed absolute offset, then read sequentially from there.
type SeekableFile interface {
	Seek(uncompressedOffset int64) error
	Read(p []byte) (int, error)
	Close() error
}

// frameEntry describes one independently-compressed zstd frame.
type frameEntry struct {
	CompressedOffset   uint64
	CompressedSize     uint32
	UncompressedOffset uint64
	UncompressedSize   uint32
}

const seekTableMagic = "RGZSEEK1"

// ZstdFile is the concrete SeekableFile grounded on klauspost/compress/zstd
// (the teacher's own zstd library, via cmd-dump-car.go's decoder.DecodeAll
// pattern), decoding one independent frame at a time so a seek never
// requires replaying the stream from position zero.
type ZstdFile struct {
	data    *os.File
	frames  []frameEntry
	decoder *zstd.Decoder

	pos      int64  // current logical uncompressed read position
	curFrame int    // index into frames of the currently-decoded frame, or -1
	curPlain []byte
}

// Open opens dataPath and its companion dataPath+".seekidx" side file.
func Open(dataPath string) (*ZstdFile, error) {
	data, err := os.Open(dataPath)
	if err != nil {
		return nil, err
	}
	frames, err := readSeekTable(dataPath + ".seekidx")
	if err != nil {
		data.Close()
		return nil, fmt.Errorf("reading seek table: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		data.Close()
		return nil, err
	}
	return &ZstdFile{data: data, frames: frames, decoder: dec, curFrame: -1}, nil
}

func readSeekTable(path string) ([]frameEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var hdr [12]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return nil, err
	}
	if string(hdr[:8]) != seekTableMagic {
		return nil, fmt.Errorf("bad seek-table magic")
	}
	count := binary.LittleEndian.Uint32(hdr[8:12])

	frames := make([]frameEntry, count)
	var uoff uint64
	buf := make([]byte, 16)
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, err
		}
		frames[i] = frameEntry{
			CompressedOffset:   binary.LittleEndian.Uint64(buf[0:8]),
			CompressedSize:     binary.LittleEndian.Uint32(buf[8:12]),
			UncompressedOffset: uoff,
			UncompressedSize:   binary.LittleEndian.Uint32(buf[12:16]),
		}
		uoff += uint64(frames[i].UncompressedSize)
	}
	return frames, nil
}

// frameForOffset returns the index of the frame containing uncompressed
// offset off, via binary search over the (sorted, contiguous) frame table.
func (z *ZstdFile) frameForOffset(off uint64) (int, error) {
	i := sort.Search(len(z.frames), func(i int) bool {
		f := z.frames[i]
		return f.UncompressedOffset+uint64(f.UncompressedSize) > off
	})
	if i >= len(z.frames) {
		return 0, io.EOF
	}
	return i, nil
}

func (z *ZstdFile) Seek(uncompressedOffset int64) error {
	if uncompressedOffset < 0 {
		return fmt.Errorf("negative offset")
	}
	z.pos = uncompressedOffset
	z.curFrame = -1
	z.curPlain = nil
	return nil
}

// Read decompresses as many frames as needed to satisfy p, advancing pos.
// Like the underlying OS file semantics, it may return fewer bytes than
// len(p) only at EOF or on error — seqstream treats a short read as the
// "I/O error" case per spec.md §4.5.
func (z *ZstdFile) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		idx, err := z.frameForOffset(uint64(z.pos))
		if err != nil {
			if total > 0 {
				return total, nil
			}
			return 0, err
		}
		if idx != z.curFrame {
			if err := z.decodeFrame(idx); err != nil {
				return total, err
			}
		}
		f := z.frames[idx]
		withinFrame := uint64(z.pos) - f.UncompressedOffset
		if withinFrame >= uint64(len(z.curPlain)) {
			return total, io.ErrUnexpectedEOF
		}
		n := copy(p[total:], z.curPlain[withinFrame:])
		total += n
		z.pos += int64(n)
	}
	return total, nil
}

func (z *ZstdFile) decodeFrame(idx int) error {
	f := z.frames[idx]
	compressed := make([]byte, f.CompressedSize)
	if _, err := z.data.ReadAt(compressed, int64(f.CompressedOffset)); err != nil {
		return fmt.Errorf("reading compressed frame: %w", err)
	}
	plain, err := z.decoder.DecodeAll(compressed, make([]byte, 0, f.UncompressedSize))
	if err != nil {
		return fmt.Errorf("decoding frame: %w", err)
	}
	z.curFrame = idx
	z.curPlain = plain
	return nil
}

func (z *ZstdFile) Close() error {
	z.decoder.Close()
	return z.data.Close()
}
