package container

import (
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zstd"
)

// DefaultFrameSize is the uncompressed size of each independent zstd frame
// when building a seekable container, chosen to comfortably exceed
// seqstream.ChunkSize so most streamed chunks touch a single frame.
const DefaultFrameSize = 1 << 20 // 1 MiB

// Build compresses plain into a sequence of independently-framed zstd
// blocks written to data, and writes the matching seek-table to seekIdx.
// This is the offline counterpart of ZstdFile.Open/Read, used only by
// cmd/refget-seekindex and tests — never by the request-serving path.
func Build(data io.Writer, seekIdx io.Writer, plain []byte, frameSize int) error {
	if frameSize <= 0 {
		frameSize = DefaultFrameSize
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return err
	}
	defer enc.Close()

	type entry struct {
		compressedOffset uint64
		compressedSize   uint32
		uncompressedSize uint32
	}
	var entries []entry
	var compressedOffset uint64

	for off := 0; off < len(plain); off += frameSize {
		end := off + frameSize
		if end > len(plain) {
			end = len(plain)
		}
		compressed := enc.EncodeAll(plain[off:end], nil)
		if _, err := data.Write(compressed); err != nil {
			return err
		}
		entries = append(entries, entry{
			compressedOffset: compressedOffset,
			compressedSize:   uint32(len(compressed)),
			uncompressedSize: uint32(end - off),
		})
		compressedOffset += uint64(len(compressed))
	}

	hdr := make([]byte, 12)
	copy(hdr[:8], seekTableMagic)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(entries)))
	if _, err := seekIdx.Write(hdr); err != nil {
		return err
	}
	buf := make([]byte, 16)
	for _, e := range entries {
		binary.LittleEndian.PutUint64(buf[0:8], e.compressedOffset)
		binary.LittleEndian.PutUint32(buf[8:12], e.compressedSize)
		binary.LittleEndian.PutUint32(buf[12:16], e.uncompressedSize)
		if _, err := seekIdx.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
