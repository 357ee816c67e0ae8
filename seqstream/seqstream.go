// Package seqstream implements the chunked streaming reader of spec.md
// §4.5: given an open handle and a plan of 1 or 2 byte regions, emit the
// requested bytes in CHUNK-sized pieces, substituting an in-band truncation
// marker the instant a short read or I/O error is observed — HTTP headers
// are already committed by the time streaming starts, so that marker is the
// only signal left for the client.
//
// Grounded on the teacher's readahead package: the same "read fixed-size
// pieces from a backing file, sequentially" shape, adapted from CAR-object
// buffering to region-bounded decompressed reads with per-chunk seeks.
package seqstream

import (
	"context"
	"io"

	"github.com/ebi-refget/refget-server/region"
)

// Chunk is the fixed I/O granularity of spec.md §4.5. httpapi does not use
// it as a compression threshold: the streamed sequence route is never
// gzip-compressed, whatever its length.
const Chunk = 128 * 1024

// TruncationMarker is written in place of the remaining bytes of a region
// the instant a short read or I/O error occurs.
const TruncationMarker = "\n\nIO error. Sequence truncated.\n"

// Reader is the subset of container.SeekableFile that Stream needs.
type Reader interface {
	Seek(uncompressedOffset int64) error
	Read(p []byte) (int, error)
}

// Locker lets Stream serialize each (seek, read) pair against concurrent
// users of the same underlying handle. filecache.Cache.Acquire's second
// return value satisfies this.
type Locker func(fn func() error) error

// noLock is used when the caller has already arranged exclusivity.
func noLock(fn func() error) error { return fn() }

// Stream writes the byte ranges named by plan, read through r, to w in
// Chunk-sized pieces. Regions are emitted in plan order. If ctx is
// cancelled between chunks, Stream stops silently (the client disconnected;
// no truncation marker is written, since nothing more will reach them).
//
// locker may be nil, meaning the caller already holds exclusive access to r.
func Stream(ctx context.Context, w io.Writer, r Reader, plan region.Plan, locker Locker) error {
	if locker == nil {
		locker = noLock
	}
	buf := make([]byte, Chunk)

	for _, reg := range plan.Regions {
		remaining := reg.Length
		offset := reg.Offset
		for remaining > 0 {
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			want := uint64(Chunk)
			if remaining < want {
				want = remaining
			}
			chunk := buf[:want]

			var n int
			lockErr := locker(func() error {
				if err := r.Seek(int64(offset)); err != nil {
					return err
				}
				// A single Read: a short read must surface as truncation
				// rather than be retried away.
				var readErr error
				n, readErr = r.Read(chunk)
				if readErr == io.EOF && n == len(chunk) {
					readErr = nil
				}
				return readErr
			})

			if lockErr != nil || uint64(n) < want {
				if n > 0 {
					if _, werr := w.Write(chunk[:n]); werr != nil {
						return werr
					}
				}
				_, werr := w.Write([]byte(TruncationMarker))
				return werr
			}

			if _, werr := w.Write(chunk); werr != nil {
				return werr
			}
			offset += want
			remaining -= want
		}
	}
	return nil
}
