package httpapi

import (
	"bufio"
	"strconv"

	"github.com/valyala/fasthttp"

	"github.com/ebi-refget/refget-server/apierr"
	"github.com/ebi-refget/refget-server/region"
	"github.com/ebi-refget/refget-server/seqstream"
)

const sequenceContentType = "text/vnd.ga4gh.refget.v2.0.0+plain; charset=us-ascii"

func (s *Server) handleSequence(ctx *fasthttp.RequestCtx, qid string) {
	method := string(ctx.Method())
	if method != fasthttp.MethodGet && method != fasthttp.MethodHead && method != fasthttp.MethodOptions {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		return
	}

	in, err := parseRegionInput(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}

	_, rec, ok := s.resolve(ctx, qid)
	if !ok {
		return
	}

	plan, err := region.Compute(rec.SeqStart, rec.SeqLength, in)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.SetContentType(sequenceContentType)

	if method == fasthttp.MethodOptions {
		ctx.Response.Header.Set("Allow", "OPTIONS, GET, HEAD")
		ctx.SetStatusCode(fasthttp.StatusOK)
		return
	}
	if method == fasthttp.MethodHead {
		ctx.Response.Header.SetContentLength(int(plan.TotalLength))
		ctx.SetStatusCode(fasthttp.StatusOK)
		return
	}

	if plan.TotalLength == 0 {
		ctx.SetStatusCode(fasthttp.StatusOK)
		return
	}

	handle, withLock, err := s.Cache.Acquire(rec.Path)
	if err != nil {
		writeError(ctx, err)
		return
	}
	reader, ok := handle.(seqstream.Reader)
	if !ok {
		writeError(ctx, apierr.Internalf("cached handle does not implement seqstream.Reader"))
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		_ = seqstream.Stream(ctx, w, reader, plan, withLock)
		w.Flush()
	})
}

// parseRegionInput reads the mutually-exclusive start/end query parameters
// or Range header into a region.Input, per spec.md §4.3/§4.6.
func parseRegionInput(ctx *fasthttp.RequestCtx) (region.Input, error) {
	rangeHeader := string(ctx.Request.Header.Peek("Range"))
	hasStart := ctx.QueryArgs().Has("start")
	hasEnd := ctx.QueryArgs().Has("end")

	if rangeHeader != "" {
		if hasStart || hasEnd {
			return region.Input{}, apierr.BadRequest("Range header and start/end parameters are mutually exclusive")
		}
		return region.ParseRangeHeader(rangeHeader)
	}

	var in region.Input
	if hasStart {
		v, err := parseUintQuery(ctx, "start")
		if err != nil {
			return region.Input{}, err
		}
		in.Start = &v
	}
	if hasEnd {
		v, err := parseUintQuery(ctx, "end")
		if err != nil {
			return region.Input{}, err
		}
		in.End = &v
	}
	return in, nil
}

func parseUintQuery(ctx *fasthttp.RequestCtx, key string) (uint64, error) {
	raw := string(ctx.QueryArgs().Peek(key))
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apierr.BadRequest("invalid '" + key + "' parameter")
	}
	return v, nil
}
