// Package httpapi implements the HTTP surface of spec.md §4.6: the route
// table, content negotiation, error-to-status mapping, and the streaming
// sequence response.
//
// Grounded on the teacher's own fasthttp wiring (http-handler.go,
// multiepoch.go, cmd-rpc-server-car.go): manual path dispatch, jsoniter for
// JSON bodies, klog for request logging, fasthttp.CompressHandler for the
// small JSON routes.
package httpapi

import (
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"k8s.io/klog/v2"

	"github.com/ebi-refget/refget-server/config"
	"github.com/ebi-refget/refget-server/container"
	"github.com/ebi-refget/refget-server/digest"
	"github.com/ebi-refget/refget-server/filecache"
	"github.com/ebi-refget/refget-server/indexstore"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server bundles the dependencies every route needs: the index store for
// digest/record lookups, the bounded file-handle cache for container reads,
// and the resolved configuration.
type Server struct {
	Store   indexstore.Store
	Cache   *filecache.Cache
	Config  *config.Config
	Version string
}

// NewServer wires a Server around an already-open store, constructing the
// filecache.Cache itself with an Opener that resolves a record's Path into
// the on-disk container file beneath Config.SeqPath — mirroring
// SEQPATH/<path>/seqs/seq.txt.zst from the original webapp.
func NewServer(store indexstore.Store, cfg *config.Config, version string) *Server {
	opener := func(recordPath string) (filecache.Handle, error) {
		full := filepath.Join(cfg.SeqPath, recordPath, "seqs", "seq.txt.zst")
		return container.Open(full)
	}
	return NewServerWithOpener(store, cfg, version, opener)
}

// NewServerWithOpener is NewServer with the container-file Opener injected
// directly, used by tests to back the sequence route with an in-memory
// fake instead of real zstd fixtures.
func NewServerWithOpener(store indexstore.Store, cfg *config.Config, version string, opener filecache.Opener) *Server {
	return &Server{
		Store:   store,
		Cache:   filecache.New(cfg.MaxOpenFileHandles, opener),
		Config:  cfg,
		Version: version,
	}
}

// aliasLookup adapts Store.Lookup to digest.AliasLookup.
func (s *Server) aliasLookup(md5Hex string) (string, bool, error) {
	val, ok, err := s.Store.Lookup([]byte(md5Hex))
	if err != nil || !ok {
		return "", ok, err
	}
	return string(val), true, nil
}

// Handler returns the root fasthttp handler: CORS, then request logging,
// then route dispatch. Mirrors multiepoch.go's habit of composing handler
// middleware by wrapping the innermost func.
//
// fasthttp.CompressHandler buffers the full response to gzip it, which
// would defeat the point of SetBodyStreamWriter for multi-gigabyte
// sequences, so it wraps only the small, bounded-size routes (landing page,
// favicon, service-info, metadata) — all always under 2*seqstream.Chunk —
// and the sequence route is dispatched around it, uncompressed.
func (s *Server) Handler() fasthttp.RequestHandler {
	small := fasthttp.CompressHandler(s.routeSmall)
	h := func(ctx *fasthttp.RequestCtx) {
		if isSequenceRoute(string(ctx.Path())) {
			s.routeSequence(ctx)
			return
		}
		small(ctx)
	}
	h = withLogging(h)
	h = withCORS(h)
	return h
}

// withCORS sets the open CORS headers spec.md §4.6 requires (no
// credentials) and always delegates to next — spec.md defines OPTIONS
// semantics itself for /sequence/{qid}, so this middleware never
// short-circuits the request.
func withCORS(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
		ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		ctx.Response.Header.Set("Access-Control-Allow-Headers", "Range, Content-Type")
		next(ctx)
	}
}

func withLogging(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		startedAt := time.Now()
		next(ctx)
		klog.V(2).Infof("%s %s -> %d (%s)", ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(startedAt))
	}
}

// isSequenceRoute reports whether path is the streaming /sequence/{qid}
// route specifically (not service-info or metadata, which are small JSON).
func isSequenceRoute(path string) bool {
	return len(path) > len("/sequence/") && path != "/sequence/service-info" && !hasSuffixMetadata(path)
}

func (s *Server) routeSequence(ctx *fasthttp.RequestCtx) {
	s.handleSequence(ctx, qidFromPath(string(ctx.Path()), false))
}

func (s *Server) routeSmall(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	switch {
	case path == "/":
		s.handleLanding(ctx)
	case path == "/favicon.ico":
		s.handleFavicon(ctx)
	case path == "/sequence/service-info":
		s.handleServiceInfo(ctx)
	case len(path) > len("/sequence/") && hasSuffixMetadata(path):
		s.handleMetadata(ctx, qidFromPath(path, true))
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func hasSuffixMetadata(path string) bool {
	const suffix = "/metadata"
	return len(path) > len(suffix) && path[len(path)-len(suffix):] == suffix
}

func qidFromPath(path string, metadata bool) string {
	rest := path[len("/sequence/"):]
	if metadata {
		rest = rest[:len(rest)-len("/metadata")]
	}
	return rest
}

// resolve looks up qid and returns its canonical trunc512 digest and
// parsed record. On failure it writes the error response and returns
// ok=false: 404 when the identifier or its record is not found, otherwise
// the status writeError maps the lookup error to (500 for store faults).
func (s *Server) resolve(ctx *fasthttp.RequestCtx, qid string) (canonical string, rec *indexstore.Record, ok bool) {
	canonical, found, err := digest.Resolve(s.aliasLookup, qid)
	if err != nil {
		writeError(ctx, err)
		return "", nil, false
	}
	if !found {
		writeError(ctx, notFoundf("sequence ID not found"))
		return "", nil, false
	}
	rec, found, err = s.Store.LookupRecord(canonical)
	if err != nil {
		writeError(ctx, err)
		return "", nil, false
	}
	if !found {
		writeError(ctx, notFoundf("sequence ID not found"))
		return "", nil, false
	}
	return canonical, rec, true
}
