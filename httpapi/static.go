package httpapi

import (
	"embed"

	"github.com/valyala/fasthttp"
)

//go:embed static/landing.html
var staticFS embed.FS

var landingPage = mustReadStatic("static/landing.html")

func mustReadStatic(name string) []byte {
	b, err := staticFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return b
}

func (s *Server) handleLanding(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(landingPage)
}

// handleFavicon returns 204: the retrieval pack carried no icon asset to
// adapt, and the landing page is the only branded surface that matters.
func (s *Server) handleFavicon(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}
