package httpapi

import "github.com/valyala/fasthttp"

// serviceInfo mirrors the original webapp's RefgetServiceInfo model
// verbatim: a GA4GH service-info document describing this deployment's
// Refget capabilities.
type serviceInfo struct {
	Refget       refgetInfo  `json:"refget"`
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Type         serviceType `json:"type"`
	Organization orgInfo     `json:"organization"`
	Version      string      `json:"version"`
}

type refgetInfo struct {
	CircularSupported bool     `json:"circular_supported"`
	Algorithms        []string `json:"algorithms"`
}

type serviceType struct {
	Group    string `json:"group"`
	Artifact string `json:"artifact"`
	Version  string `json:"version"`
}

type orgInfo struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (s *Server) handleServiceInfo(ctx *fasthttp.RequestCtx) {
	method := string(ctx.Method())
	if method != fasthttp.MethodGet && method != fasthttp.MethodHead {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		return
	}

	info := serviceInfo{
		Refget: refgetInfo{
			CircularSupported: true,
			Algorithms:        []string{"md5", "ga4gh", "trunc512"},
		},
		ID:   "refget.infra.ebi.ac.uk",
		Name: "Refget server",
		Type: serviceType{
			Group:    "org.ga4gh",
			Artifact: "refget",
			Version:  "2.0.0",
		},
		Organization: orgInfo{
			Name: "EMBL-EBI",
			URL:  "https://ebi.ac.uk",
		},
		Version: s.Version,
	}

	ctx.SetContentType("application/json")
	if method == fasthttp.MethodHead {
		ctx.SetStatusCode(fasthttp.StatusOK)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	_ = json.NewEncoder(ctx).Encode(info)
}
