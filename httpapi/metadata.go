package httpapi

import (
	"github.com/valyala/fasthttp"

	"github.com/ebi-refget/refget-server/config"
	"github.com/ebi-refget/refget-server/digest"
	"github.com/ebi-refget/refget-server/indexstore"
)

// metadataResponse mirrors the original webapp's Metadata/Metadata1 models:
// a single nested "metadata" object.
type metadataResponse struct {
	Metadata metadataBody `json:"metadata"`
}

type metadataBody struct {
	ID       string      `json:"id"`
	MD5      string      `json:"md5"`
	Trunc512 string      `json:"trunc512"`
	GA4GH    string      `json:"ga4gh"`
	Length   uint64      `json:"length"`
	Aliases  []aliasBody `json:"aliases"`
}

type aliasBody struct {
	Alias           string `json:"alias"`
	NamingAuthority string `json:"naming_authority"`
}

// aliasesFor returns the empty slice unless aliases are configured on,
// matching spec.md §9's "aliases default to an empty array" decision.
func aliasesFor(cfg *config.Config, rec *indexstore.Record) []aliasBody {
	if cfg.Aliases != config.AliasesEnabled || rec.Name == "" {
		return []aliasBody{}
	}
	return []aliasBody{{Alias: rec.Name, NamingAuthority: cfg.AliasNamingAuthority}}
}

func (s *Server) handleMetadata(ctx *fasthttp.RequestCtx, qid string) {
	method := string(ctx.Method())
	if method != fasthttp.MethodGet && method != fasthttp.MethodHead {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		return
	}

	canonical, rec, ok := s.resolve(ctx, qid)
	if !ok {
		return
	}

	ga4gh, err := digest.GA4GHShort(canonical)
	if err != nil {
		writeError(ctx, err)
		return
	}

	body := metadataResponse{Metadata: metadataBody{
		ID:       qid,
		MD5:      rec.MD5,
		Trunc512: canonical,
		GA4GH:    "SQ." + ga4gh,
		Length:   rec.SeqLength,
		Aliases:  aliasesFor(s.Config, rec),
	}}

	ctx.SetContentType("application/json")
	if method == fasthttp.MethodHead {
		ctx.SetStatusCode(fasthttp.StatusOK)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	_ = json.NewEncoder(ctx).Encode(body)
}
