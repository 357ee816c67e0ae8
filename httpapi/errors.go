package httpapi

import (
	"github.com/valyala/fasthttp"
	"k8s.io/klog/v2"

	"github.com/ebi-refget/refget-server/apierr"
)

func notFoundf(detail string) *apierr.Error { return apierr.NotFound(detail) }

// writeError maps an apierr.Error (or any other error, treated as internal)
// to the JSON {"detail": ...} body of spec.md §7, at the correct status.
func writeError(ctx *fasthttp.RequestCtx, err error) {
	apiErr, ok := err.(*apierr.Error)
	if !ok {
		apiErr = apierr.Internal(err.Error())
	}

	status := fasthttp.StatusInternalServerError
	switch apiErr.Kind {
	case apierr.KindNotFound:
		status = fasthttp.StatusNotFound
	case apierr.KindBadRequest:
		status = fasthttp.StatusBadRequest
	case apierr.KindRangeNotSatisfiable:
		status = fasthttp.StatusRequestedRangeNotSatisfiable
	case apierr.KindInternal:
		status = fasthttp.StatusInternalServerError
	}
	if status == fasthttp.StatusInternalServerError {
		klog.Errorf("internal error: %s", apiErr.Detail)
	}

	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	_ = json.NewEncoder(ctx).Encode(struct {
		Detail string `json:"detail"`
	}{Detail: apiErr.Detail})
}
