// Package apierr defines the error taxonomy shared between the resolver,
// planner and HTTP surface. These are kinds, not transport codes: httpapi
// maps each Kind to a status at the edge.
package apierr

import "fmt"

// Kind classifies a failure the way the Refget contract distinguishes them,
// not the way net/http would.
type Kind int

const (
	// KindNotFound covers an identifier that is syntactically valid but
	// does not resolve: an unknown trunc512, or a broken MD5 -> trunc512
	// pointer.
	KindNotFound Kind = iota
	// KindBadRequest covers malformed Range headers, start/end combined
	// with Range, unparseable query parameters, and start >= seq_length.
	KindBadRequest
	// KindRangeNotSatisfiable covers a Range header that would require
	// circular wrap-around, which Range access never permits.
	KindRangeNotSatisfiable
	// KindInternal covers index store corruption and container open
	// failures: the store or the filesystem lied about its own invariants.
	KindInternal
)

// Error is a Kind plus a human-readable detail, suitable for both logging
// and the JSON {"detail": ...} body httpapi sends for pre-stream failures.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

func NotFound(detail string) *Error            { return &Error{Kind: KindNotFound, Detail: detail} }
func BadRequest(detail string) *Error          { return &Error{Kind: KindBadRequest, Detail: detail} }
func RangeNotSatisfiable(detail string) *Error { return &Error{Kind: KindRangeNotSatisfiable, Detail: detail} }
func Internal(detail string) *Error            { return &Error{Kind: KindInternal, Detail: detail} }
func Internalf(format string, a ...any) *Error { return Internal(fmt.Sprintf(format, a...)) }
