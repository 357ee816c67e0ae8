// Package region translates client-supplied start/end parameters or a
// parsed Range header into one or two contiguous read intervals over a
// record's logically linear (or circular) byte sequence.
package region

import (
	"fmt"

	"github.com/ebi-refget/refget-server/apierr"
)

// Region is a half-open-by-length interval: [Offset, Offset+Length) in the
// container file's absolute uncompressed byte space.
type Region struct {
	Offset uint64
	Length uint64
}

// Plan is the outcome of planning: 1 region for the linear case, 2 for the
// circular (wrap-around) case.
type Plan struct {
	Regions     []Region
	TotalLength uint64
}

// Input carries the two mutually-exclusive request shapes. Exactly one of
// (Start/End via query parameters) or (a Range header) may be set; the
// caller (httpapi) rejects both being present before calling Compute.
type Input struct {
	// Start/End are the Refget query-parameter form. End == nil means
	// "use seq_length".  Start == nil means 0.
	Start *uint64
	End   *uint64

	// FromRange indicates the Range-header form was used instead of query
	// parameters. When true, Start/End above are still the values to use
	// (already normalized from inclusive-end to exclusive-end by the
	// caller), but circular wrap is forbidden.
	FromRange bool
}

// Compute implements spec.md §4.3: default start/end, Range normalization
// already applied by the caller, mutual exclusivity already enforced by
// the caller, and produces the 1-or-2 region plan.
func Compute(seqStart, seqLength uint64, in Input) (Plan, error) {
	var start uint64
	if in.Start != nil {
		start = *in.Start
	}

	end := seqLength
	hasEnd := in.End != nil
	if hasEnd {
		end = *in.End
	}

	if start >= seqLength {
		return Plan{}, apierr.BadRequest("start beyond end of sequence")
	}

	if hasEnd && end == start {
		return Plan{}, nil
	}

	if start > end {
		if in.FromRange {
			return Plan{}, apierr.RangeNotSatisfiable("start beyond end in range request")
		}
		return circularPlan(seqStart, seqLength, start, end), nil
	}

	return linearPlan(seqStart, seqLength, start, end), nil
}

func linearPlan(seqStart, seqLength, start, end uint64) Plan {
	remaining := seqLength - start
	want := end - start
	length := remaining
	if want < length {
		length = want
	}
	if length == 0 {
		return Plan{}
	}
	return Plan{
		Regions:     []Region{{Offset: seqStart + start, Length: length}},
		TotalLength: length,
	}
}

// circularPlan implements the wrap-around law: [start, seq_length) followed
// by [0, end), only ever reachable for query-parameter access.
func circularPlan(seqStart, seqLength, start, end uint64) Plan {
	regions := []Region{{Offset: seqStart + start, Length: seqLength - start}}
	total := seqLength - start
	if end > 0 {
		regions = append(regions, Region{Offset: seqStart, Length: end})
		total += end
	}
	return Plan{Regions: regions, TotalLength: total}
}

// ParseRangeHeader parses the single supported Range header syntax
// "bytes=<start>-<end?>" and returns the Refget-style Input, already
// normalizing the client's inclusive end to the planner's exclusive end.
func ParseRangeHeader(value string) (Input, error) {
	const prefix = "bytes="
	if len(value) <= len(prefix) || value[:len(prefix)] != prefix {
		return Input{}, apierr.BadRequest("unsupported Range unit")
	}
	spec := value[len(prefix):]

	start, end, ok := splitRangeSpec(spec)
	if !ok {
		return Input{}, apierr.BadRequest("malformed Range header")
	}

	in := Input{FromRange: true, Start: &start}
	if end != nil {
		exclusiveEnd := *end + 1
		in.End = &exclusiveEnd
	}
	return in, nil
}

// splitRangeSpec parses "<digits>-<digits?>" with no suffix-range or
// multi-range support, matching the exact grammar spec.md §4.6 allows.
func splitRangeSpec(spec string) (start uint64, end *uint64, ok bool) {
	dash := -1
	for i := 0; i < len(spec); i++ {
		if spec[i] == '-' {
			dash = i
			break
		}
	}
	if dash <= 0 {
		return 0, nil, false
	}
	startStr := spec[:dash]
	endStr := spec[dash+1:]

	s, err := parseDigits(startStr)
	if err != nil {
		return 0, nil, false
	}
	if endStr == "" {
		return s, nil, true
	}
	e, err := parseDigits(endStr)
	if err != nil {
		return 0, nil, false
	}
	return s, &e, true
}

func parseDigits(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a digit: %q", s)
		}
		v = v*10 + uint64(c-'0')
	}
	return v, nil
}
