// Package httprange parses HTTP Range request headers against a known
// content length. Only single byte ranges are supported, which is what
// music players send when seeking.
package httprange

import (
	"fmt"
	"strconv"
	"strings"
)

const unitPrefix = "bytes="

// ByteRange is a resolved, inclusive byte interval within a resource.
type ByteRange struct {
	Start int64
	End   int64
}

// Parse resolves a Range header value against the resource size.
// ok is false for anything unusable: empty header, wrong unit, malformed
// numbers, start past end or past the resource. Callers serve the full
// resource in that case.
func Parse(header string, size int64) (r ByteRange, ok bool) {
	if header == "" || size <= 0 {
		return
	}
	spec, found := strings.CutPrefix(header, unitPrefix)
	if !found {
		return
	}
	first, last, found := strings.Cut(spec, "-")
	if !found {
		return
	}

	if first == "" {
		// "-N": the last N bytes.
		suffix, err := strconv.ParseInt(last, 10, 64)
		if err != nil || suffix <= 0 {
			return
		}
		if suffix > size {
			suffix = size
		}
		return ByteRange{Start: size - suffix, End: size - 1}, true
	}

	start, err := strconv.ParseInt(first, 10, 64)
	if err != nil || start < 0 || start >= size {
		return
	}
	if last == "" {
		// "N-": from N to the end.
		return ByteRange{Start: start, End: size - 1}, true
	}
	end, err := strconv.ParseInt(last, 10, 64)
	if err != nil || end < start {
		return
	}
	if end >= size {
		end = size - 1
	}
	return ByteRange{Start: start, End: end}, true
}

// Length returns the number of bytes covered by the range.
// Kept in 64-bit space: a full range of a >2GiB file must not overflow.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange renders the Content-Range response header value.
func (r ByteRange) ContentRange(total int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, total)
}
