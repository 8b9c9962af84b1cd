package httprange

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		header string
		size   int64
		want   ByteRange
		ok     bool
	}{
		{"bytes=0-499", 1000, ByteRange{0, 499}, true},
		{"bytes=500-999", 1000, ByteRange{500, 999}, true},
		{"bytes=0-", 1000, ByteRange{0, 999}, true},
		{"bytes=-500", 1000, ByteRange{500, 999}, true},
		{"bytes=9000-", 10000, ByteRange{9000, 9999}, true},
		// end past the resource is clamped
		{"bytes=900-2000", 1000, ByteRange{900, 999}, true},
		// suffix longer than the resource covers the whole resource
		{"bytes=-5000", 1000, ByteRange{0, 999}, true},

		{"bytes=abc-def", 1000, ByteRange{}, false},
		{"bytes=100-50", 1000, ByteRange{}, false},
		{"bytes=1000-2000", 1000, ByteRange{}, false},
		{"bytes=-0", 1000, ByteRange{}, false},
		{"bits=0-499", 1000, ByteRange{}, false},
		{"0-499", 1000, ByteRange{}, false},
		{"", 1000, ByteRange{}, false},
		{"bytes=0-499", 0, ByteRange{}, false},
	}
	for _, tc := range tests {
		got, ok := Parse(tc.header, tc.size)
		assert.Equal(t, tc.ok, ok, "header %q", tc.header)
		if tc.ok {
			assert.Equal(t, tc.want, got, "header %q", tc.header)
		}
	}
}

func TestLengthAndContentRange(t *testing.T) {
	r := ByteRange{Start: 100, End: 200}
	assert.Equal(t, int64(101), r.Length())
	assert.Equal(t, "bytes 100-200/1000", r.ContentRange(1000))
}

func TestLargeFileNoOverflow(t *testing.T) {
	// A full range over a >2GiB resource must stay in 64-bit space.
	const size = int64(1)<<31 + 12345
	r, ok := Parse("bytes=0-", size)
	assert.True(t, ok)
	assert.Equal(t, size, r.Length())
	assert.Greater(t, r.Length(), int64(1)<<31)
}
