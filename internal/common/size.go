package common

import "github.com/dustin/go-humanize"

// FormatSize renders n in binary units, the units MaxUploadBytes is defined in.
func FormatSize(n int64) string {
	return humanize.IBytes(uint64(n))
}

// FormatOverLimit renders a size that exceeds limit together with the limit.
// When both round to the same text the exact byte counts are used.
func FormatOverLimit(n, limit int64) (size, max string) {
	size, max = FormatSize(n), FormatSize(limit)
	if size == max {
		return humanize.Comma(n) + " bytes", humanize.Comma(limit) + " bytes"
	}
	return size, max
}
