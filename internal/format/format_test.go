package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		decimals int
		want     string
	}{
		{0, DefaultDecimals, "0 Bytes"},
		{1, DefaultDecimals, "1 Bytes"},
		{1023, DefaultDecimals, "1023 Bytes"},
		{1024, DefaultDecimals, "1 KB"},
		{1536, 1, "1.5 KB"},
		{1536, -3, "2 KB"},
		{1288490188, DefaultDecimals, "1.2 GB"},
		{1288490188, 3, "1.2 GB"},
		{1395864371, DefaultDecimals, "1.3 GB"},
		{5 * 1024 * 1024, DefaultDecimals, "5 MB"},
		{1 << 40, DefaultDecimals, "1 TB"},
		{1 << 50, DefaultDecimals, "1024 TB"},
		{-2048, DefaultDecimals, "-2 KB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.bytes, tt.decimals), "%d bytes, %d decimals", tt.bytes, tt.decimals)
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "March 8, 2025", FormatDate(1741392000))
	assert.Equal(t, "January 1, 1970", FormatDate(0))
	assert.Equal(t, "December 31, 2023", FormatDate(1704067199))
}
